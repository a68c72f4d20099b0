package breakdown

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

// TimelineEntry is one chronological event in a variable's audit trail.
type TimelineEntry struct {
	Source    string `json:"source"`
	Detail    string `json:"detail"` // "Trained → Expert", "+2 (item)"
	Timestamp int64  `json:"timestamp"`
}

// Timeline merges a variable's history (value transitions) and its
// non-conditional bonuses into one chronologically sorted list for
// display.
//
// Entries with from == to are never surfaced - they should not exist per
// the history invariant, but homebrew-shaped bugs are exactly what an
// audit trail is for, so the compiler defends against them anyway.
func Timeline(history []rules.HistoryEntry, bonuses []rules.Bonus) []TimelineEntry {
	var out []TimelineEntry

	for _, h := range history {
		if h.From == h.To {
			continue
		}
		detail := h.To
		if h.From != "" {
			detail = h.From + " → " + h.To
		}
		out = append(out, TimelineEntry{
			Source:    h.Source,
			Detail:    detail,
			Timestamp: h.Timestamp,
		})
	}

	for _, b := range bonuses {
		if b.Conditional {
			continue
		}
		out = append(out, TimelineEntry{
			Source:    b.Source,
			Detail:    fmt.Sprintf("%+d (%s)", b.Amount, b.Type),
			Timestamp: b.Timestamp,
		})
	}

	slices.SortStableFunc(out, func(a, b TimelineEntry) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}

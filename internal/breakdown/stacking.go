package breakdown

import (
	"slices"
	"strings"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

// BonusGroup is one bonus type's contribution after stacking.
type BonusGroup struct {
	Type    string        `json:"type"`
	Applied rules.Bonus   `json:"applied"`
	Ignored []rules.Bonus `json:"ignored,omitempty"` // outstacked, shown struck-through
}

// Stacked is the result of stacking one variable's bonus ledger.
type Stacked struct {
	Total        int64         `json:"total"`
	Groups       []BonusGroup  `json:"groups,omitempty"`  // non-untyped, one per type
	Untyped      []rules.Bonus `json:"untyped,omitempty"` // all additive
	Conditionals []rules.Bonus `json:"conditionals,omitempty"`
}

// Stack resolves a bonus ledger.
//
// For each non-untyped type, only the single largest amount applies; the
// first-seen bonus wins amount ties so the result is stable across
// identical passes. Untyped bonuses all apply. Conditional bonuses are
// excluded from the total and listed separately.
func Stack(bonuses []rules.Bonus) Stacked {
	var out Stacked
	grouped := make(map[string]*BonusGroup)
	var typeOrder []string

	for _, b := range bonuses {
		if b.Conditional {
			out.Conditionals = append(out.Conditionals, b)
			continue
		}
		if b.Type == rules.BonusTypeUntyped {
			out.Untyped = append(out.Untyped, b)
			out.Total += b.Amount
			continue
		}

		g, ok := grouped[b.Type]
		if !ok {
			grouped[b.Type] = &BonusGroup{Type: b.Type, Applied: b}
			typeOrder = append(typeOrder, b.Type)
			continue
		}
		// Strictly larger replaces; equal keeps the first seen.
		if b.Amount > g.Applied.Amount {
			g.Ignored = append(g.Ignored, g.Applied)
			g.Applied = b
		} else {
			g.Ignored = append(g.Ignored, b)
		}
	}

	// Group order is sorted by type name for display; ledger order
	// already decided the winners.
	slices.SortFunc(typeOrder, strings.Compare)
	for _, t := range typeOrder {
		g := grouped[t]
		out.Groups = append(out.Groups, *g)
		out.Total += g.Applied.Amount
	}
	return out
}

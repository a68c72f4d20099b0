package eval

import "github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"

// Outcome classifies what happened to one operation during a pass.
type Outcome string

const (
	// OutcomeApplied means the operation's effect reached the store.
	OutcomeApplied Outcome = "APPLIED"
	// OutcomeSkipped means the operation was rejected (malformed payload,
	// variant mismatch, cycle, filter mismatch) and applied nothing.
	OutcomeSkipped Outcome = "SKIPPED"
	// OutcomePendingSelection means a select operation found no stored
	// choice; it applied nothing and the UI should prompt.
	OutcomePendingSelection Outcome = "PENDING_SELECTION"
)

// OperationOutcome is the per-operation entry of a result package.
type OperationOutcome struct {
	OperationID string       `json:"operation_id"`
	Kind        rules.OpKind `json:"kind"`
	Outcome     Outcome      `json:"outcome"`
	Reason      string       `json:"reason,omitempty"` // why skipped/pending

	// SelectionPath is set for select operations - the key the stored
	// choice lives (or belongs) under.
	SelectionPath string `json:"selection_path,omitempty"`

	// Options lists the choosable values for a pending selection.
	Options []PendingOption `json:"options,omitempty"`
}

// PendingOption is one choosable value for a pending selection.
type PendingOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// SourceResult groups operation outcomes under their provenance label.
type SourceResult struct {
	Kind     rules.SourceKind   `json:"kind"`
	SourceID string             `json:"source_id"`
	Label    string             `json:"label"`
	Ops      []OperationOutcome `json:"ops"`
}

// Result is the output of one evaluation pass, minus the variable store
// itself (which callers query directly). It drives "make a choice" UI
// and feeds the breakdown compiler's audit views.
type Result struct {
	PassToken string         `json:"pass_token"`
	Sources   []SourceResult `json:"sources"`
}

// Pending returns every pending selection across all sources, in pass
// order. This is the UI's prompt list.
func (r *Result) Pending() []OperationOutcome {
	var out []OperationOutcome
	for _, src := range r.Sources {
		for _, op := range src.Ops {
			if op.Outcome == OutcomePendingSelection {
				out = append(out, op)
			}
		}
	}
	return out
}

// Skipped returns every skipped operation across all sources.
func (r *Result) Skipped() []OperationOutcome {
	var out []OperationOutcome
	for _, src := range r.Sources {
		for _, op := range src.Ops {
			if op.Outcome == OutcomeSkipped {
				out = append(out, op)
			}
		}
	}
	return out
}

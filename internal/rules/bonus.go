package rules

// BonusTypeUntyped is the bonus type that stacks additively with
// everything. All other types follow "highest of" stacking.
const BonusTypeUntyped = "untyped"

// Bonus is a typed, sourced numeric modifier attached to one variable.
//
// Stacking invariant: for a fixed non-untyped Type, only the single
// largest Amount contributes to the compiled value; untyped bonuses are
// strictly additive; Conditional bonuses never auto-apply and are listed
// separately for situational use.
//
// Timestamp is a logical clock value, never wall-clock.
type Bonus struct {
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Source      string `json:"source"`
	Conditional bool   `json:"conditional"`
	Text        string `json:"text,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// HistoryEntry records one effective change to a variable's terminal
// value. Appended only when the value actually changed - a no-op write
// produces no entry.
//
// From is the rendered previous value; empty when the entry records the
// variable's creation.
type HistoryEntry struct {
	Source    string `json:"source"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}

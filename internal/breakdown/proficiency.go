package breakdown

import (
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// Term is one named contribution to a compiled value. Breakdowns expose
// every term individually so the UI can show the full math.
type Term struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// ProficiencyBreakdown decomposes one proficiency variable's final value.
type ProficiencyBreakdown struct {
	Variable string     `json:"variable"`
	Rank     rules.Rank `json:"rank"`
	RankName string     `json:"rank_name"`
	Override *int64     `json:"override,omitempty"` // replaces the math entirely

	Terms    []Term          `json:"terms"`
	Bonuses  Stacked         `json:"bonuses"`
	Total    int64           `json:"total"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// Proficiency compiles a proficiency variable.
//
// Final value = rank bonus
//   - level, if the rank is at least trained and the without-level
//     toggle is off
//   - the associated attribute's modifier, if the proficiency declares one
//   - stacked bonuses
//
// A declared override replaces everything except the stacked bonuses.
// Returns ok=false when the variable is absent or not a proficiency.
func Proficiency(s *varstore.Store, id varstore.StoreID, name string) (ProficiencyBreakdown, bool) {
	v, ok := s.Get(id, name)
	if !ok {
		return ProficiencyBreakdown{}, false
	}
	prof, ok := v.Value.(rules.Proficiency)
	if !ok {
		return ProficiencyBreakdown{}, false
	}

	out := ProficiencyBreakdown{
		Variable: name,
		Rank:     prof.Rank,
		RankName: prof.Rank.Name(),
		Override: prof.Override,
		Bonuses:  Stack(s.Bonuses(id, name)),
		Timeline: Timeline(s.History(id, name), s.Bonuses(id, name)),
	}

	if prof.Override != nil {
		out.Terms = append(out.Terms, Term{Label: "override", Amount: *prof.Override})
		out.Total = *prof.Override + out.Bonuses.Total
		return out, true
	}

	out.Terms = append(out.Terms, Term{Label: "rank (" + prof.Rank.Name() + ")", Amount: prof.Rank.Bonus()})

	if prof.Rank.AtLeast(rules.RankTrained) && !boolVar(s, id, rules.VarWithoutLevel) {
		level := numberVar(s, id, rules.VarLevel)
		out.Terms = append(out.Terms, Term{Label: "level", Amount: level})
	}

	if prof.Attribute != "" {
		mod := attributeMod(s, id, prof.Attribute)
		out.Terms = append(out.Terms, Term{Label: prof.Attribute, Amount: mod})
	}

	for _, t := range out.Terms {
		out.Total += t.Amount
	}
	out.Total += out.Bonuses.Total
	return out, true
}

// boolVar reads a boolean variable, false when absent or mistyped.
func boolVar(s *varstore.Store, id varstore.StoreID, name string) bool {
	v, ok := s.Get(id, name)
	if !ok {
		return false
	}
	b, ok := v.Value.(rules.Boolean)
	return ok && bool(b)
}

// numberVar reads a number variable, 0 when absent or mistyped.
func numberVar(s *varstore.Store, id varstore.StoreID, name string) int64 {
	v, ok := s.Get(id, name)
	if !ok {
		return 0
	}
	n, ok := v.Value.(rules.Number)
	if !ok {
		return 0
	}
	return int64(n)
}

// attributeMod reads an attribute variable's modifier, 0 when absent.
func attributeMod(s *varstore.Store, id varstore.StoreID, name string) int64 {
	v, ok := s.Get(id, name)
	if !ok {
		return 0
	}
	a, ok := v.Value.(rules.Attribute)
	if !ok {
		return 0
	}
	return a.Score
}

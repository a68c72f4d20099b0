package breakdown

import (
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// HPBreakdown decomposes maximum hit points.
// Total = (class HP + CON modifier) × level + ancestry HP + Σbonuses.
type HPBreakdown struct {
	ClassHP    int64           `json:"class_hp"`
	ConMod     int64           `json:"con_mod"`
	Level      int64           `json:"level"`
	AncestryHP int64           `json:"ancestry_hp"`
	Bonuses    Stacked         `json:"bonuses"`
	Total      int64           `json:"total"`
	Timeline   []TimelineEntry `json:"timeline,omitempty"`
}

// HP compiles the maximum-HP breakdown.
func HP(s *varstore.Store, id varstore.StoreID) HPBreakdown {
	out := HPBreakdown{
		ClassHP:    numberVar(s, id, rules.VarClassHP),
		ConMod:     attributeMod(s, id, rules.AttrConstitution),
		Level:      numberVar(s, id, rules.VarLevel),
		AncestryHP: numberVar(s, id, rules.VarAncestryHP),
		Bonuses:    Stack(s.Bonuses(id, rules.VarMaxHealthBonus)),
		Timeline:   Timeline(s.History(id, rules.VarMaxHealthBonus), s.Bonuses(id, rules.VarMaxHealthBonus)),
	}
	out.Total = (out.ClassHP+out.ConMod)*out.Level + out.AncestryHP + out.Bonuses.Total
	if out.Total < 0 {
		out.Total = 0
	}
	return out
}

// ACBreakdown decomposes armor class: 10 + DEX modifier + stacked
// bonuses (armor item bonus, proficiency contributions, shields).
type ACBreakdown struct {
	Base     int64           `json:"base"`
	DexMod   int64           `json:"dex_mod"`
	Bonuses  Stacked         `json:"bonuses"`
	Total    int64           `json:"total"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// AC compiles the armor-class breakdown.
func AC(s *varstore.Store, id varstore.StoreID) ACBreakdown {
	out := ACBreakdown{
		Base:     10,
		DexMod:   attributeMod(s, id, rules.AttrDexterity),
		Bonuses:  Stack(s.Bonuses(id, rules.VarACBonus)),
		Timeline: Timeline(s.History(id, rules.VarACBonus), s.Bonuses(id, rules.VarACBonus)),
	}
	out.Total = out.Base + out.DexMod + out.Bonuses.Total
	return out
}

// SpeedBreakdown decomposes a speed value. Compiled speed never drops
// below the minimum: penalties can slow a creature, not stop it.
type SpeedBreakdown struct {
	Base     int64           `json:"base"`
	Bonuses  Stacked         `json:"bonuses"`
	Total    int64           `json:"total"`
	Floored  bool            `json:"floored,omitempty"` // minimum applied
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// Speed compiles the speed breakdown.
func Speed(s *varstore.Store, id varstore.StoreID) SpeedBreakdown {
	out := SpeedBreakdown{
		Base:     numberVar(s, id, rules.VarSpeed),
		Bonuses:  Stack(s.Bonuses(id, rules.VarSpeed)),
		Timeline: Timeline(s.History(id, rules.VarSpeed), s.Bonuses(id, rules.VarSpeed)),
	}
	out.Total = out.Base + out.Bonuses.Total
	if out.Total < rules.MinSpeed {
		out.Total = rules.MinSpeed
		out.Floored = true
	}
	return out
}

// AttributeBreakdown is an attribute's compiled state.
type AttributeBreakdown struct {
	Variable string          `json:"variable"`
	Score    int64           `json:"score"`
	Partial  bool            `json:"partial,omitempty"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// Attribute compiles one attribute variable.
// Returns ok=false when absent or not an attribute.
func Attribute(s *varstore.Store, id varstore.StoreID, name string) (AttributeBreakdown, bool) {
	v, ok := s.Get(id, name)
	if !ok {
		return AttributeBreakdown{}, false
	}
	a, ok := v.Value.(rules.Attribute)
	if !ok {
		return AttributeBreakdown{}, false
	}
	return AttributeBreakdown{
		Variable: name,
		Score:    a.Score,
		Partial:  a.Partial,
		Timeline: Timeline(s.History(id, name), s.Bonuses(id, name)),
	}, true
}

// Skills compiles every skill-prefixed proficiency, sorted by name.
func Skills(s *varstore.Store, id varstore.StoreID) []ProficiencyBreakdown {
	var out []ProficiencyBreakdown
	for _, v := range s.ListByPrefix(id, rules.PrefixSkill) {
		if pb, ok := Proficiency(s, id, v.Name); ok {
			out = append(out, pb)
		}
	}
	return out
}

// Saves compiles every save-prefixed proficiency, sorted by name.
func Saves(s *varstore.Store, id varstore.StoreID) []ProficiencyBreakdown {
	var out []ProficiencyBreakdown
	for _, v := range s.ListByPrefix(id, rules.PrefixSave) {
		if pb, ok := Proficiency(s, id, v.Name); ok {
			out = append(out, pb)
		}
	}
	return out
}

package breakdown

import (
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// Sheet is the complete compiled character sheet.
type Sheet struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Level       int64  `json:"level"`

	HP         HPBreakdown            `json:"hp"`
	HPCurrent  int                    `json:"hp_current"`
	AC         ACBreakdown            `json:"ac"`
	Speed      SpeedBreakdown         `json:"speed"`
	Attributes []AttributeBreakdown   `json:"attributes"`
	Skills     []ProficiencyBreakdown `json:"skills"`
	Saves      []ProficiencyBreakdown `json:"saves"`
	Languages  []string               `json:"languages,omitempty"`
	Encumbered bool                   `json:"encumbered,omitempty"`
}

var attributeOrder = []string{
	rules.AttrStrength, rules.AttrDexterity, rules.AttrConstitution,
	rules.AttrIntelligence, rules.AttrWisdom, rules.AttrCharisma,
}

// CompileSheet assembles the full sheet from settled variable state.
func CompileSheet(vars *varstore.Store, ch *entity.Character) Sheet {
	id := varstore.StoreID(ch.ID)

	sheet := Sheet{
		CharacterID: ch.ID,
		Name:        ch.Name,
		Level:       int64(ch.Level),
		HP:          HP(vars, id),
		HPCurrent:   ch.HPCurrent,
		AC:          AC(vars, id),
		Speed:       Speed(vars, id),
		Skills:      Skills(vars, id),
		Saves:       Saves(vars, id),
		Encumbered:  ch.Details.Encumbered,
	}
	for _, name := range attributeOrder {
		if ab, ok := Attribute(vars, id, name); ok {
			sheet.Attributes = append(sheet.Attributes, ab)
		}
	}
	if v, ok := vars.Get(id, rules.VarLanguages); ok {
		if list, ok := v.Value.(rules.List); ok {
			sheet.Languages = []string(list)
		}
	}
	return sheet
}

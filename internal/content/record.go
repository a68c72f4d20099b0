package content

import (
	"slices"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

// Record is one operation-bearing content entry. All catalog kinds share
// this shape; kind-specific numeric fields are zero when not applicable.
type Record struct {
	ID     string   `yaml:"id" json:"id"`
	Kind   string   `yaml:"kind" json:"kind"`
	Name   string   `yaml:"name" json:"name"`
	Level  int      `yaml:"level,omitempty" json:"level,omitempty"`
	Traits []string `yaml:"traits,omitempty" json:"traits,omitempty"`
	Rarity string   `yaml:"rarity,omitempty" json:"rarity,omitempty"`

	// Class: per-level HP. Ancestry: flat starting HP.
	HP int `yaml:"hp,omitempty" json:"hp,omitempty"`

	// Ancestry base speed.
	Speed int `yaml:"speed,omitempty" json:"speed,omitempty"`

	// Item fields. Bulk is in tenths (a bulk of 1 is 10; light is 1) so
	// the math stays in integers.
	Bulk         int  `yaml:"bulk,omitempty" json:"bulk,omitempty"`
	CheckPenalty int  `yaml:"checkPenalty,omitempty" json:"checkPenalty,omitempty"`
	SpeedPenalty int  `yaml:"speedPenalty,omitempty" json:"speedPenalty,omitempty"`
	Wearable     bool `yaml:"wearable,omitempty" json:"wearable,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Operations []rules.Operation `yaml:"operations,omitempty" json:"-"`
}

// SourceKind maps the authored kind string to its provenance label kind.
func (r *Record) SourceKind() rules.SourceKind {
	return rules.SourceKind(r.Kind)
}

// HasTrait reports whether the record carries the given trait.
func (r *Record) HasTrait(trait string) bool {
	return slices.Contains(r.Traits, trait)
}

// Package is an immutable grouping of all loaded content records by kind,
// indexed by id. Slices preserve file/authoring order for deterministic
// iteration.
type Package struct {
	byID map[string]*Record

	Classes        []*Record
	Ancestries     []*Record
	Backgrounds    []*Record
	Heritages      []*Record
	Archetypes     []*Record
	Feats          []*Record
	Items          []*Record
	Conditions     []*Record
	Languages      []*Record
	Abilities      []*Record
	ContentSources []*Record
}

// NewPackage groups records by kind. Later records with a duplicate id
// shadow earlier ones in the index (content-source override order), but
// both stay in their kind slice.
func NewPackage(records []*Record) *Package {
	p := &Package{byID: make(map[string]*Record, len(records))}
	for _, r := range records {
		p.byID[r.ID] = r
		switch rules.SourceKind(r.Kind) {
		case rules.SourceClass:
			p.Classes = append(p.Classes, r)
		case rules.SourceAncestry:
			p.Ancestries = append(p.Ancestries, r)
		case rules.SourceBackground:
			p.Backgrounds = append(p.Backgrounds, r)
		case rules.SourceHeritage:
			p.Heritages = append(p.Heritages, r)
		case rules.SourceArchetype:
			p.Archetypes = append(p.Archetypes, r)
		case rules.SourceFeat:
			p.Feats = append(p.Feats, r)
		case rules.SourceItem:
			p.Items = append(p.Items, r)
		case rules.SourceCondition:
			p.Conditions = append(p.Conditions, r)
		case rules.SourceLanguage:
			p.Languages = append(p.Languages, r)
		case rules.SourceAbility:
			p.Abilities = append(p.Abilities, r)
		case rules.SourceContentSource:
			p.ContentSources = append(p.ContentSources, r)
		}
	}
	return p
}

// Size reports the number of distinct record ids in the package.
func (p *Package) Size() int {
	return len(p.byID)
}

// Lookup returns a record by id.
func (p *Package) Lookup(id string) (*Record, bool) {
	r, ok := p.byID[id]
	return r, ok
}

// FilterCandidates returns records matching a filtered select: same kind,
// level within the gate, carrying every listed trait. Order is authoring
// order (deterministic).
func (p *Package) FilterCandidates(f *rules.OptionFilter) []*Record {
	var pool []*Record
	switch f.Kind {
	case rules.SourceFeat:
		pool = p.Feats
	case rules.SourceItem:
		pool = p.Items
	case rules.SourceLanguage:
		pool = p.Languages
	case rules.SourceAbility:
		pool = p.Abilities
	default:
		return nil
	}

	var out []*Record
	for _, r := range pool {
		if f.MaxLevel > 0 && r.Level > f.MaxLevel {
			continue
		}
		match := true
		for _, trait := range f.Traits {
			if !r.HasTrait(trait) {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out
}

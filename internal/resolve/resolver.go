// Package resolve gathers and orders the operation sources that apply to
// an entity. Resolution is pure: it reads the entity and the content
// package, touches no variable state, and performs no I/O.
package resolve

import (
	"slices"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

// Sources builds the ordered operation sources for a character.
//
// Precedence follows order (use rules.DefaultPrecedence unless a caller
// has a confirmed different ruling). Within one kind:
//   - feats sort by acquisition level (stable, so authoring order breaks
//     ties), and feats above the character's level are filtered out
//   - items contribute only while active (equipped, or not wearable)
//   - everything else keeps authoring order
//
// A referenced record missing from the package is silently absent from
// the result - the evaluator and UI surface the hole, resolution never
// fails.
func Sources(ch *entity.Character, pkg *content.Package, order []rules.SourceKind) []*rules.OperationSource {
	if order == nil {
		order = rules.DefaultPrecedence
	}

	var out []*rules.OperationSource
	for _, kind := range order {
		out = append(out, sourcesOfKind(ch, pkg, kind)...)
	}
	return out
}

// Operations flattens the ordered sources into the single operation list
// one evaluation pass walks.
func Operations(ch *entity.Character, pkg *content.Package, order []rules.SourceKind) []rules.SourcedOperation {
	var out []rules.SourcedOperation
	for _, src := range Sources(ch, pkg, order) {
		for _, op := range src.Operations {
			out = append(out, rules.SourcedOperation{Op: op, Source: src})
		}
	}
	return out
}

func sourcesOfKind(ch *entity.Character, pkg *content.Package, kind rules.SourceKind) []*rules.OperationSource {
	switch kind {
	case rules.SourceAncestry:
		return recordSource(pkg, kind, ch.AncestryID, 0)
	case rules.SourceHeritage:
		return recordSource(pkg, kind, ch.HeritageID, 0)
	case rules.SourceBackground:
		return recordSource(pkg, kind, ch.BackgroundID, 0)
	case rules.SourceClass:
		return recordSource(pkg, kind, ch.ClassID, 0)
	case rules.SourceArchetype:
		return recordSource(pkg, kind, ch.ArchetypeID, 0)

	case rules.SourceFeat:
		feats := slices.Clone(ch.Feats)
		slices.SortStableFunc(feats, func(a, b entity.FeatRef) int { return a.Level - b.Level })
		var out []*rules.OperationSource
		for _, ref := range feats {
			if ref.Level > ch.Level {
				continue // not acquired yet
			}
			out = append(out, recordSource(pkg, kind, ref.ID, ref.Level)...)
		}
		return out

	case rules.SourceItem:
		var out []*rules.OperationSource
		for _, it := range ch.Inventory {
			rec, ok := pkg.Lookup(it.ItemID)
			if !ok {
				continue
			}
			if rec.Wearable && !it.Equipped {
				continue // carried but inactive
			}
			out = append(out, newSource(kind, rec, 0))
		}
		if src := penaltySource(ch); src != nil {
			out = append(out, src)
		}
		return out

	case rules.SourceCondition:
		var out []*rules.OperationSource
		for _, cond := range ch.Details.Conditions {
			out = append(out, recordSource(pkg, kind, cond.ID, 0)...)
		}
		return out

	case rules.SourceContentSource:
		var out []*rules.OperationSource
		for _, rec := range pkg.ContentSources {
			out = append(out, newSource(kind, rec, 0))
		}
		return out

	default:
		return nil
	}
}

// penaltySource turns the armor penalties the post-processing pipeline
// recorded on the entity into a synthetic item source. This is how
// equipment-derived penalties re-enter evaluation one pass after the
// gear change that caused them.
func penaltySource(ch *entity.Character) *rules.OperationSource {
	check := ch.Details.ArmorCheckPenalty
	speed := ch.Details.ArmorSpeedPenalty
	if check == 0 && speed == 0 {
		return nil
	}

	var ops []rules.Operation
	if check != 0 {
		ops = append(ops, rules.Operation{
			ID: "equipment-check-penalty",
			Data: rules.AdjustValue{
				Name:      rules.VarArmorCheckApply,
				Amount:    int64(check),
				BonusType: "armor",
			},
		})
	}
	if speed != 0 {
		ops = append(ops, rules.Operation{
			ID: "equipment-speed-penalty",
			Data: rules.AdjustValue{
				Name:      rules.VarSpeed,
				Amount:    int64(speed),
				BonusType: "armor",
			},
		})
	}
	return &rules.OperationSource{
		Kind:       rules.SourceItem,
		ID:         "equipment-penalties",
		Label:      "Equipment",
		Operations: ops,
	}
}

func recordSource(pkg *content.Package, kind rules.SourceKind, id string, level int) []*rules.OperationSource {
	if id == "" {
		return nil
	}
	rec, ok := pkg.Lookup(id)
	if !ok {
		return nil
	}
	return []*rules.OperationSource{newSource(kind, rec, level)}
}

func newSource(kind rules.SourceKind, rec *content.Record, level int) *rules.OperationSource {
	return &rules.OperationSource{
		Kind:       kind,
		ID:         rec.ID,
		Label:      rec.Name,
		Level:      level,
		Operations: rec.Operations,
	}
}

// Package postprocess runs the deterministic fixups due once an
// evaluation pass settles.
//
// Steps run in fixed order, each reading the settled variable store and
// writing back only to the owning entity record (inventory, conditions,
// current HP) - never to the variable store. This is a push pipeline
// with no rollback: every step is idempotent under repeated application
// with unchanged inputs.
//
// Equipment-derived penalties computed here do not act retroactively on
// the pass that just settled; they land on the entity and re-enter the
// next pass as ordinary bonuses through the resolver.
package postprocess

import (
	"log/slog"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/breakdown"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// grantedByFeature marks inventory rows injected from a feature variable,
// so injection stays idempotent and user-added copies stay untouched.
const grantedByFeature = "feature"

// Run executes the pipeline for one settled pass.
// Mutates ch in place; returns whether anything on the entity changed
// (callers schedule a follow-up pass only when it did).
func Run(s *varstore.Store, id varstore.StoreID, ch *entity.Character, pkg *content.Package) bool {
	changed := false
	changed = injectExtraItems(s, id, ch, pkg) || changed
	changed = enforceBulkLimit(s, id, ch, pkg) || changed
	changed = applyEquipmentPenalties(ch, pkg) || changed
	maxHP := applyConditionEffects(s, id, ch)
	changed = reconcileHP(ch, maxHP) || changed

	if changed {
		slog.Debug("post-process mutated entity", "store_id", id, "entity", ch.ID)
	}
	return changed
}

// injectExtraItems adds items implied by variables (a feature granting a
// permanent piece of gear) when not already present.
func injectExtraItems(s *varstore.Store, id varstore.StoreID, ch *entity.Character, pkg *content.Package) bool {
	v, ok := s.Get(id, rules.VarExtraItems)
	if !ok {
		return false
	}
	list, ok := v.Value.(rules.List)
	if !ok {
		return false
	}

	changed := false
	for _, itemID := range list {
		if _, ok := pkg.Lookup(itemID); !ok {
			slog.Warn("extra item not in content package", "item", itemID)
			continue
		}
		if hasGrantedItem(ch, itemID) {
			continue
		}
		ch.Inventory = append(ch.Inventory, entity.InventoryItem{
			ItemID:    itemID,
			Count:     1,
			GrantedBy: grantedByFeature,
		})
		changed = true
	}
	return changed
}

func hasGrantedItem(ch *entity.Character, itemID string) bool {
	for _, it := range ch.Inventory {
		if it.ItemID == itemID && it.GrantedBy == grantedByFeature {
			return true
		}
	}
	return false
}

// enforceBulkLimit recomputes encumbrance against the (possibly
// just-modified) inventory. Limit is 5 + STR bulk, plus any bulk-limit
// bonuses; all math in tenths of a bulk.
func enforceBulkLimit(s *varstore.Store, id varstore.StoreID, ch *entity.Character, pkg *content.Package) bool {
	str := int64(0)
	if v, ok := s.Get(id, rules.AttrStrength); ok {
		if a, ok := v.Value.(rules.Attribute); ok {
			str = a.Score
		}
	}
	limit := (5 + str) * 10
	limit += breakdown.Stack(s.Bonuses(id, rules.VarBulkLimitBonus)).Total * 10

	var carried int64
	for _, it := range ch.Inventory {
		rec, ok := pkg.Lookup(it.ItemID)
		if !ok {
			continue
		}
		carried += int64(rec.Bulk) * int64(it.Count)
	}

	encumbered := carried > limit
	if ch.Details.Encumbered == encumbered {
		return false
	}
	ch.Details.Encumbered = encumbered
	return true
}

// applyEquipmentPenalties records the worst armor check and speed
// penalties among equipped gear on the entity. The resolver turns these
// into ordinary bonuses on the next pass.
func applyEquipmentPenalties(ch *entity.Character, pkg *content.Package) bool {
	check, speed := 0, 0
	for _, it := range ch.Inventory {
		if !it.Equipped {
			continue
		}
		rec, ok := pkg.Lookup(it.ItemID)
		if !ok {
			continue
		}
		if rec.CheckPenalty < check {
			check = rec.CheckPenalty
		}
		if rec.SpeedPenalty < speed {
			speed = rec.SpeedPenalty
		}
	}

	if ch.Details.ArmorCheckPenalty == check && ch.Details.ArmorSpeedPenalty == speed {
		return false
	}
	ch.Details.ArmorCheckPenalty = check
	ch.Details.ArmorSpeedPenalty = speed
	return true
}

// applyConditionEffects folds active condition values into the compiled
// maximum HP (drained costs level × value). Other condition effects ride
// in as ordinary condition-record operations during the pass; this step
// only covers the ones that scale with entity state the store cannot see.
// Returns the effective maximum HP for reconciliation.
func applyConditionEffects(s *varstore.Store, id varstore.StoreID, ch *entity.Character) int64 {
	maxHP := breakdown.HP(s, id).Total

	if cond, ok := ch.Condition("condition-drained"); ok {
		level := int64(ch.Level)
		loss := level * int64(cond.Value)
		maxHP -= loss
	}
	if maxHP < 0 {
		maxHP = 0
	}
	return maxHP
}

// reconcileHP clamps or initializes current HP against the newly
// computed maximum: reset to full on a fresh build (current == 0 with a
// living maximum is "never set", not "dead"), clamp when the maximum
// shrank under a condition like drained.
func reconcileHP(ch *entity.Character, maxHP int64) bool {
	current := int64(ch.HPCurrent)
	next := current
	if current == 0 && maxHP > 0 {
		next = maxHP
	} else if current > maxHP {
		next = maxHP
	}
	if next == current {
		return false
	}
	ch.HPCurrent = int(next)
	return true
}

// Package entity models the evaluated targets: characters (and creature
// instances, which share the same record shape). The entity record is the
// only durable, mutable input to an evaluation pass besides the content
// catalog - selections are read at pass start, and the post-processing
// pipeline writes back inventory, conditions, and current HP.
package entity

import "slices"

// Character is one evaluation target.
//
// Field layout mirrors the persisted record: selections live under
// operation_data, active conditions under details.
type Character struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Level        int    `json:"level" yaml:"level"`
	ClassID      string `json:"class_id,omitempty" yaml:"class,omitempty"`
	AncestryID   string `json:"ancestry_id,omitempty" yaml:"ancestry,omitempty"`
	BackgroundID string `json:"background_id,omitempty" yaml:"background,omitempty"`
	HeritageID   string `json:"heritage_id,omitempty" yaml:"heritage,omitempty"`
	ArchetypeID  string `json:"archetype_id,omitempty" yaml:"archetype,omitempty"`

	Feats     []FeatRef       `json:"feats,omitempty" yaml:"feats,omitempty"`
	Inventory []InventoryItem `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Details   Details         `json:"details" yaml:"details,omitempty"`
	HPCurrent int             `json:"hp_current" yaml:"hpCurrent,omitempty"`

	OperationData OperationData `json:"operation_data" yaml:"operationData,omitempty"`
}

// FeatRef is a feat taken at a specific level. Operations from feats are
// resolved in ascending acquisition level order.
type FeatRef struct {
	ID    string `json:"id" yaml:"id"`
	Level int    `json:"level" yaml:"level"`
}

// InventoryItem is one carried item stack.
type InventoryItem struct {
	ItemID   string `json:"item_id" yaml:"item"`
	Count    int    `json:"count" yaml:"count"`
	Equipped bool   `json:"equipped,omitempty" yaml:"equipped,omitempty"`

	// GrantedBy is set on items injected by the post-processing pipeline
	// from a feature variable, so injection stays idempotent and user
	// deletions of their own items are distinguishable.
	GrantedBy string `json:"granted_by,omitempty" yaml:"grantedBy,omitempty"`
}

// Details holds the nested entity state the pipeline maintains.
type Details struct {
	Conditions []ActiveCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Encumbered is derived by the bulk step each settled pass.
	Encumbered bool `json:"encumbered,omitempty" yaml:"encumbered,omitempty"`

	// Armor penalties are derived from equipped gear by the pipeline and
	// re-enter the next pass as ordinary bonuses through the resolver.
	// Zero or negative; never positive.
	ArmorCheckPenalty int `json:"armor_check_penalty,omitempty" yaml:"armorCheckPenalty,omitempty"`
	ArmorSpeedPenalty int `json:"armor_speed_penalty,omitempty" yaml:"armorSpeedPenalty,omitempty"`
}

// ActiveCondition is one active condition with its value (e.g. clumsy 2).
type ActiveCondition struct {
	ID    string `json:"id" yaml:"id"`
	Value int    `json:"value,omitempty" yaml:"value,omitempty"`
}

// OperationData carries the persisted user decisions.
type OperationData struct {
	// Selections maps a selection path hash to the stored choice value.
	Selections map[string]string `json:"selections,omitempty" yaml:"selections,omitempty"`
}

// Selection returns the stored choice for a path, if any.
func (c *Character) Selection(path string) (string, bool) {
	v, ok := c.OperationData.Selections[path]
	return v, ok
}

// SetSelection stores a choice. An empty value removes the selection,
// reverting the originating select operation to pending.
func (c *Character) SetSelection(path, value string) {
	if value == "" {
		delete(c.OperationData.Selections, path)
		return
	}
	if c.OperationData.Selections == nil {
		c.OperationData.Selections = make(map[string]string)
	}
	c.OperationData.Selections[path] = value
}

// HasItem reports whether the inventory holds the given item id.
func (c *Character) HasItem(itemID string) bool {
	return slices.ContainsFunc(c.Inventory, func(it InventoryItem) bool {
		return it.ItemID == itemID
	})
}

// Condition returns the active condition with the given id, if any.
func (c *Character) Condition(id string) (ActiveCondition, bool) {
	for _, cond := range c.Details.Conditions {
		if cond.ID == id {
			return cond, true
		}
	}
	return ActiveCondition{}, false
}

// Clone returns a deep copy. The evaluator and pipeline work on copies in
// tests that assert idempotence against the original.
func (c *Character) Clone() *Character {
	out := *c
	out.Feats = slices.Clone(c.Feats)
	out.Inventory = slices.Clone(c.Inventory)
	out.Details.Conditions = slices.Clone(c.Details.Conditions)
	if c.OperationData.Selections != nil {
		out.OperationData.Selections = make(map[string]string, len(c.OperationData.Selections))
		for k, v := range c.OperationData.Selections {
			out.OperationData.Selections[k] = v
		}
	}
	return &out
}

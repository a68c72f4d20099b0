package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/testutil"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

const baseContent = `
id: ancestry-elf
kind: ancestry
name: Elf
hp: 6
speed: 30
operations:
  - id: elf-dex
    kind: adjValue
    variable: ATTRIBUTE_DEX
    amount: 1
  - id: elf-lang
    kind: adjValue
    variable: LANGUAGE_IDS
    append: [common, elven]
---
id: class-rogue
kind: class
name: Rogue
hp: 8
operations:
  - id: rogue-stealth
    kind: createValue
    variable: SKILL_STEALTH
    variant: proficiency
    value:
      rank: T
      attribute: ATTRIBUTE_DEX
  - id: rogue-reflex
    kind: createValue
    variable: SAVE_REFLEX
    variant: proficiency
    value:
      rank: E
      attribute: ATTRIBUTE_DEX
`

func newTestEvaluator(t *testing.T, opts ...Option) (*Evaluator, *varstore.Store) {
	t.Helper()
	vars := varstore.New()
	allOpts := append([]Option{
		WithTokenGenerator(NewFixedGenerator(testutil.Tokens("pass", 8)...)),
	}, opts...)
	return New(vars, allOpts...), vars
}

func TestEvaluator_SeedsBaseVariables(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	ch := testutil.Character("c1", 3)
	ch.AncestryID = "ancestry-elf"
	ch.ClassID = "class-rogue"
	pkg := testutil.PackageFromYAML(t, baseContent)

	ev.Pass("c1", ch, pkg)

	get := func(name string) rules.Value {
		v, ok := vars.Get("c1", name)
		require.True(t, ok, "variable %s should be seeded", name)
		return v.Value
	}
	assert.Equal(t, rules.Number(3), get(rules.VarLevel))
	assert.Equal(t, rules.Number(8), get(rules.VarClassHP))
	assert.Equal(t, rules.Number(6), get(rules.VarAncestryHP))
	assert.Equal(t, rules.Number(30), get(rules.VarSpeed))
	assert.Equal(t, rules.Boolean(false), get(rules.VarWithoutLevel))
	assert.Equal(t, rules.Attribute{Score: 1}, get(rules.AttrDexterity))
	assert.Equal(t, rules.List{"common", "elven"}, get(rules.VarLanguages))
}

func TestEvaluator_PassIdempotent(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	ch := testutil.Character("c1", 3)
	ch.AncestryID = "ancestry-elf"
	ch.ClassID = "class-rogue"
	pkg := testutil.PackageFromYAML(t, baseContent)

	ev.Pass("c1", ch, pkg)
	first := vars.Snapshot("c1")

	ev.Pass("c1", ch, pkg)
	second := vars.Snapshot("c1")

	assert.Equal(t, first, second, "identical inputs must produce identical snapshots, ledgers included")
}

func TestEvaluator_SeedHistoryTimestampsStable(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	ch := testutil.Character("c1", 3)
	ch.AncestryID = "ancestry-elf"
	ch.ClassID = "class-rogue"
	pkg := testutil.PackageFromYAML(t, baseContent)

	// Seed timestamps must come out identical on every pass, not in
	// whatever order a map iteration happens to produce.
	for pass := 0; pass < 5; pass++ {
		ev.Pass("c1", ch, pkg)
		for i, name := range []string{
			rules.VarLevel, rules.VarClassHP, rules.VarAncestryHP, rules.VarSpeed,
		} {
			h := vars.History("c1", name)
			require.Len(t, h, 1, "%s seeds exactly one history entry", name)
			assert.Equal(t, int64(i+1), h[0].Timestamp, "%s seed timestamp on pass %d", name, pass+1)
		}
	}
}

func TestEvaluator_BonusAdjustmentsGoToLedger(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: item-boots
kind: item
name: Boots of Elvenkind
operations:
  - id: boots-bonus
    kind: adjValue
    variable: SPEED
    amount: 5
    bonusType: item
`)
	ch := testutil.Character("c1", 1)
	ch.Inventory = []entity.InventoryItem{{ItemID: "item-boots", Count: 1}}

	ev.Pass("c1", ch, pkg)

	v, ok := vars.Get("c1", rules.VarSpeed)
	require.True(t, ok)
	assert.Equal(t, rules.Number(0), v.Value, "bonus never mutates the base value")

	bonuses := vars.Bonuses("c1", rules.VarSpeed)
	require.Len(t, bonuses, 1)
	assert.Equal(t, int64(5), bonuses[0].Amount)
	assert.Equal(t, "item", bonuses[0].Type)
	assert.Equal(t, "Boots of Elvenkind", bonuses[0].Source)
}

func TestEvaluator_ConditionalBonusIsAdvisory(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: feat-cat-fall
kind: feat
name: Cat Fall
operations:
  - id: cat-fall-bonus
    kind: adjValue
    variable: SKILL_ACROBATICS
    amount: 2
    conditional: true
    text: when falling
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-cat-fall", Level: 1}}

	ev.Pass("c1", ch, pkg)

	bonuses := vars.Bonuses("c1", "SKILL_ACROBATICS")
	require.Len(t, bonuses, 1)
	assert.True(t, bonuses[0].Conditional)
	assert.Equal(t, rules.BonusTypeUntyped, bonuses[0].Type, "missing bonus type defaults to untyped")
	assert.Equal(t, "when falling", bonuses[0].Text)
}

func TestEvaluator_ProficiencyPromoteOnlyWithSingleHistoryEntry(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: class-rogue
kind: class
name: Rogue
hp: 8
operations:
  - id: rogue-stealth
    kind: createValue
    variable: SKILL_STEALTH
    variant: proficiency
    value:
      rank: T
---
id: feat-stealthy
kind: feat
name: Stealthy
operations:
  - id: stealthy-promote
    kind: adjValue
    variable: SKILL_STEALTH
    rank: E
---
id: feat-redundant
kind: feat
name: Redundant Training
operations:
  - id: redundant-train
    kind: adjValue
    variable: SKILL_STEALTH
    rank: T
`)
	ch := testutil.Character("c1", 2)
	ch.ClassID = "class-rogue"
	ch.Feats = []entity.FeatRef{
		{ID: "feat-stealthy", Level: 1},
		{ID: "feat-redundant", Level: 2},
	}

	ev.Pass("c1", ch, pkg)

	v, ok := vars.Get("c1", "SKILL_STEALTH")
	require.True(t, ok)
	assert.Equal(t, rules.RankExpert, v.Value.(rules.Proficiency).Rank, "trained grant never demotes expert")

	history := vars.History("c1", "SKILL_STEALTH")
	require.Len(t, history, 2, "creation to Trained, then promotion to Expert")
	assert.Equal(t, "Untrained", history[0].From)
	assert.Equal(t, "Trained", history[0].To)
	assert.Equal(t, "Trained", history[1].From)
	assert.Equal(t, "Expert", history[1].To)
	assert.Equal(t, "Stealthy", history[1].Source)
	assert.Less(t, history[0].Timestamp, history[1].Timestamp)
}

func TestEvaluator_VariantMismatchSkipsAndRetains(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: feat-bad
kind: feat
name: Badly Authored
operations:
  - id: bad-write
    kind: setValue
    variable: SPEED
    value: true
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-bad", Level: 1}}

	result := ev.Pass("c1", ch, pkg)

	skipped := result.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "bad-write", skipped[0].OperationID)

	v, ok := vars.Get("c1", rules.VarSpeed)
	require.True(t, ok)
	assert.Equal(t, rules.VariantNumber, v.Value.Variant(), "seeded variant survives the bad write")
}

func TestEvaluator_UnknownKindSkipped(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: feat-future
kind: feat
name: From The Future
operations:
  - id: future-op
    kind: summonDragon
    variable: whatever
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-future", Level: 1}}

	result := ev.Pass("c1", ch, pkg)

	skipped := result.Skipped()
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "summonDragon")
}

func TestEvaluator_GrantSplicesAbilityOperations(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: ancestry-dwarf
kind: ancestry
name: Dwarf
hp: 10
speed: 20
operations:
  - id: dwarf-darkvision
    kind: giveAbilityBlock
    ability: ability-darkvision
---
id: ability-darkvision
kind: ability
name: Darkvision
operations:
  - id: darkvision-flag
    kind: createValue
    variable: SENSE_DARKVISION
    variant: boolean
    value: true
`)
	ch := testutil.Character("c1", 1)
	ch.AncestryID = "ancestry-dwarf"

	ev.Pass("c1", ch, pkg)

	v, ok := vars.Get("c1", "SENSE_DARKVISION")
	require.True(t, ok)
	assert.Equal(t, rules.Boolean(true), v.Value)

	// Provenance is attributed to the granted block, not the grantor.
	history := vars.History("c1", "SENSE_DARKVISION")
	require.Len(t, history, 1)
	assert.Equal(t, "Darkvision", history[0].Source)
}

func TestEvaluator_GrantCycleSkipped(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: feat-loop
kind: feat
name: Looping Feat
operations:
  - id: loop-grant
    kind: giveAbilityBlock
    ability: ability-a
---
id: ability-a
kind: ability
name: Ability A
operations:
  - id: a-grants-b
    kind: giveAbilityBlock
    ability: ability-b
---
id: ability-b
kind: ability
name: Ability B
operations:
  - id: b-grants-a
    kind: giveAbilityBlock
    ability: ability-a
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-loop", Level: 1}}

	result := ev.Pass("c1", ch, pkg)

	skipped := result.Skipped()
	require.Len(t, skipped, 1, "the pass terminates with exactly the cyclic re-grant skipped")
	assert.Equal(t, "b-grants-a", skipped[0].OperationID)
	assert.Contains(t, skipped[0].Reason, "cycle")
}

func TestEvaluator_GrantDepthLimit(t *testing.T) {
	ev, _ := newTestEvaluator(t, WithMaxGrantDepth(2))
	pkg := testutil.PackageFromYAML(t, `
id: feat-deep
kind: feat
name: Deep Feat
operations:
  - kind: giveAbilityBlock
    ability: ability-1
---
id: ability-1
kind: ability
name: Layer One
operations:
  - kind: giveAbilityBlock
    ability: ability-2
---
id: ability-2
kind: ability
name: Layer Two
operations:
  - id: too-deep-grant
    kind: giveAbilityBlock
    ability: ability-3
---
id: ability-3
kind: ability
name: Layer Three
operations: []
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-deep", Level: 1}}

	result := ev.Pass("c1", ch, pkg)

	skipped := result.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "too-deep-grant", skipped[0].OperationID)
	assert.Contains(t, skipped[0].Reason, "depth")
}

func TestEvaluator_ConditionalBranches(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: class-monk
kind: class
name: Monk
hp: 10
operations:
  - id: monk-speed
    kind: conditional
    if:
      variable: LEVEL
      compare: gte
      to: 3
    then:
      - id: fast-movement
        kind: adjValue
        variable: SPEED
        amount: 10
    else:
      - id: no-movement
        kind: adjValue
        variable: SPEED
        amount: 0
`)

	chLow := testutil.Character("low", 1)
	chLow.ClassID = "class-monk"
	ev.Pass("low", chLow, pkg)
	v, _ := vars.Get("low", rules.VarSpeed)
	assert.Equal(t, rules.Number(0), v.Value)

	chHigh := testutil.Character("high", 3)
	chHigh.ClassID = "class-monk"
	ev.Pass("high", chHigh, pkg)
	v, _ = vars.Get("high", rules.VarSpeed)
	assert.Equal(t, rules.Number(10), v.Value)
}

func TestEvaluator_ConditionOnAbsentVariableIsFalse(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: feat-cond
kind: feat
name: Conditioned
operations:
  - kind: conditional
    if:
      variable: NO_SUCH_VARIABLE
      compare: eq
      to: 1
    then:
      - kind: adjValue
        variable: SPEED
        amount: 99
    else:
      - kind: adjValue
        variable: SPEED
        amount: 1
`)
	ch := testutil.Character("c1", 1)
	ch.Feats = []entity.FeatRef{{ID: "feat-cond", Level: 1}}

	ev.Pass("c1", ch, pkg)

	v, _ := vars.Get("c1", rules.VarSpeed)
	assert.Equal(t, rules.Number(1), v.Value, "absent variable means false, the else branch runs")
}

func TestEvaluator_AttributeBoostAboveFour(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: class-barbarian
kind: class
name: Barbarian
hp: 12
operations:
  - kind: setValue
    variable: ATTRIBUTE_STR
    value:
      score: 4
  - id: boost-1
    kind: adjValue
    variable: ATTRIBUTE_STR
    amount: 1
  - id: boost-2
    kind: adjValue
    variable: ATTRIBUTE_STR
    amount: 1
`)
	ch := testutil.Character("c1", 10)
	ch.ClassID = "class-barbarian"

	ev.Pass("c1", ch, pkg)

	v, ok := vars.Get("c1", rules.AttrStrength)
	require.True(t, ok)
	assert.Equal(t, rules.Attribute{Score: 5, Partial: false}, v.Value,
		"two half-boosts above +4 complete one full boost")
}

const selectContent = `
id: class-rogue
kind: class
name: Rogue
hp: 8
operations:
  - id: rogue-boost
    kind: select
    prompt: Choose an attribute boost
    options:
      - key: str
        label: Strength
        operations:
          - kind: adjValue
            variable: ATTRIBUTE_STR
            amount: 1
      - key: dex
        label: Dexterity
        operations:
          - kind: adjValue
            variable: ATTRIBUTE_DEX
            amount: 1
`

func rogueBoostPath(t *testing.T) string {
	t.Helper()
	path, err := rules.SelectionPath{
		SourceKind:  rules.SourceClass,
		SourceID:    "class-rogue",
		OperationID: "rogue-boost",
	}.Hash()
	require.NoError(t, err)
	return path
}

func TestEvaluator_SelectWithoutChoiceIsPending(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, selectContent)
	ch := testutil.Character("c1", 1)
	ch.ClassID = "class-rogue"

	result := ev.Pass("c1", ch, pkg)

	pending := result.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "rogue-boost", pending[0].OperationID)
	assert.Equal(t, rogueBoostPath(t), pending[0].SelectionPath)
	assert.Equal(t, "Choose an attribute boost", pending[0].Reason)
	require.Len(t, pending[0].Options, 2)
	assert.Equal(t, "str", pending[0].Options[0].Key)
	assert.Equal(t, "Strength", pending[0].Options[0].Label)

	// The option branch did not run.
	v, _ := vars.Get("c1", rules.AttrStrength)
	assert.Equal(t, rules.Attribute{}, v.Value)
}

func TestEvaluator_SelectWithStoredChoiceApplies(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, selectContent)
	ch := testutil.Character("c1", 1)
	ch.ClassID = "class-rogue"
	ch.SetSelection(rogueBoostPath(t), "str")

	result := ev.Pass("c1", ch, pkg)

	assert.Empty(t, result.Pending())
	v, _ := vars.Get("c1", rules.AttrStrength)
	assert.Equal(t, rules.Attribute{Score: 1}, v.Value)
}

func TestEvaluator_SelectStaleChoiceSkipped(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, selectContent)
	ch := testutil.Character("c1", 1)
	ch.ClassID = "class-rogue"
	ch.SetSelection(rogueBoostPath(t), "cha")

	result := ev.Pass("c1", ch, pkg)

	skipped := result.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "rogue-boost", skipped[0].OperationID)
	assert.Contains(t, skipped[0].Reason, "cha")

	v, _ := vars.Get("c1", rules.AttrStrength)
	assert.Equal(t, rules.Attribute{}, v.Value, "stale selection applies nothing")
}

func TestEvaluator_SelectClearedChoiceRevertsToPending(t *testing.T) {
	ev, _ := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, selectContent)
	ch := testutil.Character("c1", 1)
	ch.ClassID = "class-rogue"
	path := rogueBoostPath(t)
	ch.SetSelection(path, "dex")
	ch.SetSelection(path, "")

	result := ev.Pass("c1", ch, pkg)
	assert.Len(t, result.Pending(), 1)
}

func TestEvaluator_SelectFiltered(t *testing.T) {
	filtered := `
id: class-fighter
kind: class
name: Fighter
hp: 10
operations:
  - id: fighter-feat
    kind: select
    prompt: Choose a general feat
    filter:
      kind: feat
      maxLevel: 1
      traits: [general]
---
id: feat-toughness
kind: feat
name: Toughness
level: 1
traits: [general]
operations:
  - kind: adjValue
    variable: MAX_HEALTH
    amount: 3
---
id: feat-high-level
kind: feat
name: Too Advanced
level: 6
traits: [general]
operations: []
`
	path, err := rules.SelectionPath{
		SourceKind:  rules.SourceClass,
		SourceID:    "class-fighter",
		OperationID: "fighter-feat",
	}.Hash()
	require.NoError(t, err)

	t.Run("pending lists only candidates inside the filter", func(t *testing.T) {
		ev, _ := newTestEvaluator(t)
		pkg := testutil.PackageFromYAML(t, filtered)
		ch := testutil.Character("c1", 1)
		ch.ClassID = "class-fighter"

		result := ev.Pass("c1", ch, pkg)
		pending := result.Pending()
		require.Len(t, pending, 1)
		require.Len(t, pending[0].Options, 1)
		assert.Equal(t, "feat-toughness", pending[0].Options[0].Key)
	})

	t.Run("stored candidate grants the record", func(t *testing.T) {
		ev, vars := newTestEvaluator(t)
		pkg := testutil.PackageFromYAML(t, filtered)
		ch := testutil.Character("c1", 1)
		ch.ClassID = "class-fighter"
		ch.SetSelection(path, "feat-toughness")

		ev.Pass("c1", ch, pkg)
		v, ok := vars.Get("c1", "MAX_HEALTH")
		require.True(t, ok)
		assert.Equal(t, rules.Number(3), v.Value)

		// Provenance belongs to the granted record.
		history := vars.History("c1", "MAX_HEALTH")
		require.Len(t, history, 1)
		assert.Equal(t, "Toughness", history[0].Source)
	})

	t.Run("selection outside the filter is stranded", func(t *testing.T) {
		ev, _ := newTestEvaluator(t)
		pkg := testutil.PackageFromYAML(t, filtered)
		ch := testutil.Character("c1", 1)
		ch.ClassID = "class-fighter"
		ch.SetSelection(path, "feat-high-level")

		result := ev.Pass("c1", ch, pkg)
		skipped := result.Skipped()
		require.Len(t, skipped, 1)
		assert.Contains(t, skipped[0].Reason, "no longer satisfies")
	})
}

func TestEvaluator_ListAppendDeduplicates(t *testing.T) {
	ev, vars := newTestEvaluator(t)
	pkg := testutil.PackageFromYAML(t, `
id: ancestry-elf
kind: ancestry
name: Elf
operations:
  - kind: adjValue
    variable: LANGUAGE_IDS
    append: [common, elven]
---
id: bg-scholar
kind: background
name: Scholar
operations:
  - kind: adjValue
    variable: LANGUAGE_IDS
    append: [common, draconic]
`)
	ch := testutil.Character("c1", 1)
	ch.AncestryID = "ancestry-elf"
	ch.BackgroundID = "bg-scholar"

	ev.Pass("c1", ch, pkg)

	v, _ := vars.Get("c1", rules.VarLanguages)
	assert.Equal(t, rules.List{"common", "elven", "draconic"}, v.Value)
}

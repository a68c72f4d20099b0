package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeOp(t *testing.T, src string) Operation {
	t.Helper()
	var op Operation
	require.NoError(t, yaml.Unmarshal([]byte(src), &op))
	return op
}

func TestOperation_DecodeCreateValue(t *testing.T) {
	op := decodeOp(t, `
id: op-1
kind: createValue
variable: SKILL_STEALTH
variant: proficiency
value:
  rank: T
  attribute: ATTRIBUTE_DEX
`)
	require.IsType(t, CreateValue{}, op.Data)
	data := op.Data.(CreateValue)
	assert.Equal(t, "SKILL_STEALTH", data.Name)
	assert.Equal(t, VariantProficiency, data.Of)
	assert.Equal(t, Proficiency{Rank: RankTrained, Attribute: "ATTRIBUTE_DEX"}, data.Initial)
}

func TestOperation_DecodeCreateValue_VariantValueMismatch(t *testing.T) {
	op := decodeOp(t, `
id: op-1
kind: createValue
variable: SPEED
variant: number
value: true
`)
	assert.Nil(t, op.Data, "initial value of wrong variant should not decode")
	assert.Equal(t, OpKind("createValue"), op.Kind())
}

func TestOperation_DecodeAdjValue(t *testing.T) {
	op := decodeOp(t, `
id: op-2
kind: adjValue
variable: AC_BONUS
amount: 2
bonusType: item
`)
	require.IsType(t, AdjustValue{}, op.Data)
	data := op.Data.(AdjustValue)
	assert.Equal(t, int64(2), data.Amount)
	assert.Equal(t, "item", data.BonusType)
	assert.False(t, data.Conditional)
}

func TestOperation_DecodeAdjValue_Rank(t *testing.T) {
	op := decodeOp(t, `
kind: adjValue
variable: SKILL_STEALTH
rank: expert
`)
	require.IsType(t, AdjustValue{}, op.Data)
	assert.Equal(t, RankExpert, op.Data.(AdjustValue).Rank)

	bad := decodeOp(t, `
kind: adjValue
variable: SKILL_STEALTH
rank: grandmaster
`)
	assert.Nil(t, bad.Data, "unknown rank should not decode")
}

func TestOperation_DecodeSetValue(t *testing.T) {
	op := decodeOp(t, `
kind: setValue
variable: LANGUAGE_IDS
value: [common, elven]
`)
	require.IsType(t, SetValue{}, op.Data)
	assert.Equal(t, List{"common", "elven"}, op.Data.(SetValue).To)
}

func TestOperation_DecodeScalarPayloads(t *testing.T) {
	set := decodeOp(t, `
kind: setValue
variable: SPEED
value: 25
`)
	require.IsType(t, SetValue{}, set.Data)
	assert.Equal(t, Number(25), set.Data.(SetValue).To)

	create := decodeOp(t, `
kind: createValue
variable: PROF_WITHOUT_LEVEL
variant: boolean
value: true
`)
	require.IsType(t, CreateValue{}, create.Data)
	assert.Equal(t, Boolean(true), create.Data.(CreateValue).Initial)

	absent := decodeOp(t, `
kind: setValue
variable: SPEED
`)
	assert.Nil(t, absent.Data, "setValue without a value should not decode")
}

func TestOperation_DecodeGiveAbilityBlock(t *testing.T) {
	op := decodeOp(t, `
kind: giveAbilityBlock
ability: ability-darkvision
`)
	require.IsType(t, GiveAbility{}, op.Data)
	assert.Equal(t, "ability-darkvision", op.Data.(GiveAbility).Ability)
}

func TestOperation_DecodeSelect_Options(t *testing.T) {
	op := decodeOp(t, `
id: sel-1
kind: select
prompt: Choose a boost
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
`)
	require.IsType(t, Select{}, op.Data)
	data := op.Data.(Select)
	require.Len(t, data.Options, 2)
	assert.Equal(t, "str", data.Options[0].Key)
	assert.Len(t, data.Options[0].Operations, 1)
	assert.Nil(t, data.Filter)
}

func TestOperation_DecodeSelect_Filter(t *testing.T) {
	op := decodeOp(t, `
kind: select
prompt: Choose a feat
filter:
  kind: feat
  maxLevel: 4
  traits: [general]
`)
	require.IsType(t, Select{}, op.Data)
	data := op.Data.(Select)
	require.NotNil(t, data.Filter)
	assert.Equal(t, SourceFeat, data.Filter.Kind)
	assert.Equal(t, 4, data.Filter.MaxLevel)
}

func TestOperation_DecodeSelect_OptionsAndFilterExclusive(t *testing.T) {
	both := decodeOp(t, `
kind: select
options:
  - key: a
filter:
  kind: feat
`)
	assert.Nil(t, both.Data, "options and filter together should not decode")

	neither := decodeOp(t, `
kind: select
prompt: pick something
`)
	assert.Nil(t, neither.Data, "select needs options or filter")
}

func TestOperation_DecodeConditional(t *testing.T) {
	op := decodeOp(t, `
kind: conditional
if:
  variable: LEVEL
  compare: gte
  to: 5
then:
  - kind: adjValue
    variable: SPEED
    amount: 5
else:
  - kind: adjValue
    variable: SPEED
    amount: 0
`)
	require.IsType(t, Conditional{}, op.Data)
	data := op.Data.(Conditional)
	assert.Equal(t, "LEVEL", data.If.Variable)
	assert.Equal(t, CompareGte, data.If.Compare)
	require.NotNil(t, data.If.ToNumber)
	assert.Equal(t, int64(5), *data.If.ToNumber)
	assert.Len(t, data.Then, 1)
	assert.Len(t, data.Else, 1)
}

func TestOperation_DecodeUnknownKind(t *testing.T) {
	op := decodeOp(t, `
id: op-x
kind: summonDragon
variable: whatever
`)
	assert.Nil(t, op.Data, "unknown kinds stay representable with nil payload")
	assert.Equal(t, "summonDragon", op.RawKind)
	assert.Equal(t, OpKind("summonDragon"), op.Kind())
}

func TestOperation_DecodeMalformedPayload(t *testing.T) {
	// adjValue without a variable name is malformed, not an error.
	op := decodeOp(t, `
id: op-y
kind: adjValue
amount: 3
`)
	assert.Nil(t, op.Data)
	assert.Equal(t, "adjValue", op.RawKind)
}

func TestCondition_DecodeOperandTypes(t *testing.T) {
	boolCond := decodeOp(t, `
kind: conditional
if:
  variable: PROF_WITHOUT_LEVEL
  compare: eq
  to: true
then: []
`)
	require.IsType(t, Conditional{}, boolCond.Data)
	require.NotNil(t, boolCond.Data.(Conditional).If.ToBool)
	assert.True(t, *boolCond.Data.(Conditional).If.ToBool)

	strCond := decodeOp(t, `
kind: conditional
if:
  variable: SKILL_STEALTH
  compare: atLeast
  to: E
then: []
`)
	require.IsType(t, Conditional{}, strCond.Data)
	assert.Equal(t, "E", strCond.Data.(Conditional).If.ToString)
}

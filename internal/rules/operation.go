package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// OpKind identifies an operation kind.
type OpKind string

const (
	OpCreateValue      OpKind = "createValue"
	OpAdjValue         OpKind = "adjValue"
	OpSetValue         OpKind = "setValue"
	OpGiveAbilityBlock OpKind = "giveAbilityBlock"
	OpSelect           OpKind = "select"
	OpConditional      OpKind = "conditional"
)

// OpData is a sealed interface over operation payloads.
// Only CreateValue, AdjustValue, SetValue, GiveAbility, Select, and
// Conditional implement it.
type OpData interface {
	opData() // Sealed - only these types implement it

	// Kind reports the operation kind of this payload.
	Kind() OpKind
}

// Operation is one declarative rule action attached to a content record.
//
// The ID is stable across passes - select operations are matched against
// persisted selections by a path built from this ID.
//
// Unknown or malformed authored kinds are representable: Data is nil and
// RawKind preserves what the author wrote. The evaluator reports such
// operations as skipped; the decoder never fails a whole content file
// over one bad operation (content is often homebrew).
type Operation struct {
	ID      string
	Data    OpData
	RawKind string // authored kind string, kept for diagnostics
}

// Kind reports the operation kind, or the raw authored string when the
// payload did not decode.
func (op Operation) Kind() OpKind {
	if op.Data != nil {
		return op.Data.Kind()
	}
	return OpKind(op.RawKind)
}

// CreateValue creates a named variable with an explicit variant and an
// optional initial value.
type CreateValue struct {
	Name    string
	Of      Variant
	Initial Value // nil means the variant's default
}

func (CreateValue) opData()      {}
func (CreateValue) Kind() OpKind { return OpCreateValue }

// AdjustValue adjusts an existing (or implicitly created) variable.
//
// The adjustment shape depends on the target variant:
//   - Number: Amount is added
//   - Attribute: Amount boosts (+1) or flaws (-1); boosts above +4 apply a
//     half-boost, two halves make a whole
//   - Proficiency: Rank promotes the rank, never demotes
//   - List: Append adds entries (duplicates dropped)
//   - Boolean: SetBool assigns
//
// When BonusType is non-empty the adjustment is recorded on the bonus
// ledger (subject to stacking) instead of mutating the base value.
// BonusType "untyped" stacks additively with everything.
type AdjustValue struct {
	Name        string
	Amount      int64
	Rank        Rank
	Append      []string
	SetBool     *bool
	BonusType   string
	Conditional bool   // situational bonus - advisory only, never auto-applied
	Text        string // display text for conditional bonuses
}

func (AdjustValue) opData()      {}
func (AdjustValue) Kind() OpKind { return OpAdjValue }

// SetValue assigns a variable directly. Last writer wins; a no-op
// assignment produces no history entry.
type SetValue struct {
	Name string
	To   Value
}

func (SetValue) opData()      {}
func (SetValue) Kind() OpKind { return OpSetValue }

// GiveAbility grants an ability block. The granted block's own operations
// are spliced into the pass at the grant point (features can grant
// features). Revisiting an ability id within one pass is a cycle and is
// skipped.
type GiveAbility struct {
	Ability string // ability block id
}

func (GiveAbility) opData()      {}
func (GiveAbility) Kind() OpKind { return OpGiveAbilityBlock }

// Select asks the user for a choice. Exactly one of Options or Filter is
// set: predefined options carry their own operations inline; a filter
// selects a content record whose operations are then granted.
type Select struct {
	Prompt  string
	Options []SelectOption
	Filter  *OptionFilter
}

func (Select) opData()      {}
func (Select) Kind() OpKind { return OpSelect }

// SelectOption is one predefined choice for a Select operation.
type SelectOption struct {
	Key        string // stored selection value
	Label      string
	Operations []Operation
}

// OptionFilter describes filtered-by-query select options: any content
// record of the given kind, within the level gate, carrying all listed
// traits, is a candidate.
type OptionFilter struct {
	Kind     SourceKind
	MaxLevel int
	Traits   []string
}

// Conditional applies Then when the condition holds against the current
// variable state, Else otherwise. A condition on an absent variable is
// false, not an error.
type Conditional struct {
	If   Condition
	Then []Operation
	Else []Operation
}

func (Conditional) opData()      {}
func (Conditional) Kind() OpKind { return OpConditional }

// CompareOp is a condition comparison operator.
type CompareOp string

const (
	CompareEq      CompareOp = "eq"
	CompareNeq     CompareOp = "neq"
	CompareGte     CompareOp = "gte"
	CompareLte     CompareOp = "lte"
	CompareGt      CompareOp = "gt"
	CompareLt      CompareOp = "lt"
	CompareHas     CompareOp = "has"     // list contains entry
	CompareAtLeast CompareOp = "atLeast" // proficiency rank at least
)

// Condition compares a variable's current value against an operand.
// Exactly one operand field is set, matching the target variant.
type Condition struct {
	Variable string
	Compare  CompareOp
	ToNumber *int64
	ToString string // list entry for has, rank code for atLeast
	ToBool   *bool
}

// opYAML is the flat authored shape of an operation. Fields are shared
// across kinds; decode dispatches on kind and picks the relevant ones.
type opYAML struct {
	ID          string       `yaml:"id"`
	Kind        string       `yaml:"kind"`
	Variable    string       `yaml:"variable"`
	Variant     string       `yaml:"variant"`
	Value       yaml.Node    `yaml:"value"`
	Amount      int64        `yaml:"amount"`
	Rank        string       `yaml:"rank"`
	Append      []string     `yaml:"append"`
	Set         *bool        `yaml:"set"`
	BonusType   string       `yaml:"bonusType"`
	Conditional bool         `yaml:"conditional"`
	Text        string       `yaml:"text"`
	Ability     string       `yaml:"ability"`
	Prompt      string       `yaml:"prompt"`
	Options     []optionYAML `yaml:"options"`
	Filter      *filterYAML  `yaml:"filter"`
	If          *condYAML    `yaml:"if"`
	Then        []Operation  `yaml:"then"`
	Else        []Operation  `yaml:"else"`
}

type optionYAML struct {
	Key        string      `yaml:"key"`
	Label      string      `yaml:"label"`
	Operations []Operation `yaml:"operations"`
}

type filterYAML struct {
	Kind     string   `yaml:"kind"`
	MaxLevel int      `yaml:"maxLevel"`
	Traits   []string `yaml:"traits"`
}

type condYAML struct {
	Variable string    `yaml:"variable"`
	Compare  string    `yaml:"compare"`
	To       yaml.Node `yaml:"to"`
}

// UnmarshalYAML decodes an authored operation, dispatching on kind.
//
// A decode problem inside one operation (unknown kind, bad payload) leaves
// Data nil instead of failing the document - the evaluator reports it as
// skipped with the raw kind for diagnostics.
func (op *Operation) UnmarshalYAML(node *yaml.Node) error {
	var raw opYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	op.ID = raw.ID
	op.RawKind = raw.Kind
	op.Data = decodeOpData(&raw)
	return nil
}

// decodeOpData builds the payload for a known kind, or nil when the kind
// is unknown or the payload is malformed.
func decodeOpData(raw *opYAML) OpData {
	switch OpKind(raw.Kind) {
	case OpCreateValue:
		variant := Variant(raw.Variant)
		if !ValidVariants[variant] {
			return nil
		}
		data := CreateValue{Name: raw.Variable, Of: variant}
		if !raw.Value.IsZero() {
			v, err := decodeValue(&raw.Value)
			if err != nil || v.Variant() != variant {
				return nil
			}
			data.Initial = v
		}
		if data.Name == "" {
			return nil
		}
		return data

	case OpAdjValue:
		if raw.Variable == "" {
			return nil
		}
		data := AdjustValue{
			Name:        raw.Variable,
			Amount:      raw.Amount,
			Append:      raw.Append,
			SetBool:     raw.Set,
			BonusType:   raw.BonusType,
			Conditional: raw.Conditional,
			Text:        raw.Text,
		}
		if raw.Rank != "" {
			rank, ok := ParseRank(raw.Rank)
			if !ok {
				return nil
			}
			data.Rank = rank
		}
		return data

	case OpSetValue:
		if raw.Variable == "" || raw.Value.IsZero() {
			return nil
		}
		v, err := decodeValue(&raw.Value)
		if err != nil {
			return nil
		}
		return SetValue{Name: raw.Variable, To: v}

	case OpGiveAbilityBlock:
		if raw.Ability == "" {
			return nil
		}
		return GiveAbility{Ability: raw.Ability}

	case OpSelect:
		data := Select{Prompt: raw.Prompt}
		for _, opt := range raw.Options {
			data.Options = append(data.Options, SelectOption(opt))
		}
		if raw.Filter != nil {
			data.Filter = &OptionFilter{
				Kind:     SourceKind(raw.Filter.Kind),
				MaxLevel: raw.Filter.MaxLevel,
				Traits:   raw.Filter.Traits,
			}
		}
		// Exactly one of options/filter
		if (len(data.Options) == 0) == (data.Filter == nil) {
			return nil
		}
		return data

	case OpConditional:
		if raw.If == nil {
			return nil
		}
		cond, err := decodeCondition(raw.If)
		if err != nil {
			return nil
		}
		return Conditional{If: cond, Then: raw.Then, Else: raw.Else}

	default:
		return nil
	}
}

// decodeValue decodes a YAML node into a Value by shape:
// int -> Number, bool -> Boolean, sequence -> List,
// mapping with "rank" -> Proficiency, mapping with "score" -> Attribute.
func decodeValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!int":
			var n int64
			if err := node.Decode(&n); err != nil {
				return nil, err
			}
			return Number(n), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			return Boolean(b), nil
		default:
			return nil, fmt.Errorf("unsupported scalar tag %s", node.Tag)
		}

	case yaml.SequenceNode:
		var l []string
		if err := node.Decode(&l); err != nil {
			return nil, err
		}
		return List(l), nil

	case yaml.MappingNode:
		var m struct {
			Rank      string `yaml:"rank"`
			Attribute string `yaml:"attribute"`
			Override  *int64 `yaml:"override"`
			Score     *int64 `yaml:"score"`
			Partial   bool   `yaml:"partial"`
		}
		if err := node.Decode(&m); err != nil {
			return nil, err
		}
		if m.Rank != "" {
			rank, ok := ParseRank(m.Rank)
			if !ok {
				return nil, fmt.Errorf("unknown rank %q", m.Rank)
			}
			return Proficiency{Rank: rank, Attribute: m.Attribute, Override: m.Override}, nil
		}
		if m.Score != nil {
			return Attribute{Score: *m.Score, Partial: m.Partial}, nil
		}
		return nil, fmt.Errorf("mapping value needs rank or score")

	default:
		return nil, fmt.Errorf("unsupported value node kind %d", node.Kind)
	}
}

// decodeCondition decodes an authored condition, typing the operand by
// its YAML tag.
func decodeCondition(raw *condYAML) (Condition, error) {
	cond := Condition{Variable: raw.Variable, Compare: CompareOp(raw.Compare)}
	if cond.Variable == "" {
		return cond, fmt.Errorf("condition variable is required")
	}
	switch cond.Compare {
	case CompareEq, CompareNeq, CompareGte, CompareLte, CompareGt, CompareLt,
		CompareHas, CompareAtLeast:
	default:
		return cond, fmt.Errorf("unknown compare op %q", raw.Compare)
	}
	if raw.To.IsZero() {
		return cond, fmt.Errorf("condition operand is required")
	}
	switch raw.To.Tag {
	case "!!int":
		var n int64
		if err := raw.To.Decode(&n); err != nil {
			return cond, err
		}
		cond.ToNumber = &n
	case "!!bool":
		var b bool
		if err := raw.To.Decode(&b); err != nil {
			return cond, err
		}
		cond.ToBool = &b
	case "!!str":
		if err := raw.To.Decode(&cond.ToString); err != nil {
			return cond, err
		}
	default:
		return cond, fmt.Errorf("unsupported condition operand tag %s", raw.To.Tag)
	}
	return cond, nil
}

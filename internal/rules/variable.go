package rules

import (
	"fmt"
	"slices"
	"strings"
)

// Variant identifies the shape of a variable's value.
// A variable's variant is fixed at first creation for a given name;
// later writes must be variant-compatible or are rejected.
type Variant string

const (
	VariantNumber      Variant = "number"
	VariantBoolean     Variant = "boolean"
	VariantList        Variant = "list-str"
	VariantProficiency Variant = "proficiency"
	VariantAttribute   Variant = "attribute"
)

// ValidVariants defines the allowed variant strings in authored content.
var ValidVariants = map[Variant]bool{
	VariantNumber:      true,
	VariantBoolean:     true,
	VariantList:        true,
	VariantProficiency: true,
	VariantAttribute:   true,
}

// Value is a sealed interface over the variable value variants.
// Only Number, Boolean, List, Proficiency, and Attribute implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Variant reports which variant this value is.
	Variant() Variant

	// String renders the value for history entries and display.
	String() string
}

// Number is a signed integer value (speeds, AC components, HP pools).
type Number int64

func (Number) value()           {}
func (Number) Variant() Variant { return VariantNumber }
func (n Number) String() string { return fmt.Sprintf("%d", int64(n)) }

// Boolean is a feature toggle (e.g. proficiency without level).
type Boolean bool

func (Boolean) value()           {}
func (Boolean) Variant() Variant { return VariantBoolean }
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// List is a string set (immunities, language ids, trait ids).
// Order is authoring order; duplicates are not stored.
type List []string

func (List) value()           {}
func (List) Variant() Variant { return VariantList }
func (l List) String() string { return strings.Join(l, ", ") }

// Contains reports whether the list holds the given entry.
func (l List) Contains(s string) bool { return slices.Contains(l, s) }

// Rank is a proficiency rank. Ranks are strictly ordered:
// Untrained < Trained < Expert < Master < Legendary.
type Rank string

const (
	RankUntrained Rank = "U"
	RankTrained   Rank = "T"
	RankExpert    Rank = "E"
	RankMaster    Rank = "M"
	RankLegendary Rank = "L"
)

// rankOrder maps ranks to their ordering and rank bonus.
// Rank bonus is 2 per step above untrained.
var rankOrder = map[Rank]int{
	RankUntrained: 0,
	RankTrained:   1,
	RankExpert:    2,
	RankMaster:    3,
	RankLegendary: 4,
}

// Valid reports whether r is a known rank code.
func (r Rank) Valid() bool { _, ok := rankOrder[r]; return ok }

// Bonus returns the numeric rank bonus (0/2/4/6/8).
func (r Rank) Bonus() int64 { return int64(rankOrder[r]) * 2 }

// AtLeast reports whether r is the same rank as other or higher.
func (r Rank) AtLeast(other Rank) bool { return rankOrder[r] >= rankOrder[other] }

// Name returns the display name ("Untrained", "Trained", ...).
func (r Rank) Name() string {
	switch r {
	case RankUntrained:
		return "Untrained"
	case RankTrained:
		return "Trained"
	case RankExpert:
		return "Expert"
	case RankMaster:
		return "Master"
	case RankLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// ParseRank converts an authored rank string ("T", "Trained", "trained")
// into a Rank. Returns false for unknown strings.
func ParseRank(s string) (Rank, bool) {
	switch strings.ToUpper(s) {
	case "U", "UNTRAINED":
		return RankUntrained, true
	case "T", "TRAINED":
		return RankTrained, true
	case "E", "EXPERT":
		return RankExpert, true
	case "M", "MASTER":
		return RankMaster, true
	case "L", "LEGENDARY":
		return RankLegendary, true
	default:
		return "", false
	}
}

// Proficiency is a trainable competency: a rank, an optional associated
// attribute variable name, and an optional flat value override.
//
// The override, when present, replaces the rank-derived math entirely
// (used by creature stat blocks that declare final numbers).
type Proficiency struct {
	Rank      Rank
	Attribute string // optional attribute variable name (e.g. ATTRIBUTE_DEX)
	Override  *int64 // optional flat value override
}

func (Proficiency) value()           {}
func (Proficiency) Variant() Variant { return VariantProficiency }
func (p Proficiency) String() string { return p.Rank.Name() }

// Attribute is an attribute score modifier with half-boost tracking.
// Partial marks a half-boost still pending its second half.
type Attribute struct {
	Score   int64
	Partial bool
}

func (Attribute) value()           {}
func (Attribute) Variant() Variant { return VariantAttribute }
func (a Attribute) String() string {
	s := fmt.Sprintf("%+d", a.Score)
	if a.Partial {
		s += " (partial)"
	}
	return s
}

// DefaultValue returns the zero value for a variant.
// Used when an adjustment targets a variable that does not exist yet.
func DefaultValue(v Variant) (Value, error) {
	switch v {
	case VariantNumber:
		return Number(0), nil
	case VariantBoolean:
		return Boolean(false), nil
	case VariantList:
		return List(nil), nil
	case VariantProficiency:
		return Proficiency{Rank: RankUntrained}, nil
	case VariantAttribute:
		return Attribute{}, nil
	default:
		return nil, fmt.Errorf("unknown variant: %q", v)
	}
}

// ValueEqual reports whether two values are the same variant and equal.
// Used to suppress no-op history entries.
func ValueEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Variant() != b.Variant() {
		return false
	}
	switch av := a.(type) {
	case Number:
		return av == b.(Number)
	case Boolean:
		return av == b.(Boolean)
	case List:
		return slices.Equal(av, b.(List))
	case Proficiency:
		bv := b.(Proficiency)
		if av.Rank != bv.Rank || av.Attribute != bv.Attribute {
			return false
		}
		if (av.Override == nil) != (bv.Override == nil) {
			return false
		}
		return av.Override == nil || *av.Override == *bv.Override
	case Attribute:
		return av == b.(Attribute)
	default:
		return false
	}
}

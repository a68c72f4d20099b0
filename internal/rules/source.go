package rules

// SourceKind labels the content record kind an operation came from.
type SourceKind string

const (
	SourceAncestry      SourceKind = "ancestry"
	SourceHeritage      SourceKind = "heritage"
	SourceBackground    SourceKind = "background"
	SourceClass         SourceKind = "class"
	SourceArchetype     SourceKind = "archetype"
	SourceFeat          SourceKind = "feat"
	SourceItem          SourceKind = "item"
	SourceCondition     SourceKind = "condition"
	SourceContentSource SourceKind = "content-source"
	SourceAbility       SourceKind = "ability" // granted ability blocks
	SourceLanguage      SourceKind = "language"
)

// DefaultPrecedence is the documented default ordering of operation
// sources within one evaluation pass. Later kinds see (and may override)
// the state written by earlier ones; content-source overrides run last.
//
// The exact order is a rules question, not an engine invariant - the
// resolver accepts a custom order for callers that need a different one.
var DefaultPrecedence = []SourceKind{
	SourceAncestry,
	SourceHeritage,
	SourceBackground,
	SourceClass,
	SourceArchetype,
	SourceFeat,
	SourceItem,
	SourceCondition,
	SourceContentSource,
}

// OperationSource is one content record's contribution to a pass: its
// operations in authoring order plus a stable provenance label.
type OperationSource struct {
	Kind       SourceKind
	ID         string // content record id
	Label      string // display label (e.g. "Rogue", "Boots of Elvenkind")
	Level      int    // level the source was acquired at (0 = always)
	Operations []Operation
}

// SourcedOperation is one entry of the flat, ordered operation list the
// resolver hands to the evaluator.
type SourcedOperation struct {
	Op     Operation
	Source *OperationSource
}

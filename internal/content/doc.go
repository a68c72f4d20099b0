// Package content models the loaded rule catalog: classes, ancestries,
// backgrounds, heritages, feats, items, conditions, languages, ability
// blocks, and content-source overrides, each carrying its authored
// operations.
//
// Content is authored in YAML and validated against an embedded CUE
// schema before structural decoding. Validation collects all errors
// (not fail-fast) - homebrew content is expected to be wrong sometimes,
// and authors want the full list.
//
// A Package is an immutable in-memory snapshot. The engine never loads
// content itself; a fully loaded Package is a parameter to the resolver
// and evaluator, which is what keeps a pass a pure function of its
// inputs.
package content

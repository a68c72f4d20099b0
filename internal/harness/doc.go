// Package harness provides a conformance testing framework for the
// evaluation engine.
//
// A scenario is a YAML file pairing a content directory with an inline
// character record and a list of assertions over the settled build:
// variable values, proficiency totals, sheet numbers, pending-selection
// and history counts. Scenarios run the real evaluator and post
// processing pipeline - nothing is mocked - with deterministic pass
// tokens so results golden-compare byte for byte.
//
// Golden files live under testdata/golden and are regenerated with
// go test -update.
package harness

// Package rules provides the foundational types for the variable
// derivation engine.
//
// This package contains type definitions only. All other internal packages
// import rules; rules imports nothing internal. This ensures rules remains
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Variable values are a sealed sum type (Value) - one variant per game
//     value shape, fixed at first creation
//   - Operations are a sealed sum type (OpData) - unknown kinds decode to a
//     nil payload and are rejected by the evaluator, never by the decoder
//   - NO float types anywhere - game math is integer math
//   - Timestamps are logical clock values (seq), never wall-clock
//   - Selection paths are typed composite keys hashed with canonical JSON,
//     never ad hoc concatenated strings
package rules

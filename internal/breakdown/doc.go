// Package breakdown compiles final variable state and the pass ledgers
// into human-auditable explanations: "why is this number what it is".
//
// Everything here is a pure read-side function over (variable value,
// bonus ledger, history ledger). Stacking is resolved lazily at compile
// time, never baked destructively into the variable store - the store
// holds base contributions, the ledger holds every typed, situational
// contribution.
//
// Stacking rules:
//   - bonuses group by type; each non-untyped group contributes only its
//     largest amount (ties broken by first-seen source, stable)
//   - untyped bonuses are strictly additive
//   - conditional bonuses never contribute to the total; they are
//     returned as a separate advisory list with their source text
package breakdown

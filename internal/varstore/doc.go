// Package varstore provides the per-target variable state for one
// evaluation pass: typed variables plus append-only bonus and history
// ledgers.
//
// State is partitioned by StoreID (one character, one creature instance).
// Two StoreIDs never share mutable state and may be evaluated
// independently.
//
// The store for a StoreID is created empty at the start of a pass and
// discarded on the next - it is a pure function of entity + content +
// selections, never persisted. The bonus and history ledgers accumulate
// within a pass and are read by the breakdown compiler before the pass's
// state is replaced.
//
// Invariants:
//   - A variable's variant is fixed at first creation for a given name;
//     later writes must be variant-compatible or are rejected
//   - Ledger entries are append-only
//   - Direct value assignment is last-writer-wins within a pass
package varstore

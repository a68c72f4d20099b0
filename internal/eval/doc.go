// Package eval implements the variable derivation evaluator.
//
// The evaluator interprets the ordered operation list for one entity
// against a fresh variable store, resolving user selections and recording
// provenance (bonus and history ledgers) as it goes.
//
// ARCHITECTURE:
//
// Pure Pass:
// One pass is a pure function of (entity, content package, selections).
// The variable store is reset at pass start and rebuilt from scratch -
// there is no incremental update path, which is what makes idempotence a
// directly testable property.
//
// Pass Flow:
//  1. Reset the target's variable store and seed the base variables
//  2. Resolve the ordered operation list (resolver, pure)
//  3. Walk the list once, in order, applying each operation
//  4. Ability grants splice the granted block's operations in at the
//     grant point; a per-pass visited set breaks grant cycles
//  5. Selections resolve against the entity's persisted choices; absent
//     choices yield a pending outcome and apply nothing
//
// Timestamps are logical clock values restarting at zero each pass, so
// identical inputs produce identical ledgers.
//
// ERROR HANDLING: An operation referencing an unknown variable, carrying
// a malformed payload, or hitting a variant mismatch is skipped, logged,
// and reported in the result package. It never aborts the pass - content
// is often homebrew, and the UI must always get a best-effort sheet.
//
// SCHEDULING: Evaluation for a StoreID is exclusive. The Scheduler keeps
// one in-flight flag and one pending-input slot per StoreID: a change
// arriving mid-pass coalesces into exactly one follow-up pass after the
// current one completes. Distinct StoreIDs are fully independent.
package eval

package eval

// grantTracker tracks ability blocks granted within one pass to prevent
// infinite loops from self-referential homebrew content.
//
// Example cycle:
//
//	feat grants ability-a → ability-a grants ability-b
//	→ ability-b grants ability-a (again!) ← CYCLE DETECTED
//
// The second visit is skipped (reported, not fatal) rather than looping.
// Depth is bounded separately: even acyclic grant chains stop at a small
// indirection limit, because legitimate content never nests deeply and a
// runaway chain would otherwise consume the whole pass.
//
// Tracker state is per-pass - the same ability may be granted again on
// the next pass. Not thread-safe; a pass is single-threaded.
type grantTracker struct {
	visited  map[string]bool
	maxDepth int
}

func newGrantTracker(maxDepth int) *grantTracker {
	return &grantTracker{
		visited:  make(map[string]bool),
		maxDepth: maxDepth,
	}
}

// wouldCycle reports whether this ability id has already been granted in
// this pass.
func (g *grantTracker) wouldCycle(abilityID string) bool {
	return g.visited[abilityID]
}

// record marks an ability id as granted. Called immediately after
// wouldCycle returns false, before splicing the block's operations.
func (g *grantTracker) record(abilityID string) {
	g.visited[abilityID] = true
}

// tooDeep reports whether a grant at the given nesting depth exceeds the
// indirection limit.
func (g *grantTracker) tooDeep(depth int) bool {
	return depth > g.maxDepth
}

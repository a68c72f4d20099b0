package eval

import (
	"sync"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// PassFunc runs one evaluation pass with whatever inputs the caller
// captured at submission time.
type PassFunc func()

// Scheduler serializes evaluation per StoreID.
//
// CONTRACT: at most one pass per StoreID is in flight; inputs that change
// while a pass is running coalesce into exactly one follow-up pass after
// the current one completes. There is no queue of passes - only the
// latest superseding submission survives, because a pass is a pure
// function of current inputs and intermediate input states are worthless.
//
// There is no cancellation: a pass is a fast CPU-bound tree walk and runs
// to completion.
//
// Distinct StoreIDs are fully independent and may run concurrently.
type Scheduler struct {
	mu       sync.Mutex
	inflight map[varstore.StoreID]bool
	pending  map[varstore.StoreID]PassFunc
	wg       sync.WaitGroup
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		inflight: make(map[varstore.StoreID]bool),
		pending:  make(map[varstore.StoreID]PassFunc),
	}
}

// Submit requests a pass for a StoreID.
//
// If the StoreID is idle the pass starts immediately (on its own
// goroutine). If a pass is already running, the submission lands in the
// pending slot, replacing any earlier unstarted submission - N changes
// during one pass trigger exactly one follow-up.
//
// Thread-safe: may be called from any goroutine.
func (s *Scheduler) Submit(id varstore.StoreID, pass PassFunc) {
	s.mu.Lock()
	if s.inflight[id] {
		s.pending[id] = pass
		s.mu.Unlock()
		return
	}
	s.inflight[id] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(id, pass)
}

// run executes passes for one StoreID until the pending slot is empty.
func (s *Scheduler) run(id varstore.StoreID, pass PassFunc) {
	defer s.wg.Done()
	for {
		pass()

		s.mu.Lock()
		next, ok := s.pending[id]
		if !ok {
			delete(s.inflight, id)
			s.mu.Unlock()
			return
		}
		delete(s.pending, id)
		s.mu.Unlock()
		pass = next
	}
}

// InFlight reports whether a pass is currently running for a StoreID.
// Used for testing and introspection.
func (s *Scheduler) InFlight(id varstore.StoreID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[id]
}

// Wait blocks until every submitted pass (including coalesced follow-ups)
// has completed. Tests use this; servers typically never wait.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

package varstore

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
)

// StoreID partitions all variable state by evaluation target.
type StoreID string

// Variable is a named value as held by the store.
type Variable struct {
	Name  string
	Value rules.Value
}

// VariantMismatchError reports a write whose value variant does not match
// the variant fixed at the variable's creation. The original value is
// retained.
type VariantMismatchError struct {
	Name string
	Have rules.Variant
	Want rules.Variant
}

func (e *VariantMismatchError) Error() string {
	return fmt.Sprintf("variable %q is %s, write is %s", e.Name, e.Want, e.Have)
}

// Store holds variable state and ledgers for any number of targets.
//
// Thread-safety: guarded by a mutex so independent StoreIDs can be
// evaluated from separate goroutines. Within one StoreID the evaluator's
// in-flight guard already serializes all writes.
type Store struct {
	mu      sync.RWMutex
	targets map[StoreID]*target
}

type target struct {
	vars    map[string]rules.Value
	bonuses map[string][]rules.Bonus
	history map[string][]rules.HistoryEntry
}

// New creates an empty store.
func New() *Store {
	return &Store{targets: make(map[StoreID]*target)}
}

// Reset discards all state for a target. Called at the start of every
// evaluation pass - the store is rebuilt from scratch each time.
func (s *Store) Reset(id StoreID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, id)
}

func (s *Store) targetFor(id StoreID) *target {
	t, ok := s.targets[id]
	if !ok {
		t = &target{
			vars:    make(map[string]rules.Value),
			bonuses: make(map[string][]rules.Bonus),
			history: make(map[string][]rules.HistoryEntry),
		}
		s.targets[id] = t
	}
	return t
}

// Get returns a variable by name, or ok=false when absent.
func (s *Store) Get(id StoreID, name string) (Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[id]
	if !ok {
		return Variable{}, false
	}
	v, ok := t.vars[name]
	if !ok {
		return Variable{}, false
	}
	return Variable{Name: name, Value: v}, true
}

// CreateIfAbsent creates a variable with the variant's default value if it
// does not exist. Creating an existing variable with a different variant
// is a variant mismatch; with the same variant it is a no-op.
func (s *Store) CreateIfAbsent(id StoreID, name string, variant rules.Variant) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.targetFor(id)
	if existing, ok := t.vars[name]; ok {
		if existing.Variant() != variant {
			return false, &VariantMismatchError{Name: name, Have: variant, Want: existing.Variant()}
		}
		return false, nil
	}

	def, err := rules.DefaultValue(variant)
	if err != nil {
		return false, err
	}
	t.vars[name] = def
	return true, nil
}

// Set assigns a variable's value. If the variable is absent it is created
// with the value's variant; if present the write must be variant
// compatible or it is rejected and the original value retained.
//
// Returns the previous value (nil when created) and whether the effective
// terminal value changed - the caller uses this to decide whether a
// history entry is due.
func (s *Store) Set(id StoreID, name string, value rules.Value) (prev rules.Value, changed bool, err error) {
	if value == nil {
		return nil, false, fmt.Errorf("set %q: nil value", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.targetFor(id)
	existing, ok := t.vars[name]
	if ok {
		if existing.Variant() != value.Variant() {
			return existing, false, &VariantMismatchError{Name: name, Have: value.Variant(), Want: existing.Variant()}
		}
		if rules.ValueEqual(existing, value) {
			return existing, false, nil
		}
		t.vars[name] = value
		return existing, true, nil
	}

	t.vars[name] = value
	return nil, true, nil
}

// ListByPrefix returns all variables whose name starts with prefix,
// sorted by name. Used to enumerate categories ("all attribute
// variables", "all skill variables").
func (s *Store) ListByPrefix(id StoreID, prefix string) []Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[id]
	if !ok {
		return nil
	}

	var out []Variable
	for name, v := range t.vars {
		if strings.HasPrefix(name, prefix) {
			out = append(out, Variable{Name: name, Value: v})
		}
	}
	slices.SortFunc(out, func(a, b Variable) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// RecordBonus appends a bonus to a variable's ledger. Append-only;
// stacking resolution happens lazily in the breakdown compiler, never
// destructively here.
func (s *Store) RecordBonus(id StoreID, name string, b rules.Bonus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.targetFor(id)
	t.bonuses[name] = append(t.bonuses[name], b)
}

// RecordHistory appends a history entry to a variable's ledger.
// Callers append only when the effective terminal value changed.
func (s *Store) RecordHistory(id StoreID, name string, h rules.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.targetFor(id)
	t.history[name] = append(t.history[name], h)
}

// Bonuses returns the bonus ledger for one variable in append order.
func (s *Store) Bonuses(id StoreID, name string) []rules.Bonus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[id]
	if !ok {
		return nil
	}
	return slices.Clone(t.bonuses[name])
}

// History returns the history ledger for one variable in append order.
func (s *Store) History(id StoreID, name string) []rules.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[id]
	if !ok {
		return nil
	}
	return slices.Clone(t.history[name])
}

// Snapshot returns a deterministic rendering of a target's full state:
// every variable (sorted by name) with its value string, bonus ledger,
// and history ledger. Two identical passes produce identical snapshots -
// this is what makes idempotence directly assertable.
func (s *Store) Snapshot(id StoreID) []VariableSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[id]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(t.vars))
	for name := range t.vars {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]VariableSnapshot, 0, len(names))
	for _, name := range names {
		out = append(out, VariableSnapshot{
			Name:    name,
			Variant: t.vars[name].Variant(),
			Value:   t.vars[name].String(),
			Bonuses: slices.Clone(t.bonuses[name]),
			History: slices.Clone(t.history[name]),
		})
	}
	return out
}

// VariableSnapshot is one variable's full state in a Snapshot.
type VariableSnapshot struct {
	Name    string               `json:"name"`
	Variant rules.Variant        `json:"variant"`
	Value   string               `json:"value"`
	Bonuses []rules.Bonus        `json:"bonuses,omitempty"`
	History []rules.HistoryEntry `json:"history,omitempty"`
}

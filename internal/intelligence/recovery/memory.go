package recovery

import (
	"sync"
)

// defaultMemoryCap bounds the diversity history.  Formulas beyond the cap
// are evicted oldest-first by insertion order.
const defaultMemoryCap = 20

// DiversityMemory tracks the reduced formulas most recently emitted in
// single-candidate recovery.  Membership is exact string equality.  All
// access is serialized internally so concurrent recover calls cannot
// interleave a check against a partial update.
type DiversityMemory struct {
	mu    sync.Mutex
	cap   int
	order []string
	set   map[string]struct{}
}

// NewDiversityMemory returns an empty memory with the given capacity; a
// non-positive capacity selects the default of 20.
func NewDiversityMemory(capacity int) *DiversityMemory {
	if capacity <= 0 {
		capacity = defaultMemoryCap
	}
	return &DiversityMemory{
		cap: capacity,
		set: make(map[string]struct{}, capacity),
	}
}

// Contains reports whether formula was recently emitted.
func (m *DiversityMemory) Contains(formula string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.set[formula]
	return ok
}

// Remember records formula as the most recent emission and evicts the oldest
// entries beyond the capacity.  Re-remembering a known formula refreshes its
// position.
func (m *DiversityMemory) Remember(formula string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.set[formula]; ok {
		for i, f := range m.order {
			if f == formula {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	} else {
		m.set[formula] = struct{}{}
	}
	m.order = append(m.order, formula)

	for len(m.order) > m.cap {
		evicted := m.order[0]
		m.order = m.order[1:]
		delete(m.set, evicted)
	}
}

// Len returns the number of remembered formulas.
func (m *DiversityMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Snapshot returns the remembered formulas oldest-first.
func (m *DiversityMemory) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

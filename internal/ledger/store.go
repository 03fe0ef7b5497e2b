package ledger

import "sync"

// Store holds the ordered, append-only entry sequence in memory. The
// canonical read order is newest first; entries are never mutated or
// removed through this interface. Aggregation must stay order-independent,
// insertion order exists for display only.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore returns a store seeded with entries in newest-first order.
func NewStore(entries []Entry) *Store {
	s := &Store{}
	if len(entries) > 0 {
		s.entries = append(s.entries, entries...)
	}
	return s
}

// Append prepends the batch, preserving the order it was constructed in.
func (s *Store) Append(entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Entry, 0, len(entries)+len(s.entries))
	next = append(next, entries...)
	next = append(next, s.entries...)
	s.entries = next
}

// All returns a copy of the full sequence, newest first.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

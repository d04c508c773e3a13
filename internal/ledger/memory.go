package ledger

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps the ledger in process memory. It is the default when no
// database is configured and the fixture store in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byRef   map[string]int // reference -> index into records
	records []Payment      // insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRef: make(map[string]int)}
}

// Append is a single critical section around the check-then-insert, so two
// concurrent deliveries of the same reference resolve to one stored record.
func (s *MemoryStore) Append(ctx context.Context, payment *Payment) (*Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byRef[payment.Reference]; ok {
		existing := s.records[i]
		return &existing, false, nil
	}

	p := *payment
	p.ID = int64(len(s.records) + 1)
	s.byRef[p.Reference] = len(s.records)
	s.records = append(s.records, p)

	stored := p
	return &stored, true, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]Payment, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	out := make([]Payment, len(s.records))
	copy(out, s.records)
	s.mu.RUnlock()

	// Newest first; equal timestamps keep the later insertion first. IDs are
	// assigned in insertion order, so they double as the tie breaker.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].PaidAt.After(out[j].PaidAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports the number of stored records, published as an expvar gauge.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

package memory

import (
	"context"
	"sync"
)

// Sequence allocates invoice numbers per year. The mutex serializes
// allocation the way the SQL implementation relies on row locking.
type Sequence struct {
	mu   sync.Mutex
	last map[int]int64
}

func NewSequence() *Sequence {
	return &Sequence{last: make(map[int]int64)}
}

func (s *Sequence) Next(ctx context.Context, year int) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last[year]++
	return s.last[year], nil
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hms/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps claims in process memory. Another replica
// never sees them, so it is only safe for a single instance and for tests.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time

	stop    context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// NewInMemoryIdempotencyStore starts a janitor that drops expired claims until Close.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		stop:    cancel,
		stopped: make(chan struct{}),
	}
	go s.janitor(ctx)
	return s
}

// Claim takes key unless an unexpired claim already holds it.
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, held := s.expires[key]; held && now.Before(until) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Release forgets key. Unknown keys are ignored.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Close stops the janitor. It may be called more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		s.stop()
		<-s.stopped
	})
	return nil
}

// Len is the number of claims held, expired or not.
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

func (s *InMemoryIdempotencyStore) janitor(ctx context.Context) {
	defer close(s.stopped)
	tick := time.NewTicker(sweepInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, until := range s.expires {
		if !now.Before(until) {
			delete(s.expires, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

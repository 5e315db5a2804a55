package toast

import (
	"context"
	"sync"
	"time"

	"github.com/neuromediai/site/internal/application"
	"github.com/neuromediai/site/internal/domain/notify"
)

// DefaultTTL is how long a toast stays visible before it dismisses itself.
const DefaultTTL = 5 * time.Second

type entry struct {
	n       notify.Notification
	expires time.Time
}

// Store is an in-memory toast queue per visitor.
type Store struct {
	clock application.Clock
	ttl   time.Duration

	mu     sync.Mutex
	queues map[string][]entry
}

func NewStore(clock application.Clock, ttl time.Duration) *Store {
	if clock == nil {
		clock = application.SystemClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{clock: clock, ttl: ttl, queues: make(map[string][]entry)}
}

// Notify queues n for the visitor.
func (s *Store) Notify(ctx context.Context, visitor string, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[visitor] = append(s.queues[visitor], entry{n: n, expires: s.clock.Now().Add(s.ttl)})
	return nil
}

// Drain returns the visitor's live toasts, oldest first, and empties the queue.
func (s *Store) Drain(visitor string) []notify.Notification {
	now := s.clock.Now()

	s.mu.Lock()
	q := s.queues[visitor]
	delete(s.queues, visitor)
	s.mu.Unlock()

	out := make([]notify.Notification, 0, len(q))
	for _, e := range q {
		if now.Before(e.expires) {
			out = append(out, e.n)
		}
	}
	return out
}

// Prune drops expired toasts of all visitors.
func (s *Store) Prune() int {
	now := s.clock.Now()
	dropped := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for v, q := range s.queues {
		kept := q[:0]
		for _, e := range q {
			if now.Before(e.expires) {
				kept = append(kept, e)
			} else {
				dropped++
			}
		}
		if len(kept) == 0 {
			delete(s.queues, v)
		} else {
			s.queues[v] = kept
		}
	}
	return dropped
}

var _ notify.Notifier = (*Store)(nil)

// Run prunes expired toasts every interval until ctx is done. Visitors that
// never come back would otherwise keep their queue forever.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Prune()
		}
	}
}

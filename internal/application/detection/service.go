package detection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuromediai/site/internal/application"
	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/metrics"
)

// DefaultSessionTTL is how long an untouched dialog is kept open.
const DefaultSessionTTL = 30 * time.Minute

type Options struct {
	Store         domain.PreviewStore
	Clock         application.Clock
	Random        domain.Random
	AnalysisDelay time.Duration
	SessionTTL    time.Duration
}

// Service implements use-cases untuk detection dialogs.
// Service is safe for concurrent use; each Session guards its own state.
type Service struct {
	stager *Stager
	sim    *Simulator
	clock  application.Clock
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[domain.SessionID]*Session
}

func NewService(o Options) *Service {
	if o.Clock == nil {
		o.Clock = application.SystemClock()
	}
	if o.AnalysisDelay <= 0 {
		o.AnalysisDelay = DefaultAnalysisDelay
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	return &Service{
		stager:   &Stager{Store: o.Store},
		sim:      NewSimulator(o.Clock, o.AnalysisDelay, o.Random),
		clock:    o.Clock,
		ttl:      o.SessionTTL,
		sessions: make(map[domain.SessionID]*Session),
	}
}

// Open starts an Empty dialog for a disease category.
func (s *Service) Open(ctx context.Context, diseaseID string) (*Session, error) {
	disease, err := domain.LookupDisease(diseaseID)
	if err != nil {
		return nil, err
	}

	sess := newSession(domain.SessionID(uuid.NewString()), disease, s.stager, s.sim, s.clock)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	metrics.Global().SessionsOpen.Add(1)
	logger.Debug().Str("session", string(sess.ID)).Str("disease", disease.ID).Msg("dialog opened")
	return sess, nil
}

// Get ambil 1 session by id
func (s *Service) Get(id domain.SessionID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess.touch()
	return sess, nil
}

// Close resets the dialog, releases its preview and forgets it.
func (s *Service) Close(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	metrics.Global().SessionsOpen.Add(-1)
	logger.Debug().Str("session", string(id)).Msg("dialog closed")
	return sess.close(ctx)
}

// Len returns the number of open dialogs.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes dialogs idle for longer than the TTL and returns how many.
func (s *Service) Sweep(ctx context.Context) int {
	now := s.clock.Now()

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.idleFor(now) > s.ttl {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		metrics.Global().SessionsOpen.Add(-1)
		if err := sess.close(ctx); err != nil {
			logger.Warn().Err(err).Str("session", string(sess.ID)).Msg("close idle dialog")
		}
	}
	if len(stale) > 0 {
		logger.Info().Int("closed", len(stale)).Msg("idle dialogs swept")
	}
	return len(stale)
}

// Run sweeps idle dialogs every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Sweep(ctx)
		}
	}
}

// Shutdown closes every open dialog.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[domain.SessionID]*Session)
	s.mu.Unlock()

	var errs []error
	for _, sess := range all {
		metrics.Global().SessionsOpen.Add(-1)
		if err := sess.close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package detection

import (
	"context"
	"sync"
	"time"

	"github.com/neuromediai/site/internal/application"
	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/metrics"
)

// Session is one detection dialog. It owns its staged image and result.
//
// Transitions:
//
//	Empty            -> StagedUnanalyzed  (valid image staged)
//	StagedUnanalyzed -> StagedUnanalyzed  (image replaced)
//	StagedUnanalyzed -> Analyzing         (Analyze)
//	Analyzing        -> Complete          (delay elapsed)
//	any              -> Empty             (Reset, close)
//
// A completion scheduled before a reset or close carries a stale epoch and
// is dropped.
type Session struct {
	ID      domain.SessionID
	Disease domain.Disease

	stager *Stager
	sim    *Simulator
	clock  application.Clock

	mu       sync.Mutex
	state    domain.State
	staged   *StagedImage
	result   *domain.AnalysisResult
	epoch    uint64
	closed   bool
	lastSeen time.Time
	changed  chan struct{}
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID           domain.SessionID       `json:"id"`
	Disease      domain.Disease         `json:"disease"`
	State        domain.State           `json:"state"`
	Image        *ImageInfo             `json:"image,omitempty"`
	Result       *domain.AnalysisResult `json:"result,omitempty"`
	Presentation *domain.Presentation   `json:"presentation,omitempty"`
	CanAnalyze   bool                   `json:"can_analyze"`
}

type ImageInfo struct {
	Filename string               `json:"filename"`
	Preview  domain.PreviewHandle `json:"preview"`
}

func newSession(id domain.SessionID, disease domain.Disease, stager *Stager, sim *Simulator, clock application.Clock) *Session {
	return &Session{
		ID:       id,
		Disease:  disease,
		stager:   stager,
		sim:      sim,
		clock:    clock,
		state:    domain.StateEmpty,
		lastSeen: clock.Now(),
		changed:  make(chan struct{}),
	}
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stage offers an upload to the dialog. It reports whether the upload was
// accepted. Non-image uploads, and uploads while an analysis is running or
// shown, leave the session untouched.
func (s *Session) Stage(ctx context.Context, u domain.Upload) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, domain.ErrSessionNotFound
	}
	s.lastSeen = s.clock.Now()

	if s.state != domain.StateEmpty && s.state != domain.StateStagedUnanalyzed {
		metrics.Global().UploadsIgnored.Add(1)
		return false, nil
	}

	next, err := s.stager.Stage(ctx, s.staged, u)
	if err != nil {
		// the previous image was already released
		s.staged = nil
		s.result = nil
		s.state = domain.StateEmpty
		s.notifyLocked()
		return false, err
	}
	if next == nil {
		metrics.Global().UploadsIgnored.Add(1)
		logger.Debug().Str("session", string(s.ID)).Str("media_type", u.MediaType).Msg("upload ignored")
		return false, nil
	}

	s.staged = next
	s.result = nil
	s.state = domain.StateStagedUnanalyzed
	s.notifyLocked()
	metrics.Global().UploadsAccepted.Add(1)
	return true, nil
}

// Analyze starts the simulated analysis. It is a no-op unless an image is
// staged and not yet analyzed; the return value says whether it started.
func (s *Session) Analyze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != domain.StateStagedUnanalyzed {
		return false
	}
	s.lastSeen = s.clock.Now()
	s.state = domain.StateAnalyzing
	epoch := s.epoch
	s.sim.Run(s.staged, func(r domain.AnalysisResult) {
		s.complete(epoch, r)
	})
	s.notifyLocked()

	metrics.Global().AnalysesStarted.Add(1)
	logger.Debug().Str("session", string(s.ID)).Dur("delay", s.sim.Delay()).Msg("analysis started")
	return true
}

func (s *Session) complete(epoch uint64, r domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || epoch != s.epoch || s.state != domain.StateAnalyzing {
		metrics.Global().AnalysesDiscarded.Add(1)
		logger.Debug().Str("session", string(s.ID)).Msg("stale analysis dropped")
		return
	}
	s.result = &r
	s.state = domain.StateComplete
	s.notifyLocked()

	metrics.Global().AnalysesCompleted.Add(1)
	logger.Info().Str("session", string(s.ID)).Str("disease", s.Disease.ID).Str("risk", string(r.RiskTier)).Msg("analysis complete")
}

// Reset returns the dialog to Empty from any state.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionNotFound
	}
	s.lastSeen = s.clock.Now()
	return s.resetLocked(ctx)
}

func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	err := s.resetLocked(ctx)
	s.closed = true
	return err
}

func (s *Session) resetLocked(ctx context.Context) error {
	var err error
	if s.staged != nil {
		err = s.staged.Release(ctx)
	}
	s.epoch++
	s.staged = nil
	s.result = nil
	s.state = domain.StateEmpty
	s.notifyLocked()
	return err
}

// Wait blocks while the session is analyzing and returns the snapshot it
// settled on.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		if s.closed || s.state != domain.StateAnalyzing {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-ch:
		}
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.clock.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:         s.ID,
		Disease:    s.Disease,
		State:      s.state,
		CanAnalyze: !s.closed && s.state == domain.StateStagedUnanalyzed,
	}
	if s.staged != nil {
		snap.Image = &ImageInfo{Filename: s.staged.Filename, Preview: s.staged.Handle}
	}
	if s.result != nil {
		r := *s.result
		p := domain.Present(r)
		snap.Result = &r
		snap.Presentation = &p
	}
	return snap
}

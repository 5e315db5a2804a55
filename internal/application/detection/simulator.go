package detection

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/neuromediai/site/internal/application"
	domain "github.com/neuromediai/site/internal/domain/detection"
)

// DefaultAnalysisDelay is how long a simulated analysis takes.
const DefaultAnalysisDelay = 2500 * time.Millisecond

// Simulator stands in for model inference. It waits a fixed delay and then
// picks one of domain.Outcomes uniformly at random. The image is never looked
// at; this is a demo, not a detector.
type Simulator struct {
	clock application.Clock
	delay time.Duration

	mu  sync.Mutex
	rnd domain.Random
}

func NewSimulator(clock application.Clock, delay time.Duration, rnd domain.Random) *Simulator {
	if rnd == nil {
		rnd = NewRandom(0)
	}
	return &Simulator{clock: clock, delay: delay, rnd: rnd}
}

// NewRandom returns a PCG source. Seed 0 means seed from the runtime.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Pick draws one outcome. Safe for concurrent use.
func (s *Simulator) Pick() domain.AnalysisResult {
	s.mu.Lock()
	i := s.rnd.IntN(len(domain.Outcomes))
	s.mu.Unlock()
	return domain.Outcomes[i]
}

// Run schedules done to be called with a picked outcome once the delay has
// passed. done runs on its own goroutine. The staged image is never inspected.
func (s *Simulator) Run(_ *StagedImage, done func(domain.AnalysisResult)) clockwork.Timer {
	return s.clock.AfterFunc(s.delay, func() {
		done(s.Pick())
	})
}

// Delay returns the configured suspension.
func (s *Simulator) Delay() time.Duration { return s.delay }

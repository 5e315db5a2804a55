package detection

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	domain "github.com/neuromediai/site/internal/domain/detection"
)

func TestSimulator_PickIsUniform(t *testing.T) {
	sim := NewSimulator(clockwork.NewFakeClock(), DefaultAnalysisDelay, NewRandom(7))

	const runs = 3000
	counts := map[domain.RiskTier]int{}
	for range runs {
		counts[sim.Pick().RiskTier]++
	}

	require.Len(t, counts, 3)
	for tier, n := range counts {
		require.InDelta(t, runs/3, n, 120, "tier %s", tier)
	}
}

func TestSimulator_SameSeedSameSequence(t *testing.T) {
	a := NewSimulator(clockwork.NewFakeClock(), 0, NewRandom(99))
	b := NewSimulator(clockwork.NewFakeClock(), 0, NewRandom(99))
	for range 50 {
		require.Equal(t, a.Pick(), b.Pick())
	}
}

func TestSimulator_RunFiresAfterDelay(t *testing.T) {
	clk := clockwork.NewFakeClock()
	sim := NewSimulator(clk, 2500*time.Millisecond, fixedRandom(1))

	got := make(chan domain.AnalysisResult, 1)
	sim.Run(nil, func(r domain.AnalysisResult) { got <- r })

	clk.Advance(2 * time.Second)
	select {
	case <-got:
		t.Fatal("fired before the delay")
	case <-time.After(20 * time.Millisecond):
	}

	clk.Advance(500 * time.Millisecond)
	select {
	case r := <-got:
		require.Equal(t, domain.Outcomes[1], r)
	case <-time.After(2 * time.Second):
		t.Fatal("did not fire")
	}
}

package detection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	domain "github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/infra/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingStore struct {
	*storage.MemoryStore

	mu       sync.Mutex
	released []string
	putErr   error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore()}
}

func (c *countingStore) Put(ctx context.Context, filename, mediaType string, data []byte) (domain.PreviewHandle, error) {
	if c.putErr != nil {
		return domain.PreviewHandle{}, c.putErr
	}
	return c.MemoryStore.Put(ctx, filename, mediaType, data)
}

func (c *countingStore) Release(ctx context.Context, id string) error {
	c.mu.Lock()
	c.released = append(c.released, id)
	c.mu.Unlock()
	return c.MemoryStore.Release(ctx, id)
}

func (c *countingStore) releasedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.released...)
}

type fixedRandom int

func (f fixedRandom) IntN(n int) int { return int(f) % n }

func newTestService(t *testing.T, rnd domain.Random) (*Service, *clockwork.FakeClock, *countingStore) {
	t.Helper()
	clk := clockwork.NewFakeClock()
	store := newCountingStore()
	svc := NewService(Options{
		Store:         store,
		Clock:         clk,
		Random:        rnd,
		AnalysisDelay: DefaultAnalysisDelay,
		SessionTTL:    time.Minute,
	})
	return svc, clk, store
}

func png(name string) domain.Upload {
	return domain.Upload{Filename: name, MediaType: "image/png", Data: []byte("\x89PNG\r\n")}
}

func waitSettled(t *testing.T, s *Session) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func TestSession_OpensEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, fixedRandom(0))
	sess, err := svc.Open(context.Background(), "lung-cancer")
	require.NoError(t, err)

	snap := sess.Snapshot()
	require.Equal(t, domain.StateEmpty, snap.State)
	require.Equal(t, "Lung Cancer", snap.Disease.Title)
	require.Nil(t, snap.Image)
	require.Nil(t, snap.Result)
	require.False(t, snap.CanAnalyze)
}

func TestSession_OpenUnknownDisease(t *testing.T) {
	svc, _, _ := newTestService(t, fixedRandom(0))
	_, err := svc.Open(context.Background(), "common-cold")
	require.ErrorIs(t, err, domain.ErrUnknownDisease)
	require.Zero(t, svc.Len())
}

func TestSession_NonImageIsIgnored(t *testing.T) {
	svc, _, store := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "brain-tumor")

	for _, mt := range []string{"application/pdf", "text/plain", "", "video/mp4"} {
		ok, err := sess.Stage(ctx, domain.Upload{Filename: "x", MediaType: mt, Data: []byte("x")})
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, domain.StateEmpty, sess.State())
	}
	require.Zero(t, store.Len())

	// also ignored once an image is staged: the staged image survives
	ok, err := sess.Stage(ctx, png("a.png"))
	require.NoError(t, err)
	require.True(t, ok)
	before := sess.Snapshot().Image

	ok, err = sess.Stage(ctx, domain.Upload{Filename: "doc.pdf", MediaType: "application/pdf"})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, domain.StateStagedUnanalyzed, sess.State())
	require.Equal(t, before, sess.Snapshot().Image)
	require.Empty(t, store.releasedIDs())
}

func TestSession_ReplaceReleasesExactlyOnePreview(t *testing.T) {
	svc, _, store := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "tuberculosis")

	ok, err := sess.Stage(ctx, png("first.png"))
	require.NoError(t, err)
	require.True(t, ok)
	first := sess.Snapshot().Image.Preview.ID
	require.Empty(t, store.releasedIDs())

	ok, err = sess.Stage(ctx, png("second.png"))
	require.NoError(t, err)
	require.True(t, ok)

	snap := sess.Snapshot()
	require.Equal(t, domain.StateStagedUnanalyzed, snap.State)
	require.Equal(t, "second.png", snap.Image.Filename)
	require.Equal(t, []string{first}, store.releasedIDs())
	require.Equal(t, 1, store.Len())
	require.True(t, snap.CanAnalyze)
}

func TestSession_StageFailureLeavesEmpty(t *testing.T) {
	svc, _, store := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "tuberculosis")

	_, err := sess.Stage(ctx, png("first.png"))
	require.NoError(t, err)

	store.putErr = errors.New("disk full")
	ok, err := sess.Stage(ctx, png("second.png"))
	require.Error(t, err)
	require.False(t, ok)
	require.Equal(t, domain.StateEmpty, sess.State())
	require.Zero(t, store.Len())
}

func TestSession_AnalyzeIsNoopUnlessStaged(t *testing.T) {
	svc, clk, _ := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "skin-cancer")

	require.False(t, sess.Analyze())
	require.Equal(t, domain.StateEmpty, sess.State())

	_, _ = sess.Stage(ctx, png("a.png"))
	require.True(t, sess.Analyze())
	require.Equal(t, domain.StateAnalyzing, sess.State())

	// second trigger while analyzing does nothing
	require.False(t, sess.Analyze())
	require.False(t, sess.Snapshot().CanAnalyze)

	clk.Advance(DefaultAnalysisDelay)
	snap := waitSettled(t, sess)
	require.Equal(t, domain.StateComplete, snap.State)

	// and nothing once complete
	require.False(t, sess.Analyze())
	require.Equal(t, domain.StateComplete, sess.State())
}

func TestSession_StageIgnoredWhileAnalyzingOrComplete(t *testing.T) {
	svc, clk, store := newTestService(t, fixedRandom(1))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "skin-cancer")

	_, _ = sess.Stage(ctx, png("a.png"))
	sess.Analyze()

	ok, err := sess.Stage(ctx, png("b.png"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, domain.StateAnalyzing, sess.State())

	clk.Advance(DefaultAnalysisDelay)
	waitSettled(t, sess)

	ok, err = sess.Stage(ctx, png("c.png"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, domain.StateComplete, sess.State())
	require.Equal(t, "a.png", sess.Snapshot().Image.Filename)
	require.Empty(t, store.releasedIDs())
}

func TestSession_CompletesOnlyAfterDelay(t *testing.T) {
	svc, clk, _ := newTestService(t, fixedRandom(2))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "breast-cancer")

	_, _ = sess.Stage(ctx, png("scan.png"))
	require.True(t, sess.Analyze())

	clk.Advance(DefaultAnalysisDelay - time.Millisecond)
	require.Equal(t, domain.StateAnalyzing, sess.State())
	require.Nil(t, sess.Snapshot().Result)

	clk.Advance(time.Millisecond)
	snap := waitSettled(t, sess)
	require.Equal(t, domain.StateComplete, snap.State)
	require.Equal(t, domain.RiskHigh, snap.Result.RiskTier)
	require.Equal(t, "Higher Risk Pattern Detected", snap.Result.Label)
	require.Equal(t, domain.ColorDanger, snap.Presentation.ColorTier)
	require.Equal(t, domain.Disclaimer, snap.Presentation.Disclaimer)
}

func TestSession_ResetFromEveryState(t *testing.T) {
	ctx := context.Background()

	prepare := map[domain.State]func(s *Session, clk *clockwork.FakeClock){
		domain.StateStagedUnanalyzed: func(s *Session, _ *clockwork.FakeClock) {
			_, _ = s.Stage(ctx, png("a.png"))
		},
		domain.StateAnalyzing: func(s *Session, _ *clockwork.FakeClock) {
			_, _ = s.Stage(ctx, png("a.png"))
			s.Analyze()
		},
		domain.StateComplete: func(s *Session, clk *clockwork.FakeClock) {
			_, _ = s.Stage(ctx, png("a.png"))
			s.Analyze()
			clk.Advance(DefaultAnalysisDelay)
			waitSettled(t, s)
		},
	}

	for want, setup := range prepare {
		t.Run(string(want), func(t *testing.T) {
			svc, clk, store := newTestService(t, fixedRandom(0))
			sess, _ := svc.Open(ctx, "blood-cancer")
			setup(sess, clk)
			require.Equal(t, want, sess.State())

			require.NoError(t, sess.Reset(ctx))
			snap := sess.Snapshot()
			require.Equal(t, domain.StateEmpty, snap.State)
			require.Nil(t, snap.Image)
			require.Nil(t, snap.Result)
			require.Zero(t, store.Len())
			require.Len(t, store.releasedIDs(), 1)
		})
	}
}

func TestSession_LateCompletionAfterResetIsDropped(t *testing.T) {
	svc, clk, _ := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "lung-cancer")

	_, _ = sess.Stage(ctx, png("a.png"))
	require.True(t, sess.Analyze())
	require.NoError(t, sess.Reset(ctx))

	// restage and start a second analysis before the first timer fires
	_, _ = sess.Stage(ctx, png("b.png"))
	clk.Advance(time.Second)
	require.True(t, sess.Analyze())

	// first timer fires now; its result must not land in the second run
	clk.Advance(DefaultAnalysisDelay - time.Second)
	require.Eventually(t, func() bool {
		return sess.State() == domain.StateAnalyzing
	}, time.Second, 5*time.Millisecond)
	require.Nil(t, sess.Snapshot().Result)

	clk.Advance(time.Second)
	snap := waitSettled(t, sess)
	require.Equal(t, domain.StateComplete, snap.State)
	require.Equal(t, "b.png", snap.Image.Filename)
}

func TestSession_CloseDuringAnalysisDoesNotResurrect(t *testing.T) {
	svc, clk, store := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "lung-cancer")

	_, _ = sess.Stage(ctx, png("a.png"))
	require.True(t, sess.Analyze())
	require.NoError(t, svc.Close(ctx, sess.ID))

	clk.Advance(DefaultAnalysisDelay)
	time.Sleep(10 * time.Millisecond)

	snap := sess.Snapshot()
	require.Equal(t, domain.StateEmpty, snap.State)
	require.Nil(t, snap.Result)
	require.Zero(t, store.Len())

	_, err := svc.Get(sess.ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = sess.Stage(ctx, png("b.png"))
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.ErrorIs(t, sess.Reset(ctx), domain.ErrSessionNotFound)
	require.False(t, sess.Analyze())
}

func TestSession_Scenario(t *testing.T) {
	svc, clk, store := newTestService(t, NewRandom(42))
	ctx := context.Background()
	sess, err := svc.Open(ctx, "brain-tumor")
	require.NoError(t, err)

	ok, err := sess.Stage(ctx, png("mri.png"))
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, sess.Analyze())
	clk.Advance(2500 * time.Millisecond)

	snap := waitSettled(t, sess)
	require.Equal(t, domain.StateComplete, snap.State)
	require.Contains(t, []domain.RiskTier{domain.RiskLow, domain.RiskMedium, domain.RiskHigh}, snap.Result.RiskTier)

	require.NoError(t, sess.Reset(ctx))
	snap = sess.Snapshot()
	require.Equal(t, domain.StateEmpty, snap.State)
	require.Nil(t, snap.Image)
	require.Nil(t, snap.Result)
	require.Zero(t, store.Len())
}

func TestSession_WaitHonoursContext(t *testing.T) {
	svc, clk, _ := newTestService(t, fixedRandom(0))
	ctx := context.Background()
	sess, _ := svc.Open(ctx, "lung-cancer")
	_, _ = sess.Stage(ctx, png("a.png"))
	sess.Analyze()

	wctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := sess.Wait(wctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	clk.Advance(DefaultAnalysisDelay)
	waitSettled(t, sess)
}

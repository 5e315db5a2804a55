package application

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock interface supaya gampang ditest. Tests pass clockwork.NewFakeClock()
// and advance virtual time instead of sleeping.
type Clock = clockwork.Clock

// SystemClock implementasi default, pakai waktu nyata.
func SystemClock() Clock { return clockwork.NewRealClock() }

// Sleep waits for d on the given clock or until ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := c.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}

// Package ratelimit guards calls to a remote API with a fixed-window budget.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Clock is the time source of a Window. Tests substitute a fake.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Window admits at most limit calls per period. The window starts at the
// first admitted call and resets once period has elapsed.
type Window struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	clock  Clock

	start time.Time
	count int
}

// New returns a Window. A nil clock means the wall clock.
func New(limit int, period time.Duration, clock Clock) *Window {
	if clock == nil {
		clock = RealClock
	}
	if limit < 1 {
		limit = 1
	}
	return &Window{limit: limit, period: period, clock: clock}
}

// PerMinute is New(limit, time.Minute, nil).
func PerMinute(limit int) *Window {
	return New(limit, time.Minute, nil)
}

// Wait blocks until the call is admitted. It never drops a call: when the
// budget is spent it sleeps until the window resets and tries again. Only
// context cancellation makes it return an error.
func (w *Window) Wait(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := w.clock.Now()
		if w.start.IsZero() || now.Sub(w.start) >= w.period {
			w.start = now
			w.count = 0
		}

		if w.count < w.limit {
			w.count++
			return nil
		}

		wait := w.period - now.Sub(w.start)
		log.Debug("rate limit reached, waiting for window reset", "wait", wait, "limit", w.limit)
		if err := w.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

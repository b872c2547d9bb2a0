// Package autosave coalesces bursts of edits into single save calls.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last edit before a save is issued.
const DefaultDelay = 400 * time.Millisecond

// SaveFunc persists one snapshot.
type SaveFunc[T any] func(ctx context.Context, snapshot T) error

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler owns a single pending timer and the latest snapshot handed to Schedule.
// Saves run last-write-wins: concurrent saves are not serialized, and a failed save is
// reported but never retried.
type Scheduler[T any] struct {
	save      SaveFunc[T]
	delay     time.Duration
	afterFunc AfterFunc
	onError   func(error)

	mu         sync.Mutex
	timer      Timer
	pending    T
	hasPending bool
	// generation invalidates timers that fired while a newer Schedule or Cancel held the lock.
	generation uint64
	inFlight   sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	delay     time.Duration
	afterFunc AfterFunc
	onError   func(error)
}

// WithDelay sets the quiet period.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(o *options) {
		o.afterFunc = fn
	}
}

// WithErrorHandler is called with every failed save, after it is logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// New creates a scheduler calling save.
func New[T any](save SaveFunc[T], opts ...Option) *Scheduler[T] {
	o := options{
		delay:     DefaultDelay,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler[T]{
		save:      save,
		delay:     o.delay,
		afterFunc: o.afterFunc,
		onError:   o.onError,
	}
}

// Schedule replaces the pending snapshot and restarts the quiet period.
func (s *Scheduler[T]) Schedule(snapshot T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.pending = snapshot
	s.hasPending = true
	gen := s.generation
	s.timer = s.afterFunc(s.delay, func() {
		s.fire(gen)
	})
}

// Replace swaps the pending snapshot without restarting the quiet period.
// It reports false when nothing is pending.
func (s *Scheduler[T]) Replace(snapshot T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPending {
		return false
	}
	s.pending = snapshot
	return true
}

// SaveNow drops any pending snapshot and saves snapshot right away without waiting for the
// result.
func (s *Scheduler[T]) SaveNow(snapshot T) {
	s.mu.Lock()
	s.stopLocked()
	s.clearLocked()
	s.inFlight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inFlight.Done()
		s.run(context.Background(), snapshot)
	}()
}

// Flush saves the pending snapshot, if any, before returning.
func (s *Scheduler[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return nil
	}
	s.stopLocked()
	snapshot := s.pending
	s.clearLocked()
	s.inFlight.Add(1)
	s.mu.Unlock()

	defer s.inFlight.Done()
	return s.run(ctx, snapshot)
}

// Cancel drops the pending snapshot without saving it.
func (s *Scheduler[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.clearLocked()
}

// Pending reports whether a snapshot is waiting for its quiet period to end.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPending
}

// Wait blocks until every started save has returned.
func (s *Scheduler[T]) Wait() {
	s.inFlight.Wait()
}

func (s *Scheduler[T]) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.hasPending {
		s.mu.Unlock()
		return
	}
	snapshot := s.pending
	s.clearLocked()
	s.timer = nil
	s.inFlight.Add(1)
	s.mu.Unlock()

	defer s.inFlight.Done()
	_ = s.run(context.Background(), snapshot)
}

func (s *Scheduler[T]) run(ctx context.Context, snapshot T) error {
	if err := s.save(ctx, snapshot); err != nil {
		slog.Default().Warn("autosave failed", "error", err)
		if s.onError != nil {
			s.onError(err)
		}
		return err
	}
	return nil
}

// stopLocked stops the timer and invalidates a callback that may already be waiting.
func (s *Scheduler[T]) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *Scheduler[T]) clearLocked() {
	var zero T
	s.pending = zero
	s.hasPending = false
}

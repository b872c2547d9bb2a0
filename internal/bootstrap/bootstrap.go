// Package bootstrap runs long-lived commands and tears their resources down on exit.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// App runs one function until it returns or the process is signalled, then calls the
// registered shutdown hooks.
type App struct {
	mu              sync.Mutex
	hooks           []hook
	signals         []os.Signal
	shutdownTimeout time.Duration
}

type Option func(*App)

// WithShutdownTimeout bounds the time hooks and the run function get to finish.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = d
	}
}

// WithSignals replaces the signals that start a shutdown. No signals means only ctx does.
func WithSignals(signals ...os.Signal) Option {
	return func(a *App) {
		a.signals = signals
	}
}

func New(opts ...Option) *App {
	a := &App{
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddShutdownHook registers fn under name. Hooks run in reverse order of registration and
// may be added from inside the run function.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run calls run and waits for it to return or for ctx to end. Shutdown hooks run in both
// cases; their errors are joined with the error of run.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	var cancel context.CancelFunc
	if len(a.signals) > 0 {
		ctx, cancel = signal.NotifyContext(ctx, a.signals...)
	} else {
		// signal.Notify without signals would relay every signal.
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var runErr error
	finished := false
	select {
	case runErr = <-errCh:
		finished = true
	case <-ctx.Done():
		slog.Default().Info("shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancelShutdown()
	hookErr := a.shutdown(shutdownCtx)

	if !finished {
		select {
		case runErr = <-errCh:
		case <-shutdownCtx.Done():
			runErr = fmt.Errorf("run did not return before the shutdown timeout: %w", shutdownCtx.Err())
		}
	}
	return errors.Join(runErr, hookErr)
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := make([]hook, len(a.hooks))
	copy(hooks, a.hooks)
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			slog.Default().Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, fmt.Errorf("%s > %w", hooks[i].name, err))
		}
	}
	return errors.Join(errs...)
}

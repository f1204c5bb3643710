package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/anastasipancheva/miniapppass/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs background tasks (credential sync pushes, the expiry watcher)
// with a concurrency limit. Task errors and panics are collected for Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules a named task to run in a goroutine if capacity is available.
//
// It reports whether the task was scheduled. If the manager is closed or at
// its concurrency limit, the task is not run and a warning is logged. Task
// errors are logged with the task name and collected for Wait.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}: // Acquire a semaphore slot
		g.wg.Go(func() {
			g.stateMu.RUnlock()
			defer func() {
				<-g.sema // Release semaphore slot

				if rvr := recover(); rvr != nil {
					stack := debug.Stack()
					if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "task", name, "stack", paths)
					} else {
						slog.ErrorContext(pCtx, "panic occurred in goroutine", "task", name, "stack", string(stack))
					}
					g.collect(fmt.Errorf("%s: panic: %v", name, rvr))
				}
			}()

			if err := pCtx.Err(); err != nil {
				slog.WarnContext(pCtx, "goroutine canceled", "task", name, "because", err)
				return
			}
			if err := f(pCtx); err != nil {
				slog.WarnContext(pCtx, "goroutine finished with error", "task", name, "error", err)
				g.collect(fmt.Errorf("%s: %w", name, err))
			}
		})

		return true

	default:
		g.stateMu.RUnlock()
		slog.WarnContext(pCtx, "Maximum goroutine limit reached, failed to start new goroutine", "task", name)
		return false
	}
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	if !g.closed {
		g.closed = true
	}
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

package memory

import (
	"sync"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"go.uber.org/atomic"
)

// Lockdown is the process-wide deny-all switch. Active is lock-free so the
// evaluator can consult it first on every attempt.
type Lockdown struct {
	active *atomic.Bool

	mu        sync.Mutex
	changedAt time.Time
}

func NewLockdown() *Lockdown {
	return &Lockdown{active: atomic.NewBool(false)}
}

func (l *Lockdown) Active() bool {
	return l.active.Load()
}

func (l *Lockdown) State() entity.LockdownState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return entity.LockdownState{Active: l.active.Load(), ChangedAt: l.changedAt}
}

// Set switches the state and reports whether it actually changed. Setting
// the current value again keeps the previous change time.
func (l *Lockdown) Set(active bool, at time.Time) (entity.LockdownState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active.Load() == active {
		return entity.LockdownState{Active: active, ChangedAt: l.changedAt}, false
	}

	l.active.Store(active)
	l.changedAt = at
	return entity.LockdownState{Active: active, ChangedAt: at}, true
}

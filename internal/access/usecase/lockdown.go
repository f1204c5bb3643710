package usecase

import (
	"context"
	"log/slog"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type SetLockdownInput struct {
	Active bool `json:"active"`
}

func (s *Usecase) Lockdown(ctx context.Context) entity.LockdownState {
	_, span := s.startSpan(ctx, "Lockdown")
	defer span.End()

	return s.lockdown.State()
}

// SetLockdown toggles the deny-all switch. Lockdown never ends on its own.
// Setting the current state again is a no-op without a notification.
func (s *Usecase) SetLockdown(ctx context.Context, in SetLockdownInput) entity.LockdownState {
	ctx, span := s.startSpan(ctx, "SetLockdown")
	defer span.End()

	state, changed := s.lockdown.Set(in.Active, s.clock.Now())
	if !changed {
		return state
	}

	if state.Active {
		slog.WarnContext(ctx, "lockdown enabled")
		s.notify(ctx, event.SeverityWarning, "emergency lockdown enabled: all access is denied")
	} else {
		slog.InfoContext(ctx, "lockdown lifted")
		s.notify(ctx, event.SeverityInfo, "lockdown lifted: normal access restored")
	}

	return state
}

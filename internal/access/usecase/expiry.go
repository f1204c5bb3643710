package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

// expiryMark remembers which alerts were raised for one expiry instant, so
// each is raised once until the expiry moves.
type expiryMark struct {
	expiresAt time.Time
	warned    bool
	expired   bool
}

type CheckExpiryOutput struct {
	Warned  int
	Expired int
}

// CheckExpiry raises a Warning for each active credential expiring within the
// warn window and an Error for each active expired one, once per expiry.
func (s *Usecase) CheckExpiry(ctx context.Context) CheckExpiryOutput {
	ctx, span := s.startSpan(ctx, "CheckExpiry")
	defer span.End()

	now := s.clock.Now()
	var out CheckExpiryOutput

	s.expiryMu.Lock()
	defer s.expiryMu.Unlock()

	for _, c := range s.store.Snapshot(ctx) {
		mark := s.expiryMarks[c.ID]
		if !mark.expiresAt.Equal(c.ExpiresAt) {
			mark = expiryMark{expiresAt: c.ExpiresAt}
		}

		switch {
		case c.Active && c.IsExpired(now) && !mark.expired:
			mark.expired = true
			out.Expired++
			s.notify(ctx, event.SeverityError, "key for "+c.Name+" expired")

		case c.IsExpiring(now, s.settings.WarnWithin) && !mark.warned:
			mark.warned = true
			out.Warned++
			s.notify(ctx, event.SeverityWarning, "key for "+c.Name+" expires in "+strconv.Itoa(c.DaysLeft(now))+" days")
		}

		s.expiryMarks[c.ID] = mark
	}

	if out.Warned > 0 || out.Expired > 0 {
		slog.InfoContext(ctx, "expiry check raised alerts", "warned", out.Warned, "expired", out.Expired)
	}
	return out
}

// WatchExpiry runs CheckExpiry every interval until ctx is done.
func (s *Usecase) WatchExpiry(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	s.CheckExpiry(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.CheckExpiry(ctx)
		}
	}
}

func (s *Usecase) forgetExpiry(id int64) {
	s.expiryMu.Lock()
	delete(s.expiryMarks, id)
	s.expiryMu.Unlock()
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

// dispatchUpsert mirrors c to every sink in the background. Local state is
// already committed; a sink failure only raises a Warning.
func (s *Usecase) dispatchUpsert(ctx context.Context, c entity.Credential, action event.CredentialAction) {
	for _, sink := range s.sinks {
		cred := c.Clone()
		s.dispatch(ctx, sink, cred, false, func(ctx context.Context) error {
			return sink.Upsert(ctx, cred, action)
		})
	}
}

func (s *Usecase) dispatchRemove(ctx context.Context, c entity.Credential) {
	for _, sink := range s.sinks {
		cred := c.Clone()
		s.dispatch(ctx, sink, cred, true, func(ctx context.Context) error {
			return sink.Remove(ctx, cred)
		})
	}
}

// dispatch runs call after every earlier call queued for the same sink and
// credential, so a sink never sees a revoke overtaken by an older upsert.
func (s *Usecase) dispatch(ctx context.Context, sink SyncSink, c entity.Credential, remove bool, call func(ctx context.Context) error) {
	key := laneKey{sink: sink.Name(), id: c.ID}
	prev, done, ok := s.syncs.enqueue(key, c.Revision, remove)
	if !ok {
		slog.DebugContext(ctx, "stale credential sync skipped", "sink", sink.Name(), "credential_id", c.ID, "revision", c.Revision)
		return
	}

	detached := context.WithoutCancel(ctx)

	scheduled := s.goroutine.Go(detached, "access.sync."+sink.Name(), func(ctx context.Context) error {
		defer s.syncs.release(key, done)
		if prev != nil {
			<-prev
		}

		ctx, cancel := context.WithTimeout(ctx, s.settings.SyncTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			slog.WarnContext(ctx, "credential sync failed", "sink", sink.Name(), "credential_id", c.ID, "error", err)
			s.syncFailed(ctx, c)
			return err
		}
		return nil
	})
	if !scheduled {
		s.syncs.release(key, done)
		s.syncFailed(detached, c)
	}
}

func (s *Usecase) syncFailed(ctx context.Context, c entity.Credential) {
	s.notify(ctx, event.SeverityWarning, c.Name+": saved locally, controller sync failed")
}

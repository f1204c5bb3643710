package usecase

import (
	"context"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
)

const streamBuffer = 10

type subscriber struct {
	ch chan entity.Notification
}

// Stream registers a subscriber that receives every new notification until
// ctx is done; the channel is then closed. Slow readers miss events rather
// than block Notify.
func (s *Usecase) Stream(ctx context.Context) <-chan entity.Notification {
	sub := &subscriber{ch: make(chan entity.Notification, streamBuffer)}

	s.streamMu.Lock()
	s.streams[sub] = struct{}{}
	s.streamMu.Unlock()

	go func() {
		<-ctx.Done()

		// close under the write lock so publish never sends on a closed channel
		s.streamMu.Lock()
		delete(s.streams, sub)
		close(sub.ch)
		s.streamMu.Unlock()
	}()

	return sub.ch
}

func (s *Usecase) publish(n entity.Notification) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	for sub := range s.streams {
		select {
		case sub.ch <- n:
		default:
		}
	}
}

// Subscribers reports the number of open streams.
func (s *Usecase) Subscribers() int {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()
	return len(s.streams)
}

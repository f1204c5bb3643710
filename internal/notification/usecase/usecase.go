package usecase

import (
	"context"
	"sync"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type feed interface {
	Append(ctx context.Context, n entity.Notification)
	Latest(ctx context.Context, limit int) []entity.Notification
}

type Usecase struct {
	feed      feed
	uuid      uid.StringID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation

	raised metric.Int64Counter

	streamMu sync.RWMutex
	streams  map[*subscriber]struct{}
}

type Dependency struct {
	Feed       feed
	UUID       uid.StringID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	s := &Usecase{
		feed:      dep.Feed,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		streams:   make(map[*subscriber]struct{}),
	}

	counter, err := s.ins.Meter("notification.usecase").Int64Counter("notification.raised",
		metric.WithDescription("Number of notifications appended to the feed by severity"))
	if err == nil {
		s.raised = counter
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

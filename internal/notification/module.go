package notification

import (
	"github.com/anastasipancheva/miniapppass/internal/notification/inbound"
	"github.com/anastasipancheva/miniapppass/internal/notification/outbound/memory"
	"github.com/anastasipancheva/miniapppass/internal/notification/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
)

type Dependency struct {
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	SSERouter  *router.Router             `validate:"required"`
}

// New wires the notification feed and returns it so other modules can raise
// notifications.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.NewNotification(usecase.Dependency{
		Feed:       memory.NewFeed(dep.Config.GetInt("notification.retention")),
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterSSEEndpoint(dep.SSERouter, uc)

	return uc, nil
}

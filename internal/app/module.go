package app

import (
	"log/slog"
	"os"

	"github.com/anastasipancheva/miniapppass/internal/access"
	"github.com/anastasipancheva/miniapppass/internal/notification"
)

func (a *App) initModules() {
	notifier, err := notification.New(notification.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		SSERouter:  a.sseRouter,
	})
	if err != nil {
		slog.Error("failed to init module notification", "error", err)
		os.Exit(1)
	}

	if err := access.New(access.Dependency{
		Ctx:        a.ctx,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Storage:    a.storage,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		HMAC:       a.hmac,
		Bcrypt:     a.bcrypt,
		QRCode:     a.qrcode,
		Clock:      a.clock,
		Totp:       a.totp,
		Validator:  a.validator,
		JWT:        a.jwt,
		Notifier:   notifier,
		Messaging:  a.messaging,
		Sealer:     a.sealer,
	}); err != nil {
		slog.Error("failed to init module access", "error", err)
		os.Exit(1)
	}
}

package access

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anastasipancheva/miniapppass/internal/access/inbound"
	"github.com/anastasipancheva/miniapppass/internal/access/outbound/controller"
	"github.com/anastasipancheva/miniapppass/internal/access/outbound/memory"
	"github.com/anastasipancheva/miniapppass/internal/access/outbound/mq"
	"github.com/anastasipancheva/miniapppass/internal/access/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/authz"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
	"github.com/anastasipancheva/miniapppass/internal/pkg/hash"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/messaging"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/pkg/qrcode"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
	"github.com/anastasipancheva/miniapppass/internal/pkg/seal"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type notifier interface {
	Notify(ctx context.Context, msg event.NotificationMessage)
}

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       *hash.HMACSHA256           `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	QRCode     qrcode.Encoder             `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	Notifier   notifier                   `validate:"required"`

	// Messaging and Sealer are optional; without both no broker sink is wired.
	Messaging messaging.Messaging
	Sealer    seal.Sealer
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Store:      memory.NewCredentialStore(),
		Audit:      memory.NewAuditLog(),
		Lockdown:   memory.NewLockdown(),
		Notifier:   dep.Notifier,
		Sinks:      sinks(dep),
		Validator:  dep.Validator,
		Storage:    dep.Storage,
		Bcrypt:     dep.Bcrypt,
		QRCode:     dep.QRCode,
		UID:        dep.UID,
		UUID:       dep.UUID,
		Totp:       dep.Totp,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
		Clients:    apiClients(dep.Config.GetArray("auth.clients")),
		Settings: usecase.Settings{
			Issuer:         dep.Config.GetString("access.issuer"),
			ExpiringWithin: dep.Config.GetDuration("access.expiring_within"),
			WarnWithin:     dep.Config.GetDuration("access.expiry.warn_within"),
			SyncTimeout:    dep.Config.GetDuration("access.sync_timeout"),
			ArchiveBucket:  dep.Config.GetString("storage.bucket"),
			ArchiveExpiry:  dep.Config.GetDuration("storage.presign_expiry"),
		},
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterExpiryWatcher(dep.Ctx, dep.Goroutine, uc, dep.Config.GetDuration("access.expiry.interval"))

	return nil
}

func sinks(dep Dependency) []usecase.SyncSink {
	var out []usecase.SyncSink

	if baseURL := dep.Config.GetString("controller.base_url"); baseURL != "" {
		ctrl, err := controller.New(controller.Config{
			BaseURL:    baseURL,
			Timeout:    dep.Config.GetDuration("controller.timeout"),
			MaxRetries: uint64(max(dep.Config.GetInt("controller.max_retries"), 0)),
			Backoff:    dep.Config.GetDuration("controller.backoff"),
			Clock:      dep.Clock,
		}, dep.HMAC, dep.Instrument)
		if err != nil {
			slog.Error("door controller sink disabled", "error", err)
		} else {
			out = append(out, ctrl)
		}
	}

	if dep.Messaging != nil && dep.Sealer != nil {
		out = append(out, mq.NewMessaging(dep.Messaging, dep.Sealer, dep.Config.GetString("messaging.topic"), dep.Clock, dep.Instrument))
	} else if dep.Messaging != nil {
		slog.Warn("broker sink disabled: access.seal_key is not set")
	}

	return out
}

// apiClients parses "id:role:bcrypt-hash" entries. Entries with an unknown
// role are skipped.
func apiClients(entries []string) []usecase.APIClient {
	clients := make([]usecase.APIClient, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			slog.Warn("skipping malformed api client entry")
			continue
		}
		if !authz.ValidRole(parts[1]) {
			slog.Warn("skipping api client with unknown role", "client_id", parts[0], "role", parts[1])
			continue
		}
		clients = append(clients, usecase.APIClient{ID: parts[0], Role: parts[1], SecretHash: parts[2]})
	}
	return clients
}

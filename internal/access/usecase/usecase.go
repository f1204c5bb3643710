package usecase

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
	"github.com/anastasipancheva/miniapppass/internal/pkg/hash"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type credentialStore interface {
	Create(ctx context.Context, c entity.Credential) error
	Get(ctx context.Context, id int64) (entity.Credential, error)
	Snapshot(ctx context.Context) []entity.Credential
	Update(ctx context.Context, id int64, fn func(c *entity.Credential) error) (entity.Credential, error)
	UpdateAll(ctx context.Context, keep func(c entity.Credential) bool, fn func(c *entity.Credential) error) ([]entity.Credential, error)
	Delete(ctx context.Context, id int64) (entity.Credential, error)
}

type auditLog interface {
	Append(ctx context.Context, a entity.AccessAttempt) entity.AccessAttempt
	Attempts(filter entity.OutcomeFilter) iter.Seq[entity.AccessAttempt]
	Latest(filter entity.OutcomeFilter) iter.Seq[entity.AccessAttempt]
}

type lockdown interface {
	Active() bool
	State() entity.LockdownState
	Set(active bool, at time.Time) (entity.LockdownState, bool)
}

type notifier interface {
	Notify(ctx context.Context, msg event.NotificationMessage)
}

// SyncSink mirrors credential changes to an external system such as a door
// controller or a message broker. Calls happen off the request path.
type SyncSink interface {
	Name() string
	Upsert(ctx context.Context, c entity.Credential, action event.CredentialAction) error
	Remove(ctx context.Context, c entity.Credential) error
}

type qrEncoder interface {
	DataURI(content string) (string, error)
}

// APIClient is a machine or operator allowed to obtain API tokens.
type APIClient struct {
	ID         string
	SecretHash string
	Role       string
}

// Settings are the tunables read from configuration.
type Settings struct {
	Issuer         string
	ExpiringWithin time.Duration
	WarnWithin     time.Duration
	SyncTimeout    time.Duration
	ArchiveBucket  string
	ArchiveExpiry  time.Duration
}

type Usecase struct {
	store     credentialStore
	audit     auditLog
	lockdown  lockdown
	notifier  notifier
	sinks     []SyncSink
	validator validator.Validator
	storage   storage.Storage
	bcrypt    hash.Hash
	qr        qrEncoder
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.OTP
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
	clients   map[string]APIClient
	settings  Settings

	newSecret func() (otp.Secret, error)

	evaluations metric.Int64Counter

	expiryMu    sync.Mutex
	expiryMarks map[int64]expiryMark

	syncs *syncQueue
}

type Dependency struct {
	Store      credentialStore
	Audit      auditLog
	Lockdown   lockdown
	Notifier   notifier
	Sinks      []SyncSink
	Validator  validator.Validator
	Storage    storage.Storage
	Bcrypt     hash.Hash
	QRCode     qrEncoder
	UID        uid.NumberID
	UUID       uid.StringID
	Totp       otp.OTP
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
	Clients    []APIClient
	Settings   Settings

	// SecretGenerator overrides otp.GenerateSecret.
	SecretGenerator func() (otp.Secret, error)
}

func New(dep Dependency) *Usecase {
	clients := make(map[string]APIClient, len(dep.Clients))
	for _, c := range dep.Clients {
		clients[c.ID] = c
	}

	newSecret := dep.SecretGenerator
	if newSecret == nil {
		newSecret = otp.GenerateSecret
	}

	settings := dep.Settings
	if settings.Issuer == "" {
		settings.Issuer = "MiniAppPass"
	}
	if settings.ExpiringWithin <= 0 {
		settings.ExpiringWithin = 30 * 24 * time.Hour
	}
	if settings.WarnWithin <= 0 {
		settings.WarnWithin = 3 * 24 * time.Hour
	}
	if settings.SyncTimeout <= 0 {
		settings.SyncTimeout = 10 * time.Second
	}
	if settings.ArchiveExpiry <= 0 {
		settings.ArchiveExpiry = 15 * time.Minute
	}

	s := &Usecase{
		store:       dep.Store,
		audit:       dep.Audit,
		lockdown:    dep.Lockdown,
		notifier:    dep.Notifier,
		sinks:       dep.Sinks,
		validator:   dep.Validator,
		storage:     dep.Storage,
		bcrypt:      dep.Bcrypt,
		qr:          dep.QRCode,
		uid:         dep.UID,
		uuid:        dep.UUID,
		totp:        dep.Totp,
		clock:       dep.Clock,
		jwt:         dep.JWT,
		ins:         dep.Instrument,
		goroutine:   dep.Goroutine,
		clients:     clients,
		settings:    settings,
		newSecret:   newSecret,
		expiryMarks: map[int64]expiryMark{},
		syncs:       newSyncQueue(),
	}
	s.initMetrics()

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("access.usecase").Start(ctx, name)
}

func (s *Usecase) initMetrics() {
	meter := s.ins.Meter("access.usecase")

	counter, err := meter.Int64Counter("access.evaluations", metric.WithDescription("Number of access decisions by outcome"))
	if err != nil {
		slog.Error("failed to create access evaluations counter", "error", err)
	}
	s.evaluations = counter

	_, err = meter.Int64ObservableGauge("access.credentials.active",
		metric.WithDescription("Credentials currently able to open doors"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			now := s.clock.Now()
			var n int64
			for _, c := range s.store.Snapshot(ctx) {
				if c.CanEnter(now) {
					n++
				}
			}
			o.Observe(n)
			return nil
		}),
	)
	if err != nil {
		slog.Error("failed to create active credentials gauge", "error", err)
	}
}

func (s *Usecase) recordEvaluation(ctx context.Context, o entity.Outcome) {
	if s.evaluations != nil {
		s.evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", o.String())))
	}
}

func (s *Usecase) notify(ctx context.Context, severity event.Severity, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event.NotificationMessage{Severity: severity, Message: msg})
}

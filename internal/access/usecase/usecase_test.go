package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/access/outbound/memory"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
	"github.com/anastasipancheva/miniapppass/internal/pkg/hash"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/pkg/qrcode"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

// t0 sits 14s into a 30s step, so t0+15s and t0+55s are two steps apart.
var t0 = time.Unix(1_800_000_014, 0).UTC()

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []event.NotificationMessage
}

func (n *recordingNotifier) Notify(_ context.Context, msg event.NotificationMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) all() []event.NotificationMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event.NotificationMessage{}, n.msgs...)
}

type fakeSink struct {
	mu      sync.Mutex
	err     error
	upserts []entity.Credential
	removes []int64
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) Upsert(_ context.Context, c entity.Credential, _ event.CredentialAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, c)
	return f.err
}

func (f *fakeSink) Remove(_ context.Context, c entity.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, c.ID)
	return f.err
}

type fixture struct {
	uc       *Usecase
	clock    *clock.Fake
	notifier *recordingNotifier
	sink     *fakeSink
	routine  *goroutine.Manager
	audit    *memory.AuditLog
	storage  *storage.Memory
	totp     *otp.TOTP
}

type option func(*Dependency)

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator error: %v", err)
	}
	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake error: %v", err)
	}

	clk := clock.NewFake(t0)
	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "miniapppass",
		Audiences: []string{"miniapppass-api"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512 error: %v", err)
	}

	f := &fixture{
		clock:    clk,
		notifier: &recordingNotifier{},
		sink:     &fakeSink{},
		routine:  goroutine.NewManager(10),
		audit:    memory.NewAuditLog(),
		storage:  storage.NewMemory(),
		totp:     otp.NewTOTP(otp.DefaultWindow),
	}

	bc := hash.NewBcrypt(4, "")
	secretHash, err := bc.Hash("terminal-secret")
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	dep := Dependency{
		Store:      memory.NewCredentialStore(),
		Audit:      f.audit,
		Lockdown:   memory.NewLockdown(),
		Notifier:   f.notifier,
		Sinks:      []SyncSink{f.sink},
		Validator:  v,
		Storage:    f.storage,
		Bcrypt:     bc,
		QRCode:     qrcode.NewPNGEncoder(64),
		UID:        sf,
		UUID:       uid.NewUUID(),
		Totp:       f.totp,
		Clock:      clk,
		JWT:        j,
		Instrument: instrument.NewNoop(),
		Goroutine:  f.routine,
		Clients:    []APIClient{{ID: "door-1", SecretHash: string(secretHash), Role: "terminal"}},
		Settings:   Settings{Issuer: "MiniAppPass", ArchiveBucket: "audit"},
	}
	for _, opt := range opts {
		opt(&dep)
	}

	f.uc = New(dep)
	return f
}

func (f *fixture) issue(t *testing.T, name string, class string) *entity.IssuedCredential {
	t.Helper()

	out, err := f.uc.Issue(context.Background(), IssueInput{Name: name, AccessClass: class})
	if err != nil {
		t.Fatalf("Issue(%q) error: %v", name, err)
	}
	return out
}

func (f *fixture) codeAt(t *testing.T, secret otp.Secret, at time.Time) string {
	t.Helper()

	code, err := f.totp.GenerateCode(secret, at)
	if err != nil {
		t.Fatalf("GenerateCode error: %v", err)
	}
	return code
}

func (f *fixture) evaluateAt(at time.Time, code string) entity.AccessAttempt {
	f.clock.Set(at)
	return f.uc.Evaluate(context.Background(), EvaluateInput{Code: code})
}

func wantCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want goerror with code %s", err, code)
	}
	if gerr.Code() != code {
		t.Fatalf("code = %s, want %s", gerr.Code(), code)
	}
}

func countSeverity(msgs []event.NotificationMessage, sev event.Severity) int {
	n := 0
	for _, m := range msgs {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

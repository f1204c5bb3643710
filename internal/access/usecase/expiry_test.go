package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

func TestUsecase_CheckExpiry(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, "Alice", "guest")
	f.issue(t, "Bob", "permanent")
	base := len(f.notifier.all())

	// Act
	f.clock.Set(t0.Add(5 * 24 * time.Hour))
	warned := f.uc.CheckExpiry(ctx)
	repeated := f.uc.CheckExpiry(ctx)
	f.clock.Set(t0.Add(7 * 24 * time.Hour))
	expired := f.uc.CheckExpiry(ctx)
	after := f.uc.CheckExpiry(ctx)

	// Assert
	if warned.Warned != 1 || warned.Expired != 0 {
		t.Fatalf("first check = %+v, want one warning", warned)
	}
	if repeated.Warned != 0 || repeated.Expired != 0 {
		t.Fatalf("repeated check = %+v, want nothing", repeated)
	}
	if expired.Expired != 1 || expired.Warned != 0 {
		t.Fatalf("expiry check = %+v, want one expired", expired)
	}
	if after.Expired != 0 || after.Warned != 0 {
		t.Fatalf("check after expiry = %+v, want nothing", after)
	}

	msgs := f.notifier.all()[base:]
	if len(msgs) != 2 {
		t.Fatalf("notifications = %+v, want 2", msgs)
	}
	if msgs[0].Severity != event.SeverityWarning || msgs[0].Message != "key for Alice expires in 2 days" {
		t.Fatalf("warning = %+v", msgs[0])
	}
	if msgs[1].Severity != event.SeverityError || msgs[1].Message != "key for Alice expired" {
		t.Fatalf("error = %+v", msgs[1])
	}
}

func TestUsecase_CheckExpiry_RearmedByExtend(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice := f.issue(t, "Alice", "guest")
	f.clock.Set(t0.Add(6 * 24 * time.Hour))
	if got := f.uc.CheckExpiry(ctx); got.Warned != 1 {
		t.Fatalf("first check = %+v, want one warning", got)
	}

	// Act
	if _, err := f.uc.Rotate(ctx, RotateInput{ID: alice.ID, Extend: true}); err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	f.clock.Set(t0.Add(12 * 24 * time.Hour))
	got := f.uc.CheckExpiry(ctx)

	// Assert
	if got.Warned != 1 {
		t.Fatalf("check after extend = %+v, want a fresh warning", got)
	}
}

func TestUsecase_CheckExpiry_SkipsInactive(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice := f.issue(t, "Alice", "guest")
	if _, err := f.uc.SetActive(ctx, SetActiveInput{ID: alice.ID, Active: false}); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}
	f.clock.Set(t0.Add(30 * 24 * time.Hour))

	// Act
	got := f.uc.CheckExpiry(ctx)

	// Assert
	if got.Warned != 0 || got.Expired != 0 {
		t.Fatalf("check = %+v, want nothing for inactive credential", got)
	}
}

func TestUsecase_WatchExpiry(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.issue(t, "Alice", "guest")
	f.clock.Set(t0.Add(8 * 24 * time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- f.uc.WatchExpiry(ctx, time.Millisecond) }()
	deadline := time.After(2 * time.Second)
	for countSeverity(f.notifier.all(), event.SeverityError) == 0 {
		select {
		case <-deadline:
			t.Fatalf("watcher raised no expiry alert")
		case <-time.After(time.Millisecond):
		}
	}
	time.Sleep(10 * time.Millisecond)
	cancel()

	// Assert
	if err := <-done; err != nil {
		t.Fatalf("WatchExpiry error: %v", err)
	}
	if n := countSeverity(f.notifier.all(), event.SeverityError); n != 1 {
		t.Fatalf("expiry alerts = %d, want 1", n)
	}
}

func TestUsecase_SyncFailure(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.sink.err = errors.New("controller unreachable")

	// Act
	alice := f.issue(t, "Alice", "guest")
	waitErr := f.routine.Wait()

	// Assert
	if waitErr == nil {
		t.Fatalf("Wait error = nil, want sync error")
	}
	got, err := f.uc.Get(context.Background(), GetInput{ID: alice.ID})
	if err != nil {
		t.Fatalf("local state lost: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("Name = %q, want Alice", got.Name)
	}

	var warned bool
	for _, m := range f.notifier.all() {
		if m.Severity == event.SeverityWarning && m.Message == "Alice: saved locally, controller sync failed" {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("no sync warning in %+v", f.notifier.all())
	}
}

func TestUsecase_SyncNotScheduled(t *testing.T) {
	// Arrange
	f := newFixture(t)
	if err := f.routine.Wait(); err != nil {
		t.Fatalf("Wait error: %v", err)
	}

	// Act
	f.issue(t, "Alice", "guest")

	// Assert
	if n := countSeverity(f.notifier.all(), event.SeverityWarning); n != 1 {
		t.Fatalf("warnings = %d, want 1 for unscheduled sync", n)
	}
}

func TestUsecase_Token(t *testing.T) {
	tests := []struct {
		name     string
		in       TokenInput
		wantCode goerror.Code
		wantErr  bool
	}{
		{name: "valid", in: TokenInput{ClientID: "door-1", ClientSecret: "terminal-secret"}},
		{name: "wrong secret", in: TokenInput{ClientID: "door-1", ClientSecret: "nope"}, wantErr: true, wantCode: goerror.CodeUnauthorized},
		{name: "unknown client", in: TokenInput{ClientID: "door-9", ClientSecret: "terminal-secret"}, wantErr: true, wantCode: goerror.CodeUnauthorized},
		{name: "missing secret", in: TokenInput{ClientID: "door-1"}, wantErr: true, wantCode: goerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)

			// Act
			out, err := f.uc.Token(context.Background(), tt.in)

			// Assert
			if tt.wantErr {
				wantCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("Token error: %v", err)
			}
			if out.AccessToken == "" || out.Role != "terminal" {
				t.Fatalf("out = %+v, want terminal token", out)
			}
			if !out.ExpiresAt.Equal(t0.Add(time.Hour)) {
				t.Fatalf("ExpiresAt = %v, want t0+1h", out.ExpiresAt)
			}
		})
	}
}

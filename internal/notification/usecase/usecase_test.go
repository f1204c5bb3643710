package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/notification/outbound/memory"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

var now = time.Date(2027, 1, 15, 8, 0, 0, 0, time.UTC)

func newTestUsecase(t *testing.T, retention int) (*Usecase, *clock.Fake) {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator error: %v", err)
	}
	clk := clock.NewFake(now)

	return NewNotification(Dependency{
		Feed:       memory.NewFeed(retention),
		UUID:       uid.NewUUID(),
		Clock:      clk,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	}), clk
}

func TestUsecase_NotifyAndList(t *testing.T) {
	// Arrange
	uc, clk := newTestUsecase(t, 10)
	ctx := context.Background()

	// Act
	uc.Notify(ctx, event.NotificationMessage{Severity: event.SeverityInfo, Message: "added new principal Alice with guest access"})
	clk.Advance(time.Minute)
	uc.Notify(ctx, event.NotificationMessage{Severity: event.SeverityWarning, Message: "emergency lockdown enabled: all access is denied"})
	uc.Notify(ctx, event.NotificationMessage{Severity: event.SeverityError, Message: "   "})
	out, err := uc.List(ctx, ListInput{})

	// Assert
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(out.Notifications) != 2 {
		t.Fatalf("len = %d, want 2", len(out.Notifications))
	}
	first, second := out.Notifications[0], out.Notifications[1]
	if first.Severity != event.SeverityWarning || !first.Timestamp.Equal(now.Add(time.Minute)) {
		t.Fatalf("newest = %+v, want the warning", first)
	}
	if second.Severity != event.SeverityInfo || second.ID == "" || second.ID == first.ID {
		t.Fatalf("oldest = %+v", second)
	}
}

func TestUsecase_Notify_UnknownSeverity(t *testing.T) {
	// Arrange
	uc, _ := newTestUsecase(t, 10)
	ctx := context.Background()

	// Act
	uc.Notify(ctx, event.NotificationMessage{Severity: "loud", Message: "hello"})

	// Assert
	out, err := uc.List(ctx, ListInput{Limit: 1})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if out.Notifications[0].Severity != event.SeverityInfo {
		t.Fatalf("Severity = %s, want info", out.Notifications[0].Severity)
	}
}

func TestUsecase_List_InvalidLimit(t *testing.T) {
	// Arrange
	uc, _ := newTestUsecase(t, 10)

	// Act
	out, err := uc.List(context.Background(), ListInput{Limit: -1})

	// Assert
	if out != nil {
		t.Fatalf("out = %+v, want nil", out)
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("error = %v, want invalid input", err)
	}
}

func TestUsecase_Stream(t *testing.T) {
	// Arrange
	uc, _ := newTestUsecase(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	stream := uc.Stream(ctx)
	other := uc.Stream(context.Background())

	// Act
	uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityWarning, Message: "key for Bob was rotated"})

	// Assert
	select {
	case n := <-stream:
		if n.Message != "key for Bob was rotated" {
			t.Fatalf("Message = %q", n.Message)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event on stream")
	}
	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatalf("second subscriber missed the event")
	}

	cancel()
	select {
	case _, ok := <-stream:
		if ok {
			t.Fatalf("stream delivered after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("stream not closed after cancel")
	}
	if got := uc.Subscribers(); got != 1 {
		t.Fatalf("Subscribers = %d, want 1", got)
	}
}

func TestUsecase_Stream_SlowReaderDoesNotBlock(t *testing.T) {
	// Arrange
	uc, _ := newTestUsecase(t, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	uc.Stream(ctx)
	done := make(chan struct{})

	// Act
	go func() {
		for range streamBuffer * 3 {
			uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityInfo, Message: "tick"})
		}
		close(done)
	}()

	// Assert
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Notify blocked on a full subscriber")
	}
}

func TestUsecase_Stream_CloseWhilePublishing(t *testing.T) {
	// Arrange
	uc, _ := newTestUsecase(t, 10)
	stop := make(chan struct{})
	published := make(chan struct{})
	go func() {
		defer close(published)
		for {
			select {
			case <-stop:
				return
			default:
				uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityInfo, Message: "tick"})
			}
		}
	}()

	// Act
	for range 100 {
		ctx, cancel := context.WithCancel(context.Background())
		uc.Stream(ctx)
		cancel()
	}
	close(stop)
	<-published

	// Assert
	deadline := time.After(time.Second)
	for uc.Subscribers() != 0 {
		select {
		case <-deadline:
			t.Fatalf("Subscribers = %d, want 0", uc.Subscribers())
		case <-time.After(time.Millisecond):
		}
	}
}

package inbound

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/notification/outbound/memory"
	"github.com/anastasipancheva/miniapppass/internal/notification/usecase"
	"github.com/anastasipancheva/miniapppass/internal/pkg/authz"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

func newTestServer(t *testing.T) (*httptest.Server, *usecase.Usecase, jwt.JWT) {
	t.Helper()

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "miniapppass",
		Audiences: []string{"miniapppass-api"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512 error: %v", err)
	}
	e, err := authz.NewEnforcer(authz.DefaultPolicies())
	if err != nil {
		t.Fatalf("NewEnforcer error: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator error: %v", err)
	}

	uc := usecase.NewNotification(usecase.Dependency{
		Feed:       memory.NewFeed(10),
		UUID:       uid.NewUUID(),
		Clock:      clock.New(),
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})

	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), JWT: j, Instrument: instrument.NewNoop(), Enforcer: e})
	RegisterHTTPEndpoint(r, uc)
	RegisterSSEEndpoint(r, uc)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, uc, j
}

func authHeader(t *testing.T, j jwt.JWT, role string) string {
	t.Helper()

	tok, err := j.Generate("console", role)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return "Bearer " + tok.Value
}

func TestHTTPEndpoint_ListNotifications(t *testing.T) {
	// Arrange
	srv, uc, j := newTestServer(t)
	uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityInfo, Message: "revoked principal Bob"})
	uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityError, Message: "key for Eve expired"})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/notifications?limit=1", nil)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	req.Header.Set("Authorization", authHeader(t, j, authz.RoleOperator))

	// Act
	resp, err := srv.Client().Do(req)

	// Assert
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var env struct {
		Data ListNotificationsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(env.Data.Notifications) != 1 || env.Data.Notifications[0].Message != "key for Eve expired" {
		t.Fatalf("notifications = %+v", env.Data.Notifications)
	}
	if env.Data.Notifications[0].Severity != "error" {
		t.Fatalf("severity = %s, want error", env.Data.Notifications[0].Severity)
	}
}

func TestHTTPEndpoint_ListNotifications_TerminalForbidden(t *testing.T) {
	// Arrange
	srv, _, j := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/notifications", nil)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	req.Header.Set("Authorization", authHeader(t, j, authz.RoleTerminal))

	// Act
	resp, err := srv.Client().Do(req)

	// Assert
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestHTTPEndpoint_StreamNotifications(t *testing.T) {
	// Arrange
	srv, uc, j := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream", nil)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	req.Header.Set("Authorization", authHeader(t, j, authz.RoleAdmin))

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream ended before %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}
	if line := waitFor("retry: "); line != "retry: 3000" {
		t.Fatalf("retry line = %q", line)
	}
	waitFor(": connected")

	// Act
	uc.Notify(context.Background(), event.NotificationMessage{Severity: event.SeverityWarning, Message: "emergency lockdown enabled: all access is denied"})

	// Assert
	waitFor("event: notification")
	data := waitFor("data: ")

	var got NotificationResponse
	if err := json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.Severity != "warning" || got.Message != "emergency lockdown enabled: all access is denied" {
		t.Fatalf("event = %+v", got)
	}
}

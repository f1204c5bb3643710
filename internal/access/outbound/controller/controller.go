// Package controller mirrors credentials to the door controller's HTTP API.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HeaderSignature carries the hex HMAC-SHA256 of SignedPayload. The
// controller rejects a request whose HeaderTimestamp is outside its
// tolerance.
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Signature-Timestamp"
)

var (
	ErrBaseURLRequired = errors.New("controller: base url is required")
	ErrUnexpectedReply = errors.New("controller: unexpected response")
)

type signer interface {
	Sign(payload []byte) string
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	Backoff    time.Duration
	Client     *http.Client
	Clock      clock.Clocker
}

type Controller struct {
	baseURL    *url.URL
	client     *http.Client
	signer     signer
	clock      clock.Clocker
	ins        instrument.Instrumentation
	maxRetries uint64
	backoff    time.Duration
}

type userPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccessLevel string    `json:"accessLevel"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TOTPSecret  string    `json:"totpSecret"`
	IsActive    bool      `json:"isActive"`
}

func New(cfg Config, sig signer, ins instrument.Instrumentation) (*Controller, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("controller: parse base url: %w", err)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Controller{
		baseURL:    base,
		client:     client,
		signer:     sig,
		clock:      clk,
		ins:        ins,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
	}, nil
}

func (c *Controller) Name() string {
	return "controller"
}

// Upsert registers or refreshes the user on the controller.
func (c *Controller) Upsert(ctx context.Context, cred entity.Credential, _ event.CredentialAction) (err error) {
	ctx, span := c.ins.Tracer("access.outbound.controller").Start(ctx, "Upsert")
	defer func() { endSpan(span, err) }()

	body, err := json.Marshal(userPayload{
		ID:          strconv.FormatInt(cred.ID, 10),
		Name:        cred.Name,
		AccessLevel: cred.AccessClass.String(),
		ExpiresAt:   cred.ExpiresAt.UTC(),
		TOTPSecret:  cred.Secret.Base32(),
		IsActive:    cred.Active,
	})
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, "/api/users", body)
}

// Remove deletes the user from the controller. A 404 counts as done.
func (c *Controller) Remove(ctx context.Context, cred entity.Credential) (err error) {
	ctx, span := c.ins.Tracer("access.outbound.controller").Start(ctx, "Remove")
	defer func() { endSpan(span, err) }()

	return c.do(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(cred.ID, 10), nil)
}

// SignedPayload is what HeaderSignature covers: the unix timestamp, the
// method and path, then the body, separated by newlines.
func SignedPayload(timestamp, method, path string, body []byte) []byte {
	out := make([]byte, 0, len(timestamp)+len(method)+len(path)+len(body)+3)
	out = append(out, timestamp...)
	out = append(out, '\n')
	out = append(out, method...)
	out = append(out, ' ')
	out = append(out, path...)
	out = append(out, '\n')
	return append(out, body...)
}

func (c *Controller) do(ctx context.Context, method, path string, body []byte) error {
	target := c.baseURL.JoinPath(path).String()

	b := retry.WithMaxRetries(c.maxRetries, retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(c.backoff)))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, rd)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		timestamp := strconv.FormatInt(c.clock.Now().Unix(), 10)
		req.Header.Set(HeaderTimestamp, timestamp)
		req.Header.Set(HeaderSignature, c.signer.Sign(SignedPayload(timestamp, method, path, body)))
		if cID := instrument.GetCorrelationID(ctx); cID != "" {
			req.Header.Set("X-Correlation-ID", cID)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		//nolint:errcheck // drain for connection reuse
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case method == http.MethodDelete && resp.StatusCode == http.StatusNotFound:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("%w: %s %s: %d", ErrUnexpectedReply, method, path, resp.StatusCode))
		default:
			return fmt.Errorf("%w: %s %s: %d", ErrUnexpectedReply, method, path, resp.StatusCode)
		}
	})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

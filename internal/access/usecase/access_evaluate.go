package usecase

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
)

// maxAuditedCode bounds what a caller can make the audit log retain.
const maxAuditedCode = 32

type EvaluateInput struct {
	Code string `json:"code"`
}

// Evaluate decides one access attempt and appends it to the audit log. It
// always reaches a decision and never mutates credentials.
//
// Lockdown is checked first, then the code format, then every active and
// unexpired credential. When more than one credential matches, the earliest
// issued wins (ties by id).
func (s *Usecase) Evaluate(ctx context.Context, in EvaluateInput) entity.AccessAttempt {
	ctx, span := s.startSpan(ctx, "Evaluate")
	defer span.End()

	now := s.clock.Now()
	attempt := entity.AccessAttempt{
		ID:        s.uuid.Generate(),
		Code:      truncate(in.Code, maxAuditedCode),
		Timestamp: now,
	}

	switch {
	case s.lockdown.Active():
		attempt.Outcome = entity.OutcomeDeniedLockdown

	case !otp.ValidFormat(in.Code):
		attempt.Outcome = entity.OutcomeDeniedInvalidFormat

	default:
		attempt.Outcome = entity.OutcomeDeniedNoMatch
		for _, c := range s.store.Snapshot(ctx) {
			if !c.CanEnter(now) {
				continue
			}
			if s.totp.Validate(c.Secret, in.Code, now) {
				id := c.ID
				attempt.PrincipalID = &id
				attempt.Outcome = entity.OutcomeGranted
				break
			}
		}
	}

	attempt = s.audit.Append(ctx, attempt)
	s.recordEvaluation(ctx, attempt.Outcome)
	span.SetAttributes(attribute.String("access.outcome", attempt.Outcome.String()))

	if attempt.PrincipalID != nil {
		slog.InfoContext(ctx, "access evaluated", "outcome", attempt.Outcome.String(), "seq", attempt.Seq, "credential_id", *attempt.PrincipalID)
	} else {
		slog.InfoContext(ctx, "access evaluated", "outcome", attempt.Outcome.String(), "seq", attempt.Seq)
	}

	return attempt
}

// truncate keeps at most n bytes of s without splitting a rune. Invalid
// bytes are replaced so the result is always valid UTF-8.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	if len(s) <= n {
		return s
	}

	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

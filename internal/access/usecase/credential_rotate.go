package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type RotateInput struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Extend bool  `json:"extend"`
}

// Rotate replaces the secret of one credential. The old secret stops
// validating as soon as this returns. Expiry is kept unless Extend is set.
func (s *Usecase) Rotate(ctx context.Context, in RotateInput) (*entity.IssuedCredential, error) {
	ctx, span := s.startSpan(ctx, "Rotate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var prov entity.Provisioning
	cred, err := s.store.Update(ctx, in.ID, func(c *entity.Credential) error {
		now := s.clock.Now()
		if err := s.rotateSecret(c, now, in.Extend); err != nil {
			return err
		}

		p, err := s.provisioning(ctx, *c)
		if err != nil {
			return err
		}
		prov = p
		return nil
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, goerror.NewNotFound("Credential not found")
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to rotate credential", "credential_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "credential rotated", "credential_id", cred.ID, "extended", in.Extend)
	s.notify(ctx, event.SeverityWarning, "key for "+cred.Name+" was rotated; the authenticator must be set up again")
	s.dispatchUpsert(ctx, cred, event.CredentialRotated)

	return &entity.IssuedCredential{Credential: cred, Provisioning: prov}, nil
}

type RotateAllOutput struct {
	Credentials []entity.IssuedCredential
}

// RotateAll rotates every active credential as one step: concurrent readers
// see either all old or all new secrets. Exactly one notification is raised.
func (s *Usecase) RotateAll(ctx context.Context) (*RotateAllOutput, error) {
	ctx, span := s.startSpan(ctx, "RotateAll")
	defer span.End()

	provs := map[int64]entity.Provisioning{}
	creds, err := s.store.UpdateAll(ctx,
		func(c entity.Credential) bool { return c.Active },
		func(c *entity.Credential) error {
			if err := s.rotateSecret(c, s.clock.Now(), false); err != nil {
				return err
			}

			p, err := s.provisioning(ctx, *c)
			if err != nil {
				return err
			}
			provs[c.ID] = p
			return nil
		},
	)
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to rotate all credentials", "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &RotateAllOutput{Credentials: make([]entity.IssuedCredential, 0, len(creds))}
	for _, c := range creds {
		out.Credentials = append(out.Credentials, entity.IssuedCredential{Credential: c, Provisioning: provs[c.ID]})
	}

	slog.WarnContext(ctx, "all credentials rotated", "count", len(creds))
	s.notify(ctx, event.SeverityWarning, "emergency rotation: all "+strconv.Itoa(len(creds))+
		" keys were rotated; every principal must set up the authenticator again")
	for _, c := range creds {
		s.dispatchUpsert(ctx, c, event.CredentialRotated)
	}

	return out, nil
}

func (s *Usecase) rotateSecret(c *entity.Credential, now time.Time, extend bool) error {
	secret, err := s.freshSecret(c.Secret)
	if err != nil {
		return err
	}

	c.Secret = secret
	c.Disclosed = false
	c.RotatedAt = &now
	if extend {
		c.ExpiresAt = now.Add(c.AccessClass.Duration())
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type (
	AcknowledgeInput struct {
		ID int64 `json:"id" validate:"required,gt=0"`
	}

	RevokeInput struct {
		ID int64 `json:"id" validate:"required,gt=0"`
	}

	SetActiveInput struct {
		ID     int64 `json:"id" validate:"required,gt=0"`
		Active bool  `json:"active"`
	}
)

// Acknowledge records that the provisioning material was shown. It only ever
// moves disclosed from false to true; rotation is the only way back.
func (s *Usecase) Acknowledge(ctx context.Context, in AcknowledgeInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "Acknowledge")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := s.store.Update(ctx, in.ID, func(c *entity.Credential) error {
		c.Disclosed = true
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(ctx, "acknowledge", in.ID, err)
	}

	slog.InfoContext(ctx, "credential disclosure acknowledged", "credential_id", cred.ID)
	return &cred, nil
}

// Revoke removes the credential. Revoking twice is an error the second time;
// past audit entries keep the removed id.
func (s *Usecase) Revoke(ctx context.Context, in RevokeInput) error {
	ctx, span := s.startSpan(ctx, "Revoke")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	cred, err := s.store.Delete(ctx, in.ID)
	if err != nil {
		return s.mapStoreError(ctx, "revoke", in.ID, err)
	}

	s.forgetExpiry(cred.ID)

	slog.InfoContext(ctx, "credential revoked", "credential_id", cred.ID)
	s.notify(ctx, event.SeverityInfo, "revoked principal "+cred.Name)
	s.dispatchRemove(ctx, cred)

	return nil
}

// SetActive enables or disables a credential without touching its secret.
func (s *Usecase) SetActive(ctx context.Context, in SetActiveInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "SetActive")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	changed := false
	cred, err := s.store.Update(ctx, in.ID, func(c *entity.Credential) error {
		changed = c.Active != in.Active
		c.Active = in.Active
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(ctx, "set active", in.ID, err)
	}
	if !changed {
		return &cred, nil
	}

	state := "disabled"
	if cred.Active {
		state = "enabled"
	}
	slog.InfoContext(ctx, "credential "+state, "credential_id", cred.ID)
	s.notify(ctx, event.SeverityInfo, "key for "+cred.Name+" was "+state)
	s.dispatchUpsert(ctx, cred, event.CredentialActivated)

	return &cred, nil
}

func (s *Usecase) mapStoreError(ctx context.Context, op string, id int64, err error) error {
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "credential not found", "op", op, "credential_id", id)
		return goerror.NewNotFound("Credential not found")
	}

	slog.ErrorContext(ctx, "failed to "+op+" credential", "credential_id", id, "error", err)
	return goerror.NewServer(err)
}

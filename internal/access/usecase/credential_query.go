package usecase

import (
	"context"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/samber/lo"
)

type (
	GetInput struct {
		ID int64 `json:"id" validate:"required,gt=0"`
	}

	ListInput struct {
		Status string `json:"status"`
	}

	ListOutput struct {
		Credentials []entity.Credential
	}
)

func (s *Usecase) Get(ctx context.Context, in GetInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return nil, s.mapStoreError(ctx, "get", in.ID, err)
	}

	return &cred, nil
}

// List returns credentials ordered by issuance, filtered by status.
func (s *Usecase) List(ctx context.Context, in ListInput) (*ListOutput, error) {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	filter, ok := entity.ParseStatusFilter(in.Status)
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "status", "status must be one of all, active, expiring or expired")
	}

	var creds []entity.Credential
	switch filter {
	case entity.StatusFilterActive:
		now := s.clock.Now()
		creds = lo.Filter(s.store.Snapshot(ctx), func(c entity.Credential, _ int) bool {
			return c.CanEnter(now)
		})
	case entity.StatusFilterExpiring:
		creds = s.ListExpiring(ctx, s.settings.ExpiringWithin)
	case entity.StatusFilterExpired:
		creds = s.ListExpired(ctx)
	default:
		creds = s.store.Snapshot(ctx)
	}

	return &ListOutput{Credentials: creds}, nil
}

// ListExpiring returns active credentials with expiry in (now, now+within].
func (s *Usecase) ListExpiring(ctx context.Context, within time.Duration) []entity.Credential {
	now := s.clock.Now()
	return lo.Filter(s.store.Snapshot(ctx), func(c entity.Credential, _ int) bool {
		return c.IsExpiring(now, within)
	})
}

// ListExpired returns credentials with expiry at or before now.
func (s *Usecase) ListExpired(ctx context.Context) []entity.Credential {
	now := s.clock.Now()
	return lo.Filter(s.store.Snapshot(ctx), func(c entity.Credential, _ int) bool {
		return c.IsExpired(now)
	})
}

// Dashboard summarizes credential states and the lockdown switch.
func (s *Usecase) Dashboard(ctx context.Context) (*entity.Dashboard, error) {
	ctx, span := s.startSpan(ctx, "Dashboard")
	defer span.End()

	now := s.clock.Now()
	creds := s.store.Snapshot(ctx)
	counts := lo.CountValuesBy(creds, func(c entity.Credential) entity.CredentialStatus {
		return c.Status(now, s.settings.ExpiringWithin)
	})

	return &entity.Dashboard{
		Total:    len(creds),
		Active:   counts[entity.CredentialStatusActive],
		Expiring: counts[entity.CredentialStatusExpiring],
		Expired:  counts[entity.CredentialStatusExpired],
		Inactive: counts[entity.CredentialStatusInactive],
		Lockdown: s.lockdown.State(),
	}, nil
}

// StatusOf derives the dashboard status of c at the current time.
func (s *Usecase) StatusOf(c entity.Credential) entity.CredentialStatus {
	return c.Status(s.clock.Now(), s.settings.ExpiringWithin)
}

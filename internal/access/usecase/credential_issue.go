package usecase

import (
	"context"
	"log/slog"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type IssueInput struct {
	Name        string `json:"name" validate:"required,principalname"`
	AccessClass string `json:"access_class" validate:"required,accessclass"`
}

// Issue creates a credential for a new principal. Names are not unique: two
// issues with the same name yield two credentials.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*entity.IssuedCredential, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	class := entity.ParseAccessClass(in.AccessClass)
	if class.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "access_class", "access_class is not supported")
	}

	secret, err := s.newSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate secret", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	cred := entity.Credential{
		ID:          s.uid.Generate(),
		Name:        in.Name,
		AccessClass: class,
		Secret:      secret,
		IssuedAt:    now,
		ExpiresAt:   now.Add(class.Duration()),
		Disclosed:   false,
		Active:      true,
		Revision:    1,
	}

	prov, err := s.provisioning(ctx, cred)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, cred); err != nil {
		slog.ErrorContext(ctx, "failed to store credential", "credential_id", cred.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "credential issued", "credential_id", cred.ID, "access_class", class.String())
	s.notify(ctx, event.SeverityInfo, "added new principal "+cred.Name+" with "+class.String()+" access")
	s.dispatchUpsert(ctx, cred, event.CredentialIssued)

	return &entity.IssuedCredential{Credential: cred, Provisioning: prov}, nil
}

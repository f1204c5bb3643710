package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
)

type (
	TokenInput struct {
		ClientID     string `json:"client_id" validate:"required,max=128"`
		ClientSecret string `json:"client_secret" validate:"required,max=256"`
	}

	TokenOutput struct {
		AccessToken string
		Role        string
		ExpiresAt   time.Time
	}
)

// Token exchanges API client credentials for a signed access token.
func (s *Usecase) Token(ctx context.Context, in TokenInput) (*TokenOutput, error) {
	ctx, span := s.startSpan(ctx, "Token")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	client, ok := s.clients[in.ClientID]
	if !ok || !s.bcrypt.Verify(client.SecretHash, in.ClientSecret) {
		slog.WarnContext(ctx, "invalid client credentials", "client_id", in.ClientID)
		return nil, goerror.NewBusiness("Invalid client credentials", goerror.CodeUnauthorized)
	}

	tok, err := s.jwt.Generate(client.ID, client.Role)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "client_id", client.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "access token issued", "client_id", client.ID, "role", client.Role)

	return &TokenOutput{AccessToken: tok.Value, Role: client.Role, ExpiresAt: tok.ExpiresAt}, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
)

const maxSecretAttempts = 3

var errSecretReused = errors.New("access: generated secret equals the previous one")

// provisioning renders the one-shot material for c. It is never stored.
func (s *Usecase) provisioning(ctx context.Context, c entity.Credential) (entity.Provisioning, error) {
	uri, err := otp.ProvisioningURI(c.Name, c.Secret, s.settings.Issuer)
	if err != nil {
		slog.WarnContext(ctx, "failed to render provisioning uri", "credential_id", c.ID, "error", err)
		return entity.Provisioning{}, goerror.NewEncoding(err, "Provisioning URI could not be rendered")
	}

	var qr string
	if s.qr != nil {
		qr, err = s.qr.DataURI(uri)
		if err != nil {
			slog.WarnContext(ctx, "failed to render provisioning qr code", "credential_id", c.ID, "error", err)
			return entity.Provisioning{}, goerror.NewEncoding(err, "Provisioning QR code could not be rendered")
		}
	}

	return entity.Provisioning{URI: uri, Secret: c.Secret.Base32(), QRCode: qr}, nil
}

// freshSecret returns a new secret that differs from prev.
func (s *Usecase) freshSecret(prev otp.Secret) (otp.Secret, error) {
	for range maxSecretAttempts {
		secret, err := s.newSecret()
		if err != nil {
			return nil, err
		}
		if !secret.Equal(prev) {
			return secret, nil
		}
	}
	return nil, errSecretReused
}

package jwt

import (
	"errors"
	"fmt"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// minHS512KeyLen is the HS512 block size in bytes.
const minHS512KeyLen = 64

// Symmetric signs and verifies HS512 tokens with a shared key.
type Symmetric struct {
	key      []byte
	issuer   string
	audience []string
	ttl      time.Duration
	clock    clocker
	uuid     generator
	parser   *libJWT.Parser
}

// NewHS512 rejects keys shorter than the HS512 block size.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minHS512KeyLen {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{
		key:      cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audiences,
		ttl:      cfg.TTL,
		clock:    cfg.Clock,
		uuid:     cfg.UUID,
		parser: libJWT.NewParser(
			libJWT.WithIssuer(cfg.Issuer),
			libJWT.WithAudience(cfg.Audiences...),
			libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
			libJWT.WithIssuedAt(),
			libJWT.WithExpirationRequired(),
			libJWT.WithTimeFunc(cfg.Clock.Now),
		),
	}, nil
}

func (s *Symmetric) Generate(clientID, role string) (Token, error) {
	now := s.clock.Now()
	exp := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.uuid.Generate(),
			Subject:   clientID,
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(exp),
		},
		Role: role,
	}

	value, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return Token{}, fmt.Errorf("jwt: sign: %w", err)
	}

	return Token{Value: value, ExpiresAt: exp}, nil
}

// Verify returns ErrTokenExpired for stale tokens and ErrInvalidToken for
// anything else that fails validation, including tokens without a role.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	_, err := s.parser.ParseWithClaims(tokenStr, &claims, func(t *libJWT.Token) (any, error) {
		if _, ok := t.Method.(*libJWT.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.key, nil
	})
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case claims.Subject == "" || claims.Role == "":
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

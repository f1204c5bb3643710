package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

// JWT issues and verifies API client tokens.
type JWT interface {
	Generate(clientID, role string) (Token, error)
	Verify(tokenStr string) (Claims, error)
}

// Token is a signed access token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type (
	clocker   interface{ Now() time.Time }
	generator interface{ Generate() string }
)

// Config configures NewHS512. Clock drives both issuing and validation so
// tests can expire tokens without sleeping.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	// UUID fills the jti claim.
	UUID generator
}

// Claims carries the client id in Subject and its authorization role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type authKey struct{}

// SetAuth stores verified claims for downstream handlers.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}

// GetAuth returns the claims stored by SetAuth, or nil for anonymous requests.
func GetAuth(ctx context.Context) *Claims {
	if clm, ok := ctx.Value(authKey{}).(Claims); ok {
		return &clm
	}
	return nil
}

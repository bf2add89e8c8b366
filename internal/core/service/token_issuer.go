package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/appliancehub/console-api/internal/core/domain"
)

// TokenIssuer mints the console's own HS256 session tokens. The browser
// presents one of these on every request; the backend's token never
// leaves the console process.
type TokenIssuer struct {
	secret   string
	tokenTTL time.Duration
}

func NewTokenIssuer(secret string, tokenTTL time.Duration) *TokenIssuer {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &TokenIssuer{secret: secret, tokenTTL: tokenTTL}
}

// Issue signs a console token for the given principal.
func (ti *TokenIssuer) Issue(kind domain.Kind, principal domain.Principal) (string, error) {
	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  principal.ID,
		"kind": string(kind),
		"role": principal.Role,
		"exp":  time.Now().Add(ti.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(ti.secret))
}

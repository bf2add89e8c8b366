package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/appliancehub/console-api/internal/core/ports"
)

// Guard gates routes belonging to one principal kind. It validates the
// console-issued JWT, then re-checks the live session: the token alone
// is never trusted, because a corrupted-storage bootstrap or a logout
// can invalidate a session while a token is still circulating.
//
// Responses: 401 for a missing/invalid token or an anonymous session,
// 403 for a role mismatch, 503 while the session is still
// bootstrapping.
func Guard(jwtSecret string, session ports.AuthSession) echo.MiddlewareFunc {
	kind := session.Kind()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			tokenKind, _ := claims["kind"].(string)
			if tokenKind != string(kind) {
				return echo.NewHTTPError(http.StatusForbidden, "token issued for a different console")
			}

			state := session.Current()
			if state.IsLoading {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session initializing")
			}
			if !state.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}
			// Defense in depth: login already enforced the role, but the
			// session may have been restored from storage since.
			if state.Principal.Role != kind.Role() {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			c.Set("kind", string(kind))
			c.Set("role", state.Principal.Role)
			c.Set("principal_id", state.Principal.ID)

			return next(c)
		}
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/session"
)

// Context keys set by Auth.
const (
	SessionKey = "session"
	RoleKey    = "role"
	UserIDKey  = "user_id"
)

// TokenCookie carries the gateway token for clients that cannot set headers
// (browser websockets).
const TokenCookie = "galacash_token"

// SessionLookup resolves a session id to a live session.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Auth validates the gateway JWT, loads the session it names and injects it
// into context. A token whose session is gone yields ErrSessionExpired so
// the client is sent back to sign-in.
func Auth(jwtSecret string, sessions SessionLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithIssuer(issuer))
			if errors.Is(err, jwt.ErrTokenExpired) {
				return domain.ErrSessionExpired
			}
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session")
			}
			s, err := sessions.Get(c.Request().Context(), sid)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					return domain.ErrSessionExpired
				}
				return err
			}

			role := s.Role()
			if role == "" {
				role, _ = claims["role"].(string)
			}
			c.Set(SessionKey, s)
			c.Set(RoleKey, role)
			c.Set(UserIDKey, claims["sub"])

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if ck, err := c.Cookie(TokenCookie); err == nil && ck.Value != "" {
			return ck.Value, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

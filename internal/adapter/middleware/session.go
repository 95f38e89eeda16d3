package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"autoempeno-backend/internal/domain/session"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionKey = "session"

// sessionClaims are the private claims our auth service adds to the token.
type sessionClaims struct {
	Role string `json:"rol"`
	Name string `json:"nombre"`
}

func (c *sessionClaims) Validate(context.Context) error {
	if !session.Role(c.Role).Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// TokenValidator is satisfied by *validator.Validator.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// NewTokenValidator checks HS256 tokens against secret, issuer and audience.
func NewTokenValidator(secret, issuer, audience string) (*validator.Validator, error) {
	key := []byte(secret)
	return validator.New(
		func(context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &sessionClaims{} }),
		validator.WithAllowedClockSkew(30*time.Second),
	)
}

// Session authenticates the bearer token and stores a session.Session for handlers.
func Session(v TokenValidator, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token, err := jwtmiddleware.AuthHeaderTokenExtractor(req)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			raw, err := v.ValidateToken(req.Context(), token)
			if err != nil {
				log.Debug("token rejected", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			claims, ok := raw.(*validator.ValidatedClaims)
			if !ok || claims.RegisteredClaims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token has no subject"})
			}
			custom, ok := claims.CustomClaims.(*sessionClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token has no role"})
			}

			c.Set(sessionKey, session.Session{
				UserID: claims.RegisteredClaims.Subject,
				Name:   custom.Name,
				Role:   session.Role(custom.Role),
			})
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by Session.
func SessionFrom(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(sessionKey).(session.Session)
	return s, ok
}

// WithSession stores s on c; used where the token was checked elsewhere.
func WithSession(c echo.Context, s session.Session) { c.Set(sessionKey, s) }

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing session"})
			}
			if !s.HasRole(roles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/pkg/config"
)

const subjectContextKey = "auth_subject"

// AuthMiddleware validates bearer JWTs on API routes
type AuthMiddleware struct {
	secret   []byte
	disabled bool
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cfg *config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{
		secret:   []byte(cfg.JWTSecret),
		disabled: cfg.Disabled,
	}
}

// Authenticate validates the JWT token and stores its subject on the echo
// context. With auth disabled (local development) every request passes.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.disabled {
			return next(c)
		}

		tokenString := extractToken(c.Request())
		if tokenString == "" {
			return respondError(c, apperrors.ErrUnauthenticated())
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			return respondError(c, apperrors.ErrUnauthenticated())
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, _ := claims.GetSubject(); sub != "" {
				c.Set(subjectContextKey, sub)
			}
		}
		return next(c)
	}
}

// SubjectFromContext returns the authenticated subject, empty when auth is
// disabled or the token carried no subject claim.
func SubjectFromContext(c echo.Context) string {
	if sub, ok := c.Get(subjectContextKey).(string); ok {
		return sub
	}
	return ""
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func respondError(c echo.Context, appErr apperrors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code.String(),
			"message": appErr.Message,
		},
	})
}

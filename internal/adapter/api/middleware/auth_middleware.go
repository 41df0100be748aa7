package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/errors"
)

const (
	contextUserID = "uid"
	contextRole   = "role"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*usecase.Identity, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// Authenticate requires a bearer token and stores the caller's id and role
// on the context. Browsers cannot set headers on websocket upgrades, so a
// token query parameter is accepted too.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		identity, err := m.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(contextUserID, identity.UserID)
		c.Set(contextRole, identity.Role)
		return next(c)
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

func UserID(c echo.Context) string {
	uid, _ := c.Get(contextUserID).(string)
	return uid
}

func Role(c echo.Context) entity.Role {
	role, _ := c.Get(contextRole).(entity.Role)
	return role
}

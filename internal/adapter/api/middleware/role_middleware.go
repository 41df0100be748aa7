package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"servicemarket/internal/domain/entity"
	"servicemarket/pkg/errors"
)

// RequireRole lets the request through only when the authenticated caller
// holds one of roles. It must run after Authenticate.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserID(c) == "" {
				return errors.Unauthorized("Authentication required", nil)
			}

			role := Role(c)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return errors.Forbidden("This action requires the "+joinRoles(roles)+" role", nil)
		}
	}
}

func joinRoles(roles []entity.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// RBAC admits only principals whose role name is one of allowedRoles. It must
// run after Auth. Other principals get domain.ErrForbidden, which the error
// handler renders like every other 403.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if _, ok := allowed[p.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/user-service/internal/api/middleware"
	"github.com/accessdesk/user-service/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// absence means the route was mounted without the gate, which is a wiring
// error reported as 401 rather than letting the call through.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

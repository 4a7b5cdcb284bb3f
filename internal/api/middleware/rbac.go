package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/api/metrics"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// RequireRoles admits the authenticated user when it holds at least one of
// roles. It must run after Authenticate.
func RequireRoles(auth ports.AuthService, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.ErrAuthorizationHeaderMissing
			}
			if !auth.Authorize(user, roles...) {
				metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

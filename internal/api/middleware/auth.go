package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/api/metrics"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// Authenticate resolves the bearer token into a user and stores it in the
// request context. Failures are returned as domain errors for the HTTP error
// handler to render.
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				return err
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthorizationHeaderMissing):
		return "header_missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "token_expired"
	default:
		return "token_invalid"
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/core/domain"
)

const userKey = "user"

// CurrentUser returns the user resolved by Authenticate, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/api/metrics"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login handles POST /api/login.
//
// @Summary      Log in and obtain a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  ports.LoginResult
// @Failure      401   {object}  errorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return domain.ErrInvalidCredentials
	}

	res, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, res)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Adds a Bearer challenge to every 401, carrying the expiry reason when
//     the token has expired.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger, realm string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge(realm, err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func challenge(realm string, err error) string {
	var expired *domain.TokenExpiredError
	if errors.As(err, &expired) {
		return fmt.Sprintf(`Bearer realm=%q, error="invalid_token", error_description=%q`, realm, expired.Message)
	}
	if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenMalformed) {
		return fmt.Sprintf(`Bearer realm=%q, error="invalid_token"`, realm)
	}
	return fmt.Sprintf(`Bearer realm=%q`, realm)
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: statusCode(he.Code)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: "entity invalid", Code: "ENTITY_INVALID", Fields: ve.Fields}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAuthorizationHeaderMissing):
		return http.StatusUnauthorized, errorResponse{Error: "authorization header missing", Code: "AUTHORIZATION_HEADER_MISSING"}
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "TOKEN_EXPIRED"}
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		return http.StatusUnauthorized, errorResponse{Error: "invalid token", Code: "TOKEN_INVALID"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Code: "INVALID_CREDENTIALS"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Code: "FORBIDDEN"}
	case errors.Is(err, domain.ErrTitleExists):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "TITLE_EXISTS"}
	case errors.Is(err, domain.ErrBusinessKeyExists):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BUSINESS_KEY_EXISTS"}
	case errors.Is(err, domain.ErrVersionMissing):
		return http.StatusPreconditionRequired, errorResponse{Error: err.Error(), Code: "VERSION_MISSING"}
	case errors.Is(err, domain.ErrVersionMalformed):
		return http.StatusPreconditionFailed, errorResponse{Error: err.Error(), Code: "VERSION_MALFORMED"}
	case errors.Is(err, domain.ErrVersionStale):
		return http.StatusPreconditionFailed, errorResponse{Error: err.Error(), Code: "VERSION_STALE"}
	case errors.Is(err, domain.ErrEntityNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "NOT_FOUND"}
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, errorResponse{Error: "file not found", Code: "FILE_NOT_FOUND"}
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, errorResponse{Error: "entity already exists", Code: "CONFLICT"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"}
}

func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

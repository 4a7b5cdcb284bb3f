package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/core/domain"
)

const (
	headerETag        = "ETag"
	headerIfMatch     = "If-Match"
	headerIfNoneMatch = "If-None-Match"
)

// errorBody documents the error envelope rendered by the API error handler.
type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// preconditionOnMissing turns a missing entity into 412 for write paths
// where the client acted on a resource it believed existed.
func preconditionOnMissing(err error) error {
	if errors.Is(err, domain.ErrEntityNotFound) {
		return &echo.HTTPError{Code: http.StatusPreconditionFailed, Message: err.Error(), Internal: err}
	}
	return err
}

func entityID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}
	return id, nil
}

func requireJSON(c echo.Context) error {
	mt, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if err != nil || mt != echo.MIMEApplicationJSON {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type application/json required")
	}
	return nil
}

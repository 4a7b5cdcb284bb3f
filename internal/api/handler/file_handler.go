package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/core/ports"
)

// FileHandler serves the binary attachment of a catalog entry.
type FileHandler struct {
	service ports.FileService
}

func NewFileHandler(service ports.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// Upload handles PUT /api/{kind}/:id/file.
//
// @Summary      Store the binary attachment of a catalog entry
// @Tags         files
// @Accept       octet-stream
// @Security     BearerAuth
// @Param        kind  path  string  true  "books or films"
// @Param        id    path  string  true  "Entity id (UUID)"
// @Success      204
// @Failure      412   {object}  errorBody
// @Router       /{kind}/{id}/file [put]
func (h *FileHandler) Upload(c echo.Context) error {
	id, err := entityID(c)
	if err != nil {
		return err
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	if err := h.service.Upload(c.Request().Context(), id, c.Request().Body, contentType); err != nil {
		return preconditionOnMissing(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Download handles GET /api/{kind}/:id/file.
//
// @Summary      Download the binary attachment of a catalog entry
// @Tags         files
// @Produce      octet-stream
// @Param        kind  path  string  true  "books or films"
// @Param        id    path  string  true  "Entity id (UUID)"
// @Success      200
// @Failure      404   {object}  errorBody
// @Failure      412   {object}  errorBody
// @Router       /{kind}/{id}/file [get]
func (h *FileHandler) Download(c echo.Context) error {
	id, err := entityID(c)
	if err != nil {
		return err
	}

	f, err := h.service.Download(c.Request().Context(), id)
	if err != nil {
		return preconditionOnMissing(err)
	}
	defer f.Content.Close()

	return c.Stream(http.StatusOK, f.ContentType, f.Content)
}

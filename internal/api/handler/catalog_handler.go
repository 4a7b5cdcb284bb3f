package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/api/metrics"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// CatalogHandler serves one catalog kind. Books and films share it through
// their schema.
type CatalogHandler[E domain.Entity] struct {
	service  ports.CatalogService[E]
	schema   domain.Schema[E]
	basePath string
}

// NewCatalogHandler builds the handler; basePath is the collection URL used
// for Location headers, e.g. /api/books.
func NewCatalogHandler[E domain.Entity](service ports.CatalogService[E], schema domain.Schema[E], basePath string) *CatalogHandler[E] {
	return &CatalogHandler[E]{service: service, schema: schema, basePath: strings.TrimRight(basePath, "/")}
}

// Get handles GET /api/{kind}/:id.
//
// @Summary      Get a catalog entry by id
// @Tags         catalog
// @Produce      json
// @Param        kind           path      string  true   "books or films"
// @Param        id             path      string  true   "Entity id (UUID)"
// @Param        If-None-Match  header    string  false  "Revision known to the client"
// @Success      200            {object}  domain.Book
// @Success      304
// @Failure      404            {object}  errorBody
// @Router       /{kind}/{id} [get]
func (h *CatalogHandler[E]) Get(c echo.Context) error {
	id, err := entityID(c)
	if err != nil {
		return err
	}

	e, err := h.service.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	etag := domain.FormatVersion(e.Meta().Version)
	c.Response().Header().Set(headerETag, etag)
	if etagMatches(c.Request().Header.Get(headerIfNoneMatch), etag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, e)
}

// List handles GET /api/{kind}.
//
// @Summary      List all catalog entries of a kind, ordered by title
// @Tags         catalog
// @Produce      json
// @Param        kind  path      string  true  "books or films"
// @Success      200   {array}   domain.Book
// @Failure      404   {object}  errorBody
// @Router       /{kind} [get]
func (h *CatalogHandler[E]) List(c echo.Context) error {
	all, err := h.service.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no %s found", h.schema.Collection))
	}
	return c.JSON(http.StatusOK, all)
}

// Create handles POST /api/{kind}.
//
// @Summary      Create a catalog entry
// @Tags         catalog
// @Accept       json
// @Security     BearerAuth
// @Param        kind  path  string       true  "books or films"
// @Param        body  body  domain.Book  true  "Entity"
// @Success      201
// @Header       201   {string}  Location  "URL of the new entity"
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      415   {object}  errorBody
// @Router       /{kind} [post]
func (h *CatalogHandler[E]) Create(c echo.Context) error {
	if err := requireJSON(c); err != nil {
		return err
	}

	e := h.schema.New()
	if err := c.Bind(e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := h.service.Create(c.Request().Context(), e)
	if err != nil {
		return err
	}

	metrics.EntitiesCreatedTotal.WithLabelValues(h.schema.Kind).Inc()
	c.Response().Header().Set(echo.HeaderLocation, h.basePath+"/"+created.Meta().ID)
	c.Response().Header().Set(headerETag, domain.FormatVersion(created.Meta().Version))
	return c.NoContent(http.StatusCreated)
}

// Update handles PUT /api/{kind}/:id.
//
// @Summary      Update a catalog entry guarded by its revision
// @Tags         catalog
// @Accept       json
// @Security     BearerAuth
// @Param        kind      path    string       true  "books or films"
// @Param        id        path    string       true  "Entity id (UUID)"
// @Param        If-Match  header  string       true  "Revision the update is based on, e.g. \"0\""
// @Param        body      body    domain.Book  true  "Entity"
// @Success      204
// @Header       204       {string}  ETag  "New revision"
// @Failure      400       {object}  errorBody
// @Failure      412       {object}  errorBody
// @Failure      428       {object}  errorBody
// @Router       /{kind}/{id} [put]
func (h *CatalogHandler[E]) Update(c echo.Context) error {
	id, err := entityID(c)
	if err != nil {
		return err
	}

	token := c.Request().Header.Get(headerIfMatch)
	if strings.TrimSpace(token) == "" {
		metrics.UpdateRejectionsTotal.WithLabelValues(h.schema.Kind, "version_missing").Inc()
		return &domain.VersionError{Kind: domain.ErrVersionMissing}
	}

	if err := requireJSON(c); err != nil {
		return err
	}
	e := h.schema.New()
	if err := c.Bind(e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	version, err := h.service.Update(c.Request().Context(), id, e, token)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			metrics.UpdateRejectionsTotal.WithLabelValues(h.schema.Kind, reason).Inc()
		}
		return preconditionOnMissing(err)
	}

	metrics.EntitiesUpdatedTotal.WithLabelValues(h.schema.Kind).Inc()
	c.Response().Header().Set(headerETag, domain.FormatVersion(version))
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/{kind}/:id.
//
// @Summary      Delete a catalog entry
// @Tags         catalog
// @Security     BearerAuth
// @Param        kind  path  string  true  "books or films"
// @Param        id    path  string  true  "Entity id (UUID)"
// @Success      204
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Router       /{kind}/{id} [delete]
func (h *CatalogHandler[E]) Delete(c echo.Context) error {
	id, err := entityID(c)
	if err != nil {
		return err
	}

	removed, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if removed {
		metrics.EntitiesDeletedTotal.WithLabelValues(h.schema.Kind).Inc()
	}
	return c.NoContent(http.StatusNoContent)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrVersionMissing):
		return "version_missing"
	case errors.Is(err, domain.ErrVersionMalformed):
		return "version_malformed"
	case errors.Is(err, domain.ErrVersionStale):
		return "version_stale"
	case errors.Is(err, domain.ErrEntityInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrTitleExists):
		return "title_exists"
	case errors.Is(err, domain.ErrEntityNotFound):
		return "not_found"
	default:
		return ""
	}
}

// etagMatches implements the weak comparison used by If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

package ports

import (
	"context"

	"github.com/acme/catalog-system/internal/core/domain"
)

// CatalogService is the use-case surface for one catalog kind.
type CatalogService[E domain.Entity] interface {
	FindByID(ctx context.Context, id string) (E, error)
	FindAll(ctx context.Context) ([]E, error)
	Create(ctx context.Context, e E) (E, error)
	// Update applies e to the entity with id, guarded by the client's
	// revision token. It returns the new revision.
	Update(ctx context.Context, id string, e E, versionToken string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

package ports

import (
	"context"

	"github.com/acme/catalog-system/internal/core/domain"
)

// EntityRepository defines persistence operations for one catalog kind.
// Lookups of absent entities return domain.ErrEntityNotFound.
type EntityRepository[E domain.Entity] interface {
	FindByID(ctx context.Context, id string) (E, error)
	// FindByField returns the first entity whose store field equals value.
	FindByField(ctx context.Context, field, value string) (E, error)
	FindAll(ctx context.Context) ([]E, error)
	// Insert stores a new entity. A unique index violation is reported as
	// domain.ErrDuplicateKey.
	Insert(ctx context.Context, e E) error
	// ConditionalReplace writes the mutable fields of e only when the stored
	// revision still equals expectedVersion, incrementing it atomically.
	// It returns the stored entity after the write, or a VersionError with
	// Kind ErrVersionStale when the revision moved on. A unique index
	// violation is reported as domain.ErrDuplicateKey.
	ConditionalReplace(ctx context.Context, id string, expectedVersion int, e E) (E, error)
	// Delete removes the entity and reports how many documents were removed.
	Delete(ctx context.Context, id string) (int64, error)
}

package service

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

var _ ports.FileService = (*FileService)(nil)

// FileService stores one binary attachment per catalog entity. The file is
// kept in the bucket named after the kind's collection under the entity id.
type FileService struct {
	kind   string
	bucket string
	exists func(ctx context.Context, id string) error
	store  ports.FileStore
	log    zerolog.Logger
}

// NewFileService binds attachments to the entities held by repo.
func NewFileService[E domain.Entity](schema domain.Schema[E], repo ports.EntityRepository[E], store ports.FileStore, log zerolog.Logger) *FileService {
	return &FileService{
		kind:   schema.Kind,
		bucket: schema.Collection,
		exists: func(ctx context.Context, id string) error {
			_, err := repo.FindByID(ctx, id)
			return err
		},
		store: store,
		log:   log.With().Str("kind", schema.Kind).Logger(),
	}
}

// Upload replaces the attachment of entity id.
func (s *FileService) Upload(ctx context.Context, id string, r io.Reader, contentType string) error {
	if err := s.checkEntity(ctx, id); err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.bucket, id, r, contentType); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Str("content_type", contentType).Msg("file stored")
	return nil
}

// Download returns the attachment of entity id.
func (s *FileService) Download(ctx context.Context, id string) (*ports.File, error) {
	if err := s.checkEntity(ctx, id); err != nil {
		return nil, err
	}
	f, err := s.store.Fetch(ctx, s.bucket, id)
	if err != nil {
		if errors.Is(err, domain.ErrMultipleFiles) {
			s.log.Error().Str("id", id).Msg("more than one file stored")
		}
		return nil, err
	}
	return f, nil
}

func (s *FileService) checkEntity(ctx context.Context, id string) error {
	if err := s.exists(ctx, id); err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return &domain.NotFoundError{Kind: s.kind, ID: id}
		}
		return err
	}
	return nil
}

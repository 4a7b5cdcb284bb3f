package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// EntityValidator reports every field violation of a payload.
type EntityValidator interface {
	Fields(v any) (domain.FieldErrors, error)
}

// MailSettings addresses the notification sent after a create.
type MailSettings struct {
	From string
	To   string
}

// CatalogService implements create, read, delete and the revision-guarded
// update for one catalog kind described by its schema.
type CatalogService[E domain.Entity] struct {
	schema    domain.Schema[E]
	repo      ports.EntityRepository[E]
	validator EntityValidator
	notifier  ports.NotificationSender
	mail      MailSettings
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewCatalogService wires the engine for schema. notifier may be nil.
func NewCatalogService[E domain.Entity](
	schema domain.Schema[E],
	repo ports.EntityRepository[E],
	validator EntityValidator,
	notifier ports.NotificationSender,
	mail MailSettings,
	log zerolog.Logger,
) *CatalogService[E] {
	return &CatalogService[E]{
		schema:    schema,
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		mail:      mail,
		log:       log.With().Str("kind", schema.Kind).Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Schema returns the description this service was built for.
func (s *CatalogService[E]) Schema() domain.Schema[E] { return s.schema }

func (s *CatalogService[E]) FindByID(ctx context.Context, id string) (E, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var zero E
		return zero, s.notFound(id, err)
	}
	return e, nil
}

func (s *CatalogService[E]) FindAll(ctx context.Context) ([]E, error) {
	return s.repo.FindAll(ctx)
}

// Create validates e, enforces title and business key uniqueness and stores
// it with revision 0. The notification is best-effort.
func (s *CatalogService[E]) Create(ctx context.Context, e E) (E, error) {
	var zero E

	if err := s.validate(e, false); err != nil {
		return zero, err
	}
	if err := s.checkTitle(ctx, e.Title(), ""); err != nil {
		return zero, err
	}
	if err := s.checkBusinessKey(ctx, e.BusinessKey()); err != nil {
		return zero, err
	}

	now := s.now()
	meta := e.Meta()
	meta.ID = s.newID()
	meta.Version = 0
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := s.repo.Insert(ctx, e); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// A concurrent create won the race on a unique index.
			if cerr := s.checkTitle(ctx, e.Title(), ""); cerr != nil {
				return zero, cerr
			}
			if cerr := s.checkBusinessKey(ctx, e.BusinessKey()); cerr != nil {
				return zero, cerr
			}
		}
		return zero, fmt.Errorf("insert %s: %w", s.schema.Kind, err)
	}

	s.log.Info().Str("id", meta.ID).Str("title", e.Title()).Msg("entity created")
	s.notifyCreated(ctx, e)
	return e, nil
}

// Update applies e to the stored entity id. The steps run in a fixed order:
// revision token, payload validation, title uniqueness, existence, staleness,
// conditional write. The business key is never changed by an update.
func (s *CatalogService[E]) Update(ctx context.Context, id string, e E, versionToken string) (int, error) {
	version, err := domain.ParseVersion(versionToken)
	if err != nil {
		return 0, err
	}

	if err := s.validate(e, true); err != nil {
		return 0, err
	}
	if err := s.checkTitle(ctx, e.Title(), id); err != nil {
		return 0, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, s.notFound(id, err)
	}

	stored := current.Meta().Version
	if version < stored {
		s.log.Debug().Str("id", id).Int("provided", version).Int("current", stored).Msg("stale revision")
		return 0, &domain.VersionError{Kind: domain.ErrVersionStale, Token: versionToken, Provided: version, Current: stored}
	}

	e.SetBusinessKey(current.BusinessKey())
	meta := e.Meta()
	meta.ID = id
	meta.CreatedAt = current.Meta().CreatedAt
	meta.UpdatedAt = s.now()

	updated, err := s.repo.ConditionalReplace(ctx, id, stored, e)
	if err != nil {
		var ve *domain.VersionError
		if errors.As(err, &ve) {
			ve.Token = versionToken
			ve.Provided = version
			return 0, ve
		}
		if errors.Is(err, domain.ErrDuplicateKey) {
			// Another writer took the title after the uniqueness check.
			if cerr := s.checkTitle(ctx, e.Title(), id); cerr != nil {
				return 0, cerr
			}
			return 0, fmt.Errorf("update %s: %w", s.schema.Kind, err)
		}
		return 0, s.notFound(id, err)
	}

	newVersion := updated.Meta().Version
	s.log.Info().Str("id", id).Int("version", newVersion).Msg("entity updated")
	return newVersion, nil
}

// Delete removes id unconditionally. Deleting an absent entity succeeds and
// reports false.
func (s *CatalogService[E]) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.schema.Kind, err)
	}
	if n > 0 {
		s.log.Info().Str("id", id).Msg("entity deleted")
	}
	return n > 0, nil
}

func (s *CatalogService[E]) validate(e E, update bool) error {
	fields, err := s.validator.Fields(e)
	if err != nil {
		return err
	}
	// The business key may be left out of an update payload.
	if update && e.BusinessKey() == "" {
		delete(fields, s.schema.BusinessKeyJSON)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *CatalogService[E]) checkTitle(ctx context.Context, title, selfID string) error {
	existing, err := s.repo.FindByField(ctx, s.schema.TitleField, title)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return nil
		}
		return err
	}
	if existing.Meta().ID != selfID {
		return &domain.TitleConflictError{Title: title, ExistingID: existing.Meta().ID}
	}
	return nil
}

func (s *CatalogService[E]) checkBusinessKey(ctx context.Context, key string) error {
	existing, err := s.repo.FindByField(ctx, s.schema.BusinessKeyField, key)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return nil
		}
		return err
	}
	return &domain.BusinessKeyConflictError{
		Field:      s.schema.BusinessKeyJSON,
		Value:      key,
		ExistingID: existing.Meta().ID,
	}
}

func (s *CatalogService[E]) notFound(id string, err error) error {
	if errors.Is(err, domain.ErrEntityNotFound) {
		return &domain.NotFoundError{Kind: s.schema.Kind, ID: id}
	}
	return err
}

func (s *CatalogService[E]) notifyCreated(ctx context.Context, e E) {
	if s.notifier == nil {
		return
	}
	id := e.Meta().ID
	m := ports.Mail{
		From:    s.mail.From,
		To:      s.mail.To,
		Subject: fmt.Sprintf("New %s %s", s.schema.Kind, id),
		Body:    fmt.Sprintf("<strong>%s</strong> with title <em>%s</em> was created", s.schema.Kind, html.EscapeString(e.Title())),
	}
	if err := s.notifier.Send(ctx, m); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("create notification not sent")
	}
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

const (
	fieldID        = "_id"
	fieldVersion   = "version"
	fieldUpdatedAt = "updated_at"
)

// EntityRepository stores one catalog kind in the collection named by its
// schema.
type EntityRepository[E domain.Entity] struct {
	col          *mongo.Collection
	schema       domain.Schema[E]
	transactions bool
}

// NewEntityRepository returns a repository for schema. With transactions
// enabled every insert runs in its own session transaction, which requires a
// replica set.
func NewEntityRepository[E domain.Entity](db *mongo.Database, schema domain.Schema[E], transactions bool) *EntityRepository[E] {
	return &EntityRepository[E]{
		col:          db.Collection(schema.Collection),
		schema:       schema,
		transactions: transactions,
	}
}

var _ ports.EntityRepository[*domain.Book] = (*EntityRepository[*domain.Book])(nil)

func (r *EntityRepository[E]) FindByID(ctx context.Context, id string) (E, error) {
	return r.findOne(ctx, bson.M{fieldID: id})
}

func (r *EntityRepository[E]) FindByField(ctx context.Context, field, value string) (E, error) {
	return r.findOne(ctx, bson.M{field: value})
}

func (r *EntityRepository[E]) findOne(ctx context.Context, filter bson.M) (E, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e := r.schema.New()
	if err := r.col.FindOne(ctx, filter).Decode(e); err != nil {
		var zero E
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, domain.ErrEntityNotFound
		}
		return zero, fmt.Errorf("find %s: %w", r.schema.Kind, err)
	}
	return e, nil
}

// FindAll returns every entity ordered by title.
func (r *EntityRepository[E]) FindAll(ctx context.Context) ([]E, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: r.schema.TitleField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", r.schema.Kind, err)
	}
	defer cur.Close(ctx)

	out := make([]E, 0)
	for cur.Next(ctx) {
		e := r.schema.New()
		if err := cur.Decode(e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.schema.Kind, err)
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.schema.Kind, err)
	}
	return out, nil
}

// Insert stores e, inside a session transaction when enabled.
func (r *EntityRepository[E]) Insert(ctx context.Context, e E) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	insert := func(ctx context.Context) error {
		_, err := r.col.InsertOne(ctx, e)
		return err
	}

	var err error
	if r.transactions {
		err = r.inTransaction(ctx, insert)
	} else {
		err = insert(ctx)
	}
	if err != nil {
		return r.writeError("insert", err)
	}
	return nil
}

// writeError reports unique index violations as domain.ErrDuplicateKey.
func (r *EntityRepository[E]) writeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s %s: %w", op, r.schema.Kind, domain.ErrDuplicateKey)
	}
	return fmt.Errorf("%s %s: %w", op, r.schema.Kind, err)
}

func (r *EntityRepository[E]) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.col.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// ConditionalReplace writes the schema's mutable fields and increments the
// revision in one atomic operation matched on the expected revision.
func (r *EntityRepository[E]) ConditionalReplace(ctx context.Context, id string, expectedVersion int, e E) (E, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var zero E
	update, err := r.updateDocument(e)
	if err != nil {
		return zero, err
	}

	out := r.schema.New()
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{fieldID: id, fieldVersion: expectedVersion},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return zero, r.writeError("update", err)
	}

	// No match: either the entity is gone or its revision moved on.
	current, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return zero, ferr
	}
	return zero, &domain.VersionError{
		Kind:     domain.ErrVersionStale,
		Provided: expectedVersion,
		Current:  current.Meta().Version,
	}
}

func (r *EntityRepository[E]) updateDocument(e E) (bson.D, error) {
	raw, err := bson.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", r.schema.Kind, err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.schema.Kind, err)
	}

	set := bson.M{fieldUpdatedAt: e.Meta().UpdatedAt}
	unset := bson.M{}
	for _, f := range r.schema.Mutable {
		if v, ok := doc[f]; ok {
			set[f] = v
		} else {
			unset[f] = ""
		}
	}

	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.M{fieldVersion: 1}},
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update, nil
}

// Delete removes the entity with id and reports the number removed.
func (r *EntityRepository[E]) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{fieldID: id})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.schema.Kind, err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique title and business key indexes.
func (r *EntityRepository[E]) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: r.schema.TitleField, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: r.schema.BusinessKeyField, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/acme/catalog-system/internal/core/domain"
)

func TestUpdateDocument_SetsMutableFieldsOnly(t *testing.T) {
	r := &EntityRepository[*domain.Book]{schema: domain.BookSchema}
	p := 12.5
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &domain.Book{
		BookTitle: "Alpha",
		Publisher: domain.PublisherFoo,
		Price:     &p,
		ISBN:      "978-0-007-00644-1",
	}
	b.ID = "id-1"
	b.Version = 7
	b.UpdatedAt = now

	update, err := r.updateDocument(b)
	if err != nil {
		t.Fatalf("updateDocument: %v", err)
	}

	ops := make(map[string]bson.M, len(update))
	for _, e := range update {
		ops[e.Key] = e.Value.(bson.M)
	}

	set := ops["$set"]
	if set["title"] != "Alpha" || set["price"] != 12.5 {
		t.Fatalf("unexpected $set: %v", set)
	}
	if set[fieldUpdatedAt] != now {
		t.Fatalf("updated_at not set: %v", set[fieldUpdatedAt])
	}
	for _, forbidden := range []string{"_id", "isbn", "version", "created_at"} {
		if _, ok := set[forbidden]; ok {
			t.Fatalf("%s must not be part of $set", forbidden)
		}
	}

	if ops["$inc"][fieldVersion] != 1 {
		t.Fatalf("expected version increment, got %v", ops["$inc"])
	}

	unset := ops["$unset"]
	for _, f := range []string{"kind", "homepage", "date", "keywords", "authors"} {
		if _, ok := unset[f]; !ok {
			t.Fatalf("expected %s to be unset, got %v", f, unset)
		}
	}
}

func TestWriteError_DuplicateKey(t *testing.T) {
	r := &EntityRepository[*domain.Book]{schema: domain.BookSchema}

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error index: title_1",
	}}}
	for _, op := range []string{"insert", "update"} {
		err := r.writeError(op, dup)
		if !errors.Is(err, domain.ErrDuplicateKey) {
			t.Fatalf("%s: expected ErrDuplicateKey, got %v", op, err)
		}
	}

	other := r.writeError("update", errors.New("connection reset"))
	if errors.Is(other, domain.ErrDuplicateKey) {
		t.Fatalf("unexpected duplicate key mapping: %v", other)
	}
}

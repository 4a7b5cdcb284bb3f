package service

import (
	"context"
	"sort"
	"sync"

	"github.com/acme/catalog-system/internal/core/domain"
)

// memoryRepo is the in-memory EntityRepository used by the service tests.
type memoryRepo[E domain.Entity] struct {
	mu     sync.Mutex
	schema domain.Schema[E]
	clone  func(E) E
	byID   map[string]E

	calls      int
	insertErr  error
	replaceErr error
	// beforeWrite runs ahead of Insert and ConditionalReplace, outside the
	// lock, to let a test slip in a competing writer.
	beforeWrite func()
}

func newMemoryRepo[E domain.Entity](schema domain.Schema[E], clone func(E) E) *memoryRepo[E] {
	return &memoryRepo[E]{schema: schema, clone: clone, byID: make(map[string]E)}
}

func cloneBook(b *domain.Book) *domain.Book {
	c := *b
	return &c
}

func (r *memoryRepo[E]) put(e E) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.Meta().ID] = r.clone(e)
}

func (r *memoryRepo[E]) FindByID(_ context.Context, id string) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	e, ok := r.byID[id]
	if !ok {
		var zero E
		return zero, domain.ErrEntityNotFound
	}
	return r.clone(e), nil
}

func (r *memoryRepo[E]) FindByField(_ context.Context, field, value string) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, e := range r.byID {
		switch field {
		case r.schema.TitleField:
			if e.Title() == value {
				return r.clone(e), nil
			}
		case r.schema.BusinessKeyField:
			if e.BusinessKey() == value {
				return r.clone(e), nil
			}
		}
	}
	var zero E
	return zero, domain.ErrEntityNotFound
}

func (r *memoryRepo[E]) FindAll(_ context.Context) ([]E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := make([]E, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, r.clone(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title() < out[j].Title() })
	return out, nil
}

func (r *memoryRepo[E]) Insert(_ context.Context, e E) error {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.byID[e.Meta().ID]; ok {
		return domain.ErrDuplicateKey
	}
	r.byID[e.Meta().ID] = r.clone(e)
	return nil
}

func (r *memoryRepo[E]) ConditionalReplace(_ context.Context, id string, expected int, e E) (E, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var zero E
	if r.replaceErr != nil {
		return zero, r.replaceErr
	}
	cur, ok := r.byID[id]
	if !ok {
		return zero, domain.ErrEntityNotFound
	}
	if cur.Meta().Version != expected {
		return zero, &domain.VersionError{Kind: domain.ErrVersionStale, Current: cur.Meta().Version}
	}
	next := r.clone(e)
	next.Meta().Version = expected + 1
	r.byID[id] = next
	return r.clone(next), nil
}

func (r *memoryRepo[E]) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

func (r *memoryRepo[E]) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/docpath"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/mapping"
)

// store is the consumer interface for entity documents (ISP).
type store interface {
	FindOne(ctx context.Context, collection string, id any) (map[string]any, error)
	Find(ctx context.Context, collection string, offset, limit int) ([]map[string]any, error)
	Count(ctx context.Context, collection string) (int, error)
	Save(ctx context.Context, collection string, id any, doc map[string]any) error
	Delete(ctx context.Context, collection string, id any) error
}

// invalidator drops cached copies of a document.
type invalidator interface {
	Invalidate(ctx context.Context, collection string, id any)
}

// Repo stores entities as documents through the converter.
type Repo struct {
	store store
	conv  *mapping.Converter
	cache invalidator
}

// New creates an entity repository. cache may be nil.
func New(s store, conv *mapping.Converter, cache invalidator) *Repo {
	return &Repo{store: s, conv: conv, cache: cache}
}

// Get loads and converts the named entity.
func (r *Repo) Get(ctx context.Context, name string, id string) (domentity.Entity, error) {
	t, err := r.conv.Registry().Lookup(name)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	doc, err := r.store.FindOne(ctx, t.Collection, id)
	if err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			return nil, &domain.NotFoundError{Collection: t.Collection, ID: id}
		}
		return nil, fmt.Errorf("find %s/%s: %w", t.Collection, id, err)
	}
	return r.conv.Read(ctx, name, doc) //nolint:wrapcheck // converter errors carry context
}

// GetMany loads entities in the order of ids. Missing ids are skipped.
func (r *Repo) GetMany(ctx context.Context, name string, ids []string) ([]domentity.Entity, error) {
	out := make([]domentity.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := r.Get(ctx, name, id)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) && nf.Collection == r.collection(name) && nf.ID == id {
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// List returns a page of entities and the collection total.
func (r *Repo) List(ctx context.Context, name string, offset, limit int) ([]domentity.Entity, int, error) {
	t, err := r.conv.Registry().Lookup(name)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck // domain error
	}
	docs, err := r.store.Find(ctx, t.Collection, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", t.Collection, err)
	}
	total, err := r.store.Count(ctx, t.Collection)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t.Collection, err)
	}

	out := make([]domentity.Entity, 0, len(docs))
	for _, doc := range docs {
		e, err := r.conv.Read(ctx, name, doc)
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", t.Collection, err)
		}
		out = append(out, e)
	}
	return out, total, nil
}

// Save writes bean under its id. The bean must have an id.
func (r *Repo) Save(ctx context.Context, bean domentity.Entity) error {
	t, err := r.conv.Registry().TypeOf(bean)
	if err != nil {
		return err //nolint:wrapcheck // domain error
	}
	doc, err := r.conv.Write(bean)
	if err != nil {
		return err //nolint:wrapcheck // converter errors carry context
	}
	id := docpath.Get(doc, t.ID.FieldName)
	if id == nil {
		return fmt.Errorf("save %s: %w: id is required", t.Name, domain.ErrInvalidInput)
	}
	if err := r.store.Save(ctx, t.Collection, id, doc); err != nil {
		return fmt.Errorf("save %s/%v: %w", t.Collection, id, err)
	}
	r.invalidate(ctx, t.Collection, id)
	return nil
}

// Delete removes the named entity.
func (r *Repo) Delete(ctx context.Context, name string, id string) error {
	t, err := r.conv.Registry().Lookup(name)
	if err != nil {
		return err //nolint:wrapcheck // domain error
	}
	if err := r.store.Delete(ctx, t.Collection, id); err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			return &domain.NotFoundError{Collection: t.Collection, ID: id}
		}
		return fmt.Errorf("delete %s/%s: %w", t.Collection, id, err)
	}
	r.invalidate(ctx, t.Collection, id)
	return nil
}

// Hydrate loads the stored state of a placeholder bean.
func (r *Repo) Hydrate(ctx context.Context, bean domentity.Entity) error {
	return r.conv.Hydrate(ctx, bean) //nolint:wrapcheck // converter errors carry context
}

// Decode builds an entity of the named type from a storage document,
// resolving its references.
func (r *Repo) Decode(ctx context.Context, name string, doc map[string]any) (domentity.Entity, error) {
	return r.conv.Read(ctx, name, doc) //nolint:wrapcheck // converter errors carry context
}

// Registry returns the entity registry.
func (r *Repo) Registry() *domentity.Registry { return r.conv.Registry() }

// Export renders bean as an API view.
func (r *Repo) Export(bean domentity.Entity) (map[string]any, error) {
	return r.conv.Export(bean) //nolint:wrapcheck // converter errors carry context
}

func (r *Repo) collection(name string) string {
	if t, err := r.conv.Registry().Lookup(name); err == nil {
		return t.Collection
	}
	return ""
}

func (r *Repo) invalidate(ctx context.Context, collection string, id any) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, collection, id)
	}
}

package mapping

import (
	"context"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/docpath"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/domain/objectpath"
)

// documentReader materializes a fetched document into a bean at a path.
type documentReader interface {
	readAt(ctx context.Context, t *entity.Type, doc map[string]any, path objectpath.Path) (entity.Entity, error)
}

// Resolver turns references into beans. It holds no per-conversion state.
type Resolver struct {
	registry *entity.Registry
	fetcher  Fetcher
	reader   documentReader
	values   ValueResolver
}

// Resolve returns the bean behind ref.
//
// A nil id resolves to nil. An object already on path is reused, which ends
// reference cycles. Lazy properties get an id-only placeholder. Anything else
// is fetched and read at path.
func (r *Resolver) Resolve(ctx context.Context, prop entity.Property, ref entity.Reference, path objectpath.Path) (entity.Entity, error) {
	if ref.ID == nil {
		return nil, nil
	}
	t, err := r.targetType(prop, ref)
	if err != nil {
		return nil, err
	}

	if tracked, ok := path.Lookup(ref.ID, ref.Collection); ok {
		if e, ok := tracked.(entity.Entity); ok {
			return e, nil
		}
	}

	if prop.Lazy {
		return r.PopulateID(ctx, ref, t.New())
	}

	doc, err := r.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err //nolint:wrapcheck // fetcher names the reference
	}
	if doc == nil {
		return nil, &domain.NotFoundError{Collection: ref.Collection, ID: ref.ID}
	}
	return r.reader.readAt(ctx, t, doc, path)
}

// PopulateID sets only the id of placeholder from ref and returns it.
//
// The placeholder is returned unchanged when ref has no id or when the id
// property of its type is populated by the host through property access.
func (r *Resolver) PopulateID(ctx context.Context, ref entity.Reference, placeholder entity.Entity) (entity.Entity, error) {
	if ref.ID == nil {
		return placeholder, nil
	}
	t, err := r.registry.TypeOf(placeholder)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	if t.ID.PropertyAccess {
		return placeholder, nil
	}

	pseudo := map[string]any{}
	docpath.Put(pseudo, t.ID.FieldName, ref.ID)
	path := objectpath.Root.Push(placeholder, ref.Collection, nil)

	id, err := NewCallback(pseudo, path, r.values).Resolve(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve id of %s: %w", ref, err)
	}
	acc := entity.NewConvertingAccessor(entity.NewBeanAccessor(t, placeholder))
	if err := acc.SetProperty(t.ID, id); err != nil {
		return nil, fmt.Errorf("populate id of %s: %w", ref, err)
	}
	return placeholder, nil
}

func (r *Resolver) targetType(prop entity.Property, ref entity.Reference) (*entity.Type, error) {
	t, err := r.registry.ByCollection(ref.Collection)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	if prop.Target != "" && prop.Target != t.Name {
		return nil, &domain.FormatError{Expected: "reference to " + prop.Target, Got: "reference to " + t.Name}
	}
	return t, nil
}

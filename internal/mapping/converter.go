// Package mapping converts between stored documents and entity object graphs.
package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/docpath"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/domain/geojson"
	"github.com/digitalbridge/mongoes/internal/domain/objectpath"
)

// Converter reads documents into beans and writes beans back to documents.
// It is safe for concurrent use; each Read owns its own object path.
type Converter struct {
	registry *entity.Registry
	fetcher  Fetcher
	resolver *Resolver
}

// NewConverter creates a converter that dereferences through fetcher.
func NewConverter(registry *entity.Registry, fetcher Fetcher) *Converter {
	c := &Converter{registry: registry, fetcher: fetcher}
	c.resolver = &Resolver{registry: registry, fetcher: fetcher, reader: c, values: c}
	return c
}

// Registry returns the entity registry.
func (c *Converter) Registry() *entity.Registry { return c.registry }

// Resolver returns the reference resolver.
func (c *Converter) Resolver() *Resolver { return c.resolver }

// Strategy names the fetch strategy in use.
func (c *Converter) Strategy() string { return c.fetcher.Strategy() }

// Read builds a bean of the named type from doc.
func (c *Converter) Read(ctx context.Context, typeName string, doc map[string]any) (entity.Entity, error) {
	t, err := c.registry.Lookup(typeName)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	return c.readAt(ctx, t, doc, objectpath.Root)
}

// Hydrate fetches the stored document of a placeholder and fills it in place.
func (c *Converter) Hydrate(ctx context.Context, bean entity.Entity) error {
	t, err := c.registry.TypeOf(bean)
	if err != nil {
		return err //nolint:wrapcheck // domain error
	}
	id, err := entity.NewBeanAccessor(t, bean).GetProperty(t.ID)
	if err != nil {
		return err //nolint:wrapcheck // accessor error carries context
	}
	if isZero(id) {
		return fmt.Errorf("hydrate %s: %w: bean has no id", t.Name, domain.ErrInvalidInput)
	}
	ref := entity.Reference{Collection: t.Collection, ID: id}
	doc, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		return err //nolint:wrapcheck // fetcher names the reference
	}
	if doc == nil {
		return &domain.NotFoundError{Collection: ref.Collection, ID: ref.ID}
	}
	return c.populate(ctx, t, bean, doc, objectpath.Root)
}

func (c *Converter) readAt(ctx context.Context, t *entity.Type, doc map[string]any, path objectpath.Path) (entity.Entity, error) {
	bean := t.New()
	if err := c.populate(ctx, t, bean, doc, path); err != nil {
		return nil, err
	}
	return bean, nil
}

// populate sets the id first and tracks the bean on path before resolving
// properties, so references back to it resolve to the same instance.
func (c *Converter) populate(ctx context.Context, t *entity.Type, bean entity.Entity, doc map[string]any, path objectpath.Path) error {
	acc := entity.NewConvertingAccessor(entity.NewBeanAccessor(t, bean))

	id := docpath.Get(doc, t.ID.FieldName)
	if id != nil {
		if err := acc.SetProperty(t.ID, id); err != nil {
			return fmt.Errorf("read %s: %w", t.Name, err)
		}
	}
	path = path.Push(bean, t.Collection, id)

	cb := NewCallback(doc, path, c)
	for _, p := range t.Properties {
		v, err := cb.Resolve(ctx, p)
		if err != nil {
			return fmt.Errorf("read %s.%s: %w", t.Name, p.Name, err)
		}
		if v == nil {
			continue
		}
		if err := acc.SetProperty(p, v); err != nil {
			return fmt.Errorf("read %s: %w", t.Name, err)
		}
	}
	return nil
}

// ResolveValue implements ValueResolver.
func (c *Converter) ResolveValue(ctx context.Context, prop entity.Property, doc map[string]any, path objectpath.Path) (any, error) {
	raw := docpath.Get(doc, prop.FieldName)
	if raw == nil {
		return nil, nil
	}

	switch prop.Kind {
	case entity.KindGeo:
		return decodeGeo(prop, raw)

	case entity.KindReference:
		ref, err := entity.ParseReference(raw)
		if err != nil {
			return nil, err //nolint:wrapcheck // domain error
		}
		e, err := c.resolver.Resolve(ctx, prop, ref, path)
		if err != nil || e == nil {
			return nil, err
		}
		return e, nil

	case entity.KindReferenceList:
		items, ok := raw.([]any)
		if !ok {
			return nil, &domain.FormatError{Expected: "list of DBRef", Got: fmt.Sprintf("%T", raw)}
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			ref, err := entity.ParseReference(item)
			if err != nil {
				return nil, err //nolint:wrapcheck // domain error
			}
			e, err := c.resolver.Resolve(ctx, prop, ref, path)
			if err != nil {
				return nil, err
			}
			if e != nil {
				out = append(out, e)
			}
		}
		return out, nil

	case entity.KindEmbedded:
		sub, ok := docpath.Document(raw)
		if !ok {
			return nil, &domain.FormatError{Expected: "document", Got: fmt.Sprintf("%T", raw)}
		}
		t, err := c.registry.Lookup(prop.Target)
		if err != nil {
			return nil, err //nolint:wrapcheck // domain error
		}
		return c.readAt(ctx, t, sub, path)

	default:
		return raw, nil
	}
}

func decodeGeo(prop entity.Property, raw any) (any, error) {
	doc, ok := docpath.Document(raw)
	if !ok {
		return nil, &domain.FormatError{Expected: "GeoJSON document", Got: fmt.Sprintf("%T", raw)}
	}
	switch prop.GeoType {
	case geojson.TypePoint:
		return geojson.DecodePoint(doc) //nolint:wrapcheck // codec errors are domain errors
	case geojson.TypePolygon:
		return geojson.DecodePolygon(doc) //nolint:wrapcheck // codec errors are domain errors
	default:
		return geojson.Decode(doc) //nolint:wrapcheck // codec errors are domain errors
	}
}

// Write converts bean into its storage document. References become DBRefs.
func (c *Converter) Write(bean entity.Entity) (map[string]any, error) {
	t, err := c.registry.TypeOf(bean)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	acc := entity.NewBeanAccessor(t, bean)
	doc := map[string]any{}

	id, err := acc.GetProperty(t.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck // accessor error carries context
	}
	if !isZero(id) {
		docpath.Put(doc, t.ID.FieldName, id)
	}

	for _, p := range t.Properties {
		v, err := acc.GetProperty(p)
		if err != nil {
			return nil, err //nolint:wrapcheck // accessor error carries context
		}
		if v == nil {
			continue
		}
		out, err := c.writeValue(p, v)
		if err != nil {
			return nil, fmt.Errorf("write %s.%s: %w", t.Name, p.Name, err)
		}
		if out == nil {
			continue
		}
		docpath.Put(doc, p.FieldName, out)
	}
	return doc, nil
}

func (c *Converter) writeValue(p entity.Property, v any) (any, error) {
	switch p.Kind {
	case entity.KindGeo:
		g, ok := v.(geojson.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a geometry", entity.ErrPropertyType, v)
		}
		return geojson.Encode(g), nil

	case entity.KindReference:
		ref, err := c.ReferenceOf(v)
		if err != nil {
			return nil, err
		}
		return ref.Document(), nil

	case entity.KindReferenceList:
		items, _ := v.([]any)
		out := make([]any, 0, len(items))
		for _, item := range items {
			ref, err := c.ReferenceOf(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ref.Document())
		}
		return out, nil

	case entity.KindEmbedded:
		e, ok := v.(entity.Entity)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an entity", entity.ErrPropertyType, v)
		}
		return c.Write(e)

	default:
		if tm, ok := v.(time.Time); ok && tm.IsZero() {
			return nil, nil
		}
		return v, nil
	}
}

// ReferenceOf returns the reference that points at bean.
func (c *Converter) ReferenceOf(v any) (entity.Reference, error) {
	e, ok := v.(entity.Entity)
	if !ok {
		return entity.Reference{}, fmt.Errorf("%w: %T is not an entity", entity.ErrPropertyType, v)
	}
	t, err := c.registry.TypeOf(e)
	if err != nil {
		return entity.Reference{}, err //nolint:wrapcheck // domain error
	}
	id, err := entity.NewBeanAccessor(t, e).GetProperty(t.ID)
	if err != nil {
		return entity.Reference{}, err //nolint:wrapcheck // accessor error carries context
	}
	if isZero(id) {
		return entity.Reference{}, fmt.Errorf("%w: reference to unsaved %s", domain.ErrInvalidInput, t.Name)
	}
	return entity.Reference{Collection: t.Collection, ID: id}, nil
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

package mapping

import (
	"fmt"
	"time"

	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/domain/geojson"
)

// Export renders bean as an API view keyed by property name, with references
// inlined. A bean that is already being rendered further up (a cycle) is
// rendered as its DBRef instead.
func (c *Converter) Export(bean entity.Entity) (map[string]any, error) {
	return c.export(bean, map[entity.Entity]bool{})
}

func (c *Converter) export(bean entity.Entity, rendering map[entity.Entity]bool) (map[string]any, error) {
	t, err := c.registry.TypeOf(bean)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	rendering[bean] = true
	defer delete(rendering, bean)

	acc := entity.NewBeanAccessor(t, bean)
	view := map[string]any{}

	for _, p := range append([]entity.Property{t.ID}, t.Properties...) {
		v, err := acc.GetProperty(p)
		if err != nil {
			return nil, err //nolint:wrapcheck // accessor error carries context
		}
		if omitInView(v) {
			continue
		}
		out, err := c.exportValue(p, v, rendering)
		if err != nil {
			return nil, fmt.Errorf("export %s.%s: %w", t.Name, p.Name, err)
		}
		view[p.Name] = out
	}
	return view, nil
}

func (c *Converter) exportValue(p entity.Property, v any, rendering map[entity.Entity]bool) (any, error) {
	switch p.Kind {
	case entity.KindGeo:
		if g, ok := v.(geojson.Value); ok {
			return geojson.Encode(g), nil
		}
		return v, nil

	case entity.KindReference, entity.KindEmbedded:
		return c.exportBean(v, rendering)

	case entity.KindReferenceList:
		items, _ := v.([]any)
		out := make([]any, 0, len(items))
		for _, item := range items {
			e, err := c.exportBean(item, rendering)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil

	default:
		return v, nil
	}
}

func (c *Converter) exportBean(v any, rendering map[entity.Entity]bool) (any, error) {
	e, ok := v.(entity.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an entity", entity.ErrPropertyType, v)
	}
	if rendering[e] {
		ref, err := c.ReferenceOf(e)
		if err != nil {
			return nil, err
		}
		return ref.Document(), nil
	}
	return c.export(e, rendering)
}

func omitInView(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	default:
		return false
	}
}

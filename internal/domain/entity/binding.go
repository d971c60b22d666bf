package entity

import (
	"errors"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain/geojson"
)

// ErrPropertyType signals a value that cannot be assigned to a property.
var ErrPropertyType = errors.New("property type mismatch")

// Entity is implemented by every persistent type.
type Entity interface {
	EntityName() string
}

// Binding holds the typed get/set closures for one property.
type Binding struct {
	Get func(Entity) (any, error)
	Set func(Entity, any) error
}

// Bind binds a plain value property of *T.
func Bind[T any, V any](get func(*T) V, set func(*T, V)) Binding {
	return Binding{
		Get: func(e Entity) (any, error) {
			t, err := target[T](e)
			if err != nil {
				return nil, err
			}
			return get(t), nil
		},
		Set: func(e Entity, v any) error {
			t, err := target[T](e)
			if err != nil {
				return err
			}
			if v == nil {
				var zero V
				set(t, zero)
				return nil
			}
			val, ok := v.(V)
			if !ok {
				var zero V
				return fmt.Errorf("%w: cannot assign %T to %T", ErrPropertyType, v, zero)
			}
			set(t, val)
			return nil
		},
	}
}

// BindRef binds a single reference (or embedded entity) held as *R.
// A nil pointer reads as a nil value.
func BindRef[T any, R any](get func(*T) *R, set func(*T, *R)) Binding {
	return Binding{
		Get: func(e Entity) (any, error) {
			t, err := target[T](e)
			if err != nil {
				return nil, err
			}
			if r := get(t); r != nil {
				return r, nil
			}
			return nil, nil
		},
		Set: func(e Entity, v any) error {
			t, err := target[T](e)
			if err != nil {
				return err
			}
			if v == nil {
				set(t, nil)
				return nil
			}
			r, ok := v.(*R)
			if !ok {
				return fmt.Errorf("%w: cannot assign %T to %T", ErrPropertyType, v, (*R)(nil))
			}
			set(t, r)
			return nil
		},
	}
}

// BindList binds a list of references held as []*E.
// Reads return []any so converters can treat every list alike.
func BindList[T any, E any](get func(*T) []*E, set func(*T, []*E)) Binding {
	return Binding{
		Get: func(e Entity) (any, error) {
			t, err := target[T](e)
			if err != nil {
				return nil, err
			}
			items := get(t)
			if len(items) == 0 {
				return nil, nil
			}
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = item
			}
			return out, nil
		},
		Set: func(e Entity, v any) error {
			t, err := target[T](e)
			if err != nil {
				return err
			}
			switch items := v.(type) {
			case nil:
				set(t, nil)
			case []*E:
				set(t, items)
			case []any:
				out := make([]*E, 0, len(items))
				for i, item := range items {
					el, ok := item.(*E)
					if !ok {
						return fmt.Errorf("%w: element %d: cannot assign %T to %T",
							ErrPropertyType, i, item, (*E)(nil))
					}
					out = append(out, el)
				}
				set(t, out)
			default:
				return fmt.Errorf("%w: cannot assign %T to %T", ErrPropertyType, v, []*E(nil))
			}
			return nil
		},
	}
}

// BindPoint binds an optional GeoJSON point held as *geojson.Point.
func BindPoint[T any](get func(*T) *geojson.Point, set func(*T, *geojson.Point)) Binding {
	return Binding{
		Get: func(e Entity) (any, error) {
			t, err := target[T](e)
			if err != nil {
				return nil, err
			}
			if p := get(t); p != nil {
				return *p, nil
			}
			return nil, nil
		},
		Set: func(e Entity, v any) error {
			t, err := target[T](e)
			if err != nil {
				return err
			}
			switch p := v.(type) {
			case nil:
				set(t, nil)
			case geojson.Point:
				set(t, &p)
			case *geojson.Point:
				set(t, p)
			default:
				return fmt.Errorf("%w: cannot assign %T to a point", ErrPropertyType, v)
			}
			return nil
		},
	}
}

func target[T any](e Entity) (*T, error) {
	t, ok := any(e).(*T)
	if !ok {
		return nil, fmt.Errorf("%w: bean is %T, want %T", ErrPropertyType, e, (*T)(nil))
	}
	return t, nil
}

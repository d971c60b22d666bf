package entity

import (
	"fmt"

	"github.com/spf13/cast"
)

// PropertyAccessor reads and writes the properties of one bean.
type PropertyAccessor interface {
	GetProperty(p Property) (any, error)
	SetProperty(p Property, v any) error
	Bean() Entity
}

// BeanAccessor calls the type's bindings directly. Values must already have the property's Go type.
type BeanAccessor struct {
	typ  *Type
	bean Entity
}

// NewBeanAccessor creates an accessor for bean of type t.
func NewBeanAccessor(t *Type, bean Entity) *BeanAccessor {
	return &BeanAccessor{typ: t, bean: bean}
}

// GetProperty returns the current value of p.
func (a *BeanAccessor) GetProperty(p Property) (any, error) {
	b, ok := a.typ.Bindings[p.Name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", a.typ.Name, p.Name, ErrUnknownProperty)
	}
	v, err := b.Get(a.bean)
	if err != nil {
		return nil, fmt.Errorf("get %s.%s: %w", a.typ.Name, p.Name, err)
	}
	return v, nil
}

// SetProperty assigns v to p.
func (a *BeanAccessor) SetProperty(p Property, v any) error {
	b, ok := a.typ.Bindings[p.Name]
	if !ok {
		return fmt.Errorf("%s.%s: %w", a.typ.Name, p.Name, ErrUnknownProperty)
	}
	if err := b.Set(a.bean, v); err != nil {
		return fmt.Errorf("set %s.%s: %w", a.typ.Name, p.Name, err)
	}
	return nil
}

// Bean returns the wrapped bean.
func (a *BeanAccessor) Bean() Entity { return a.bean }

// ConvertingAccessor coerces values to the property's declared ValueType before delegating.
type ConvertingAccessor struct {
	inner PropertyAccessor
}

// NewConvertingAccessor wraps inner with value coercion.
func NewConvertingAccessor(inner PropertyAccessor) *ConvertingAccessor {
	return &ConvertingAccessor{inner: inner}
}

// GetProperty returns the raw value of p.
func (a *ConvertingAccessor) GetProperty(p Property) (any, error) {
	return a.inner.GetProperty(p) //nolint:wrapcheck // already wrapped by the inner accessor
}

// GetPropertyAs returns the value of p coerced to vt.
func (a *ConvertingAccessor) GetPropertyAs(p Property, vt ValueType) (any, error) {
	v, err := a.inner.GetProperty(p)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the inner accessor
	}
	out, err := Convert(v, vt)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", p.Name, err)
	}
	return out, nil
}

// SetProperty coerces v to p.Value for scalar properties and assigns it.
func (a *ConvertingAccessor) SetProperty(p Property, v any) error {
	if p.Kind == KindScalar {
		converted, err := Convert(v, p.Value)
		if err != nil {
			return fmt.Errorf("convert %s: %w", p.Name, err)
		}
		v = converted
	}
	return a.inner.SetProperty(p, v) //nolint:wrapcheck // already wrapped by the inner accessor
}

// Bean returns the wrapped bean.
func (a *ConvertingAccessor) Bean() Entity { return a.inner.Bean() }

// Convert coerces v to vt. Nil stays nil.
func Convert(v any, vt ValueType) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		err error
	)
	switch vt {
	case ValueString:
		out, err = cast.ToStringE(v)
	case ValueInt64:
		out, err = cast.ToInt64E(v)
	case ValueFloat64:
		out, err = cast.ToFloat64E(v)
	case ValueBool:
		out, err = cast.ToBoolE(v)
	case ValueTime:
		out, err = cast.ToTimeE(v)
	case ValueStringList:
		out, err = cast.ToStringSliceE(v)
	default:
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPropertyType, err)
	}
	return out, nil
}

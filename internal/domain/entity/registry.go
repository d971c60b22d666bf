package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/digitalbridge/mongoes/internal/domain"
)

// ErrUnknownProperty signals a property with no binding on its type.
var ErrUnknownProperty = errors.New("unknown property")

// Type is the persistent metadata of one entity type.
type Type struct {
	Name       string
	Collection string
	ID         Property
	Properties []Property
	New        func() Entity
	Bindings   map[string]Binding
}

// Property returns the property with the given accessor name.
func (t *Type) Property(name string) (Property, bool) {
	if t.ID.Name == name {
		return t.ID, true
	}
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

func (t *Type) validate() error {
	if t.Name == "" {
		return errors.New("entity type name is required")
	}
	if t.Collection == "" {
		return fmt.Errorf("entity %s: collection is required", t.Name)
	}
	if t.New == nil {
		return fmt.Errorf("entity %s: factory is required", t.Name)
	}
	if t.ID.Name == "" || t.ID.FieldName == "" {
		return fmt.Errorf("entity %s: id property is required", t.Name)
	}
	seen := map[string]struct{}{t.ID.Name: {}}
	for _, p := range append([]Property{t.ID}, t.Properties...) {
		if _, ok := t.Bindings[p.Name]; !ok {
			return fmt.Errorf("entity %s: property %s: %w", t.Name, p.Name, ErrUnknownProperty)
		}
		if p.FieldName == "" {
			return fmt.Errorf("entity %s: property %s: field name is required", t.Name, p.Name)
		}
		if (p.IsAssociation() || p.Kind == KindEmbedded) && p.Target == "" {
			return fmt.Errorf("entity %s: property %s: target is required for %s", t.Name, p.Name, p.Kind)
		}
		if p.Name == t.ID.Name {
			continue
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("entity %s: duplicate property %s", t.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Registry holds the entity types known to the converter. It is read-only after construction.
type Registry struct {
	byName       map[string]*Type
	byCollection map[string]*Type
}

// NewRegistry validates and indexes the given types.
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{
		byName:       make(map[string]*Type, len(types)),
		byCollection: make(map[string]*Type, len(types)),
	}
	for _, t := range types {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("entity %s registered twice", t.Name)
		}
		if _, dup := r.byCollection[t.Collection]; dup {
			return nil, fmt.Errorf("collection %s registered twice", t.Collection)
		}
		r.byName[t.Name] = t
		r.byCollection[t.Collection] = t
	}
	for _, t := range types {
		for _, p := range t.Properties {
			if p.Target == "" {
				continue
			}
			if _, ok := r.byName[p.Target]; !ok {
				return nil, fmt.Errorf("entity %s: property %s targets unregistered %s", t.Name, p.Name, p.Target)
			}
		}
	}
	return r, nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEntity, name)
	}
	return t, nil
}

// ByCollection returns the type stored in collection.
func (r *Registry) ByCollection(collection string) (*Type, error) {
	t, ok := r.byCollection[collection]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s", domain.ErrUnknownEntity, collection)
	}
	return t, nil
}

// TypeOf returns the type of a bean.
func (r *Registry) TypeOf(e Entity) (*Type, error) {
	return r.Lookup(e.EntityName())
}

// Accessor returns a converting accessor for a bean.
func (r *Registry) Accessor(e Entity) (*ConvertingAccessor, error) {
	t, err := r.TypeOf(e)
	if err != nil {
		return nil, err
	}
	return NewConvertingAccessor(NewBeanAccessor(t, e)), nil
}

// Names returns the registered entity names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Package entity provides CRUD over the registered entity types, exchanging
// entities as views keyed by property name.
package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/docpath"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

// Page is one page of a listing.
type Page struct {
	Items  []map[string]any
	Total  int
	Offset int
	Limit  int
}

// Service handles entity CRUD.
type Service struct {
	repo            Repository
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

// New creates an entity service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		newID:           uuid.NewString,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Names lists the entity names the service accepts.
func (s *Service) Names() []string { return s.repo.Registry().Names() }

// Get returns the view of one entity. With expand, lazy references are
// loaded instead of rendered as id-only placeholders.
func (s *Service) Get(ctx context.Context, name, id string, expand bool) (map[string]any, error) {
	bean, err := s.repo.Get(ctx, name, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	if expand {
		if err := s.expand(ctx, bean); err != nil {
			return nil, fmt.Errorf("expand %s/%s: %w", name, id, err)
		}
	}
	return s.repo.Export(bean) //nolint:wrapcheck // converter errors carry context
}

// Views renders already loaded beans, for example search results.
func (s *Service) Views(beans []domentity.Entity) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(beans))
	for _, b := range beans {
		v, err := s.repo.Export(b)
		if err != nil {
			return nil, err //nolint:wrapcheck // converter errors carry context
		}
		out = append(out, v)
	}
	return out, nil
}

// List returns a page of entity views.
func (s *Service) List(ctx context.Context, name string, offset, limit int) (*Page, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	beans, total, err := s.repo.List(ctx, name, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", name, err)
	}
	page := &Page{Items: make([]map[string]any, 0, len(beans)), Total: total, Offset: offset, Limit: limit}
	for _, b := range beans {
		v, err := s.repo.Export(b)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		page.Items = append(page.Items, v)
	}
	return page, nil
}

// Create stores a new entity from view. A missing id is generated.
func (s *Service) Create(ctx context.Context, name string, view map[string]any) (map[string]any, error) {
	t, err := s.repo.Registry().Lookup(name)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	if id, ok := view[t.ID.Name]; !ok || id == nil || id == "" {
		view = withID(view, t.ID.Name, s.newID())
	}
	return s.store(ctx, t, view)
}

// Update replaces an existing entity with view.
func (s *Service) Update(ctx context.Context, name, id string, view map[string]any) (map[string]any, error) {
	t, err := s.repo.Registry().Lookup(name)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	if v, ok := view[t.ID.Name]; ok && v != nil && fmt.Sprint(v) != id {
		return nil, fmt.Errorf("%w: body id %v does not match %s", domain.ErrInvalidInput, v, id)
	}
	if _, err := s.repo.Get(ctx, name, id); err != nil {
		return nil, fmt.Errorf("update %s: %w", name, err)
	}
	return s.store(ctx, t, withID(view, t.ID.Name, id))
}

// Delete removes an entity.
func (s *Service) Delete(ctx context.Context, name, id string) error {
	if err := s.repo.Delete(ctx, name, id); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *Service) store(ctx context.Context, t *domentity.Type, view map[string]any) (map[string]any, error) {
	doc, err := s.toDocument(t, view)
	if err != nil {
		return nil, err
	}
	bean, err := s.repo.Decode(ctx, t.Name, doc)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: referenced %s/%v does not exist", domain.ErrInvalidInput, nf.Collection, nf.ID)
		}
		if errors.Is(err, domain.ErrFormat) || errors.Is(err, domentity.ErrPropertyType) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("decode %s: %w", t.Name, err)
	}
	if err := s.repo.Save(ctx, bean); err != nil {
		return nil, fmt.Errorf("save %s: %w", t.Name, err)
	}
	return s.repo.Export(bean) //nolint:wrapcheck // converter errors carry context
}

// toDocument maps a view keyed by property name onto the storage document.
// References may be given as DBRefs, as objects carrying the target id, or as
// the bare id.
func (s *Service) toDocument(t *domentity.Type, view map[string]any) (map[string]any, error) {
	known := map[string]bool{t.ID.Name: true}
	for _, p := range t.Properties {
		known[p.Name] = true
	}
	for k := range view {
		if !known[k] {
			return nil, fmt.Errorf("%w: %s has no property %q", domain.ErrInvalidInput, t.Name, k)
		}
	}

	doc := map[string]any{}
	if id := view[t.ID.Name]; id != nil {
		docpath.Put(doc, t.ID.FieldName, id)
	}
	for _, p := range t.Properties {
		v := view[p.Name]
		if v == nil {
			continue
		}
		out, err := s.fieldValue(p, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, p.Name, err)
		}
		docpath.Put(doc, p.FieldName, out)
	}
	return doc, nil
}

func (s *Service) fieldValue(p domentity.Property, v any) (any, error) {
	switch p.Kind {
	case domentity.KindReference:
		return s.reference(p.Target, v)

	case domentity.KindReferenceList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list of references", domain.ErrInvalidInput)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			ref, err := s.reference(p.Target, item)
			if err != nil {
				return nil, err
			}
			out = append(out, ref)
		}
		return out, nil

	case domentity.KindEmbedded:
		sub, ok := docpath.Document(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected an object", domain.ErrInvalidInput)
		}
		t, err := s.repo.Registry().Lookup(p.Target)
		if err != nil {
			return nil, err //nolint:wrapcheck // domain error
		}
		return s.toDocument(t, sub)

	default:
		return v, nil
	}
}

func (s *Service) reference(target string, v any) (map[string]any, error) {
	t, err := s.repo.Registry().Lookup(target)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain error
	}
	var id any
	switch x := v.(type) {
	case map[string]any:
		if _, ok := x[domentity.RefKey]; ok {
			ref, err := domentity.ParseReference(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
			}
			if ref.Collection != t.Collection {
				return nil, fmt.Errorf("%w: reference to %s, want %s", domain.ErrInvalidInput, ref.Collection, t.Collection)
			}
			id = ref.ID
		} else {
			id = x[t.ID.Name]
		}
	case []any:
		return nil, fmt.Errorf("%w: expected a single reference", domain.ErrInvalidInput)
	default:
		id = x
	}
	if id == nil || id == "" {
		return nil, fmt.Errorf("%w: reference to %s without id", domain.ErrInvalidInput, target)
	}
	return domentity.Reference{Collection: t.Collection, ID: id}.Document(), nil
}

// expand hydrates the lazy references of bean.
func (s *Service) expand(ctx context.Context, bean domentity.Entity) error {
	t, err := s.repo.Registry().TypeOf(bean)
	if err != nil {
		return err //nolint:wrapcheck // domain error
	}
	acc := domentity.NewBeanAccessor(t, bean)
	for _, p := range t.Properties {
		if !p.Lazy || !p.IsAssociation() {
			continue
		}
		v, err := acc.GetProperty(p)
		if err != nil {
			return err //nolint:wrapcheck // accessor error carries context
		}
		for _, target := range beans(v) {
			if err := s.repo.Hydrate(ctx, target); err != nil {
				return err //nolint:wrapcheck // converter errors carry context
			}
		}
	}
	return nil
}

func beans(v any) []domentity.Entity {
	switch x := v.(type) {
	case domentity.Entity:
		return []domentity.Entity{x}
	case []any:
		out := make([]domentity.Entity, 0, len(x))
		for _, item := range x {
			if e, ok := item.(domentity.Entity); ok {
				out = append(out, e)
			}
		}
		return out
	default:
		return nil
	}
}

func withID(view map[string]any, key string, id any) map[string]any {
	out := make(map[string]any, len(view)+1)
	for k, v := range view {
		out[k] = v
	}
	out[key] = id
	return out
}

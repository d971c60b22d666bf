package mongoes

import (
	"context"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain/asset"
	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
)

// Entity names accepted by EntityService.
const (
	EntityAssetWrapper = asset.EntityAssetWrapper
	EntityAddress      = asset.EntityAddress
	EntityNote         = asset.EntityNote
	EntityUser         = asset.EntityUser
)

// View is an entity keyed by property name. References are inlined; a
// reference back to an entity already being rendered appears as
// {"$ref": collection, "$id": id}.
type View = map[string]any

// Page is one page of an entity listing.
type Page struct {
	Items  []View
	Total  int
	Offset int
	Limit  int
}

// EntityService provides CRUD over the registered entities.
type EntityService struct {
	svc *entityuc.Service
}

// Names lists the entity names.
func (s *EntityService) Names() []string { return s.svc.Names() }

// Get returns one entity. With expand, lazy references are loaded.
func (s *EntityService) Get(ctx context.Context, name, id string, expand bool) (View, error) {
	v, err := s.svc.Get(ctx, name, id, expand)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return v, nil
}

// List returns a page of entities. A zero limit uses the default page size.
func (s *EntityService) List(ctx context.Context, name string, offset, limit int) (*Page, error) {
	p, err := s.svc.List(ctx, name, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return &Page{Items: p.Items, Total: p.Total, Offset: p.Offset, Limit: p.Limit}, nil
}

// Create stores a new entity. References may be DBRefs, objects carrying
// the target id, or bare ids.
func (s *EntityService) Create(ctx context.Context, name string, v View) (View, error) {
	out, err := s.svc.Create(ctx, name, v)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return out, nil
}

// Update replaces an existing entity.
func (s *EntityService) Update(ctx context.Context, name, id string, v View) (View, error) {
	out, err := s.svc.Update(ctx, name, id, v)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	return out, nil
}

// Delete removes an entity.
func (s *EntityService) Delete(ctx context.Context, name, id string) error {
	if err := s.svc.Delete(ctx, name, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

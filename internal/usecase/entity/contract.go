package entity

import (
	"context"

	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

// Repository defines the storage contract for entities.
type Repository interface {
	Get(ctx context.Context, name string, id string) (domentity.Entity, error)
	List(ctx context.Context, name string, offset, limit int) ([]domentity.Entity, int, error)
	Save(ctx context.Context, bean domentity.Entity) error
	Delete(ctx context.Context, name string, id string) error
	Hydrate(ctx context.Context, bean domentity.Entity) error
	Decode(ctx context.Context, name string, doc map[string]any) (domentity.Entity, error)
	Export(bean domentity.Entity) (map[string]any, error)
	Registry() *domentity.Registry
}

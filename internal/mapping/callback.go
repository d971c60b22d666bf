package mapping

import (
	"context"

	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/domain/objectpath"
)

// ValueResolver resolves the value of one property out of a source document.
// path holds the objects already materialized by the running conversion.
type ValueResolver interface {
	ResolveValue(ctx context.Context, prop entity.Property, doc map[string]any, path objectpath.Path) (any, error)
}

// Callback binds a document and a path to a ValueResolver so properties can be
// resolved one at a time.
type Callback struct {
	doc    map[string]any
	path   objectpath.Path
	values ValueResolver
}

// NewCallback creates a callback over doc at path.
func NewCallback(doc map[string]any, path objectpath.Path, values ValueResolver) *Callback {
	return &Callback{doc: doc, path: path, values: values}
}

// Resolve returns the value of prop.
func (c *Callback) Resolve(ctx context.Context, prop entity.Property) (any, error) {
	return c.values.ResolveValue(ctx, prop, c.doc, c.path) //nolint:wrapcheck // resolver errors carry context
}

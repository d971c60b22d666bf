package mapping

import (
	"context"
	"fmt"
	"testing"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
)

// fakeStore serves documents keyed by "collection/id" and counts lookups.
type fakeStore struct {
	docs  map[string]map[string]any
	calls int
}

func (f *fakeStore) FindOne(_ context.Context, collection string, id any) (map[string]any, error) {
	f.calls++
	doc, ok := f.docs[fmt.Sprintf("%s/%v", collection, id)]
	if !ok {
		return nil, db.ErrDocumentNotFound
	}
	return doc, nil
}

// fakeDirectStore also dereferences directly.
type fakeDirectStore struct {
	*fakeStore
	direct int
}

func (f *fakeDirectStore) FetchReference(ctx context.Context, collection string, id any) (map[string]any, error) {
	f.direct++
	return f.FindOne(ctx, collection, id)
}

func assetRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	r, err := asset.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

// left and right reference each other eagerly.
type left struct {
	ID    string
	Label string
	Right *right
}

func (*left) EntityName() string { return "left" }

type right struct {
	ID   string
	Left *left
}

func (*right) EntityName() string { return "right" }

// keyed has an id populated by the host.
type keyed struct {
	Key string
}

func (*keyed) EntityName() string { return "keyed" }

func graphRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	idProp := entity.Property{Name: "id", FieldName: "_id", Value: entity.ValueString}

	leftType := &entity.Type{
		Name:       "left",
		Collection: "lefts",
		ID:         idProp,
		Properties: []entity.Property{
			{Name: "label", FieldName: "meta.label", Value: entity.ValueString},
			{Name: "right", FieldName: "right", Kind: entity.KindReference, Target: "right"},
		},
		New: func() entity.Entity { return &left{} },
		Bindings: map[string]entity.Binding{
			"id":    entity.Bind(func(l *left) string { return l.ID }, func(l *left, v string) { l.ID = v }),
			"label": entity.Bind(func(l *left) string { return l.Label }, func(l *left, v string) { l.Label = v }),
			"right": entity.BindRef(func(l *left) *right { return l.Right }, func(l *left, v *right) { l.Right = v }),
		},
	}
	rightType := &entity.Type{
		Name:       "right",
		Collection: "rights",
		ID:         idProp,
		Properties: []entity.Property{
			{Name: "left", FieldName: "left", Kind: entity.KindReference, Target: "left"},
		},
		New: func() entity.Entity { return &right{} },
		Bindings: map[string]entity.Binding{
			"id":   entity.Bind(func(r *right) string { return r.ID }, func(r *right, v string) { r.ID = v }),
			"left": entity.BindRef(func(r *right) *left { return r.Left }, func(r *right, v *left) { r.Left = v }),
		},
	}
	keyedType := &entity.Type{
		Name:       "keyed",
		Collection: "keyed",
		ID:         entity.Property{Name: "key", FieldName: "_id", Value: entity.ValueString, PropertyAccess: true},
		New:        func() entity.Entity { return &keyed{} },
		Bindings: map[string]entity.Binding{
			"key": entity.Bind(func(k *keyed) string { return k.Key }, func(k *keyed, v string) { k.Key = v }),
		},
	}

	r, err := entity.NewRegistry(leftType, rightType, keyedType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func ref(collection string, id any) map[string]any {
	return map[string]any{entity.RefKey: collection, entity.IDKey: id}
}

// restaurantStore holds one asset with an address and two notes pointing back at it.
func restaurantStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]any{
		"assetwrapper/a1": restaurantDoc(),
		"address/ad1": {
			"_id":      "ad1",
			"building": "1007",
			"street":   "Morris Park Ave",
			"zipcode":  "10462",
			"location": map[string]any{"type": "Point", "coordinates": []any{-73.856077, 40.848447}},
		},
		"notes/n1": {"_id": "n1", "note": "great bread", "score": float64(5), "asset": ref("assetwrapper", "a1")},
		"notes/n2": {"_id": "n2", "note": "slow service", "score": int32(2), "asset": ref("assetwrapper", "a1")},
	}}
}

func restaurantDoc() map[string]any {
	return map[string]any{
		"_id":      "a1",
		"aName":    "Morris Park Bake Shop",
		"cuisine":  "Bakery",
		"borough":  "Bronx",
		"lDate":    "2024-03-01T00:00:00Z",
		"address":  ref("address", "ad1"),
		"notes":    []any{ref("notes", "n1"), ref("notes", "n2")},
		"unmapped": "ignored",
	}
}

package entity

import (
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain"
)

// DBRef document keys.
const (
	RefKey = "$ref"
	IDKey  = "$id"
)

// Reference points at a document in another collection.
type Reference struct {
	Collection string
	ID         any
}

// Document returns the DBRef form {"$ref": collection, "$id": id}.
func (r Reference) Document() map[string]any {
	return map[string]any{RefKey: r.Collection, IDKey: r.ID}
}

func (r Reference) String() string { return fmt.Sprintf("%s/%v", r.Collection, r.ID) }

// ParseReference reads a DBRef document. A missing $id yields a reference with a nil ID.
func ParseReference(raw any) (Reference, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return Reference{}, &domain.FormatError{Expected: "DBRef", Got: fmt.Sprintf("%T", raw)}
	}
	coll, ok := doc[RefKey].(string)
	if !ok || coll == "" {
		return Reference{}, &domain.FormatError{Expected: "DBRef", Got: "document without $ref"}
	}
	return Reference{Collection: coll, ID: doc[IDKey]}, nil
}

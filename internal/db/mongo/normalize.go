package mongo

import (
	"fmt"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/digitalbridge/mongoes/internal/db"
)

// documentID converts an entity id into the stored _id. 24-hex strings become ObjectIDs.
func documentID(id any) (any, error) {
	switch v := id.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", db.ErrInvalidID)
	case bson.ObjectID:
		return v, nil
	case int, int32, int64:
		return v, nil
	}
	s, err := cast.ToStringE(id)
	if err != nil || s == "" {
		return nil, fmt.Errorf("%w: %v", db.ErrInvalidID, id)
	}
	return objectIDOr(s), nil
}

func objectIDOr(s string) any {
	if len(s) != 24 {
		return s
	}
	if oid, err := bson.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

// normalize turns driver types into the plain shapes the mapping layer expects.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().UTC()
	case int32:
		return int64(t)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = normalize(v)
	}
	return out
}

// denormalize prepares a document for the driver. DBRef documents keep $ref before $id.
func denormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := t["$ref"]; ok {
			id := t["$id"]
			if s, ok := id.(string); ok {
				id = objectIDOr(s)
			}
			return bson.D{{Key: "$ref", Value: ref}, {Key: "$id", Value: id}}
		}
		return denormalizeMap(t)
	case []any:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = denormalize(e)
		}
		return out
	case []map[string]any:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = denormalize(e)
		}
		return out
	default:
		return v
	}
}

func denormalizeMap(m map[string]any) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = denormalize(v)
	}
	return out
}

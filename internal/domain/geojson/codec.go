package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain"
)

// Document keys.
const (
	KeyType        = "type"
	KeyCoordinates = "coordinates"
	KeyGeometries  = "geometries"
)

// Encode converts a value into its GeoJSON document form.
// Positions are flattened into [x, y] arrays.
func Encode(v Value) map[string]any {
	doc := map[string]any{KeyType: v.Type()}
	if gc, ok := v.(GeometryCollection); ok {
		members := make([]any, len(gc.geometries))
		for i, g := range gc.geometries {
			members[i] = Encode(g)
		}
		doc[KeyGeometries] = members
		return doc
	}
	doc[KeyCoordinates] = flatten(coordinatesOf(v))
	return doc
}

// coordinatesOf returns the raw coordinate structure of a non-collection value.
func coordinatesOf(v Value) any {
	switch g := v.(type) {
	case Point:
		return g
	case MultiPoint:
		return g.points
	case LineString:
		return g.points
	case Polygon:
		return [][]Point{g.ring}
	default:
		return nil
	}
}

func flatten(v any) any {
	switch c := v.(type) {
	case Point:
		return []any{c.X, c.Y}
	case GeometryCollection:
		return Encode(c)
	case Value:
		return flatten(coordinatesOf(c))
	case []Point:
		out := make([]any, len(c))
		for i, p := range c {
			out[i] = flatten(p)
		}
		return out
	case [][]Point:
		out := make([]any, len(c))
		for i, ring := range c {
			out[i] = flatten(ring)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = flatten(e)
		}
		return out
	default:
		return v
	}
}

// Decode converts a GeoJSON document into the value named by its type tag.
func Decode(doc map[string]any) (Value, error) {
	tag, _ := doc[KeyType].(string)
	switch tag {
	case TypePoint:
		return DecodePoint(doc)
	case TypeMultiPoint:
		return DecodeMultiPoint(doc)
	case TypeLineString:
		return DecodeLineString(doc)
	case TypePolygon:
		return DecodePolygon(doc)
	case TypeGeometryCollection:
		return DecodeGeometryCollection(doc)
	default:
		return nil, &domain.FormatError{Expected: "GeoJSON geometry", Got: typeName(doc)}
	}
}

// DecodePoint reads a Point document.
func DecodePoint(doc map[string]any) (Point, error) {
	if err := expectType(doc, TypePoint); err != nil {
		return Point{}, err
	}
	return toPoint(doc[KeyCoordinates])
}

// DecodeMultiPoint reads a MultiPoint document.
func DecodeMultiPoint(doc map[string]any) (MultiPoint, error) {
	if err := expectType(doc, TypeMultiPoint); err != nil {
		return MultiPoint{}, err
	}
	points, err := toPoints(doc[KeyCoordinates])
	if err != nil {
		return MultiPoint{}, err
	}
	return NewMultiPoint(points...)
}

// DecodeLineString reads a LineString document.
func DecodeLineString(doc map[string]any) (LineString, error) {
	if err := expectType(doc, TypeLineString); err != nil {
		return LineString{}, err
	}
	points, err := toPoints(doc[KeyCoordinates])
	if err != nil {
		return LineString{}, err
	}
	return NewLineString(points...)
}

// DecodePolygon reads a Polygon document. Only the first (exterior) ring is kept.
func DecodePolygon(doc map[string]any) (Polygon, error) {
	if err := expectType(doc, TypePolygon); err != nil {
		return Polygon{}, err
	}
	rings, ok := toSlice(doc[KeyCoordinates])
	if !ok || len(rings) == 0 {
		return Polygon{}, fmt.Errorf("%w: polygon has no rings", domain.ErrFormat)
	}
	ring, err := toPoints(rings[0])
	if err != nil {
		return Polygon{}, err
	}
	return NewPolygon(ring...)
}

// DecodeGeometryCollection reads a GeometryCollection document.
func DecodeGeometryCollection(doc map[string]any) (GeometryCollection, error) {
	if err := expectType(doc, TypeGeometryCollection); err != nil {
		return GeometryCollection{}, err
	}
	raw, ok := toSlice(doc[KeyGeometries])
	if !ok {
		return GeometryCollection{}, fmt.Errorf("%w: geometries must be a list", domain.ErrFormat)
	}
	members := make([]Value, 0, len(raw))
	for i, m := range raw {
		md, ok := m.(map[string]any)
		if !ok {
			return GeometryCollection{}, fmt.Errorf("%w: geometry %d is not a document", domain.ErrFormat, i)
		}
		v, err := Decode(md)
		if err != nil {
			return GeometryCollection{}, fmt.Errorf("geometry %d: %w", i, err)
		}
		members = append(members, v)
	}
	return NewGeometryCollection(members...)
}

func expectType(doc map[string]any, want string) error {
	if got, _ := doc[KeyType].(string); got != want {
		return &domain.FormatError{Expected: want, Got: typeName(doc)}
	}
	return nil
}

func typeName(doc map[string]any) string {
	if doc == nil {
		return "<nil>"
	}
	switch t := doc[KeyType].(type) {
	case nil:
		return "<missing>"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toPoints(v any) ([]Point, error) {
	raw, ok := toSlice(v)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of positions, got %T", domain.ErrFormat, v)
	}
	points := make([]Point, len(raw))
	for i, p := range raw {
		pt, err := toPoint(p)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		points[i] = pt
	}
	return points, nil
}

func toPoint(v any) (Point, error) {
	if fs, ok := v.([]float64); ok {
		if len(fs) != 2 {
			return Point{}, fmt.Errorf("%w: position needs 2 numbers, got %d", domain.ErrFormat, len(fs))
		}
		return Point{X: fs[0], Y: fs[1]}, nil
	}
	raw, ok := toSlice(v)
	if !ok || len(raw) != 2 {
		return Point{}, fmt.Errorf("%w: position needs 2 numbers, got %v", domain.ErrFormat, v)
	}
	x, err := toFloat(raw[0])
	if err != nil {
		return Point{}, err
	}
	y, err := toFloat(raw[1])
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case [][]float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case [][][]float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrFormat, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: coordinate is not a number: %T", domain.ErrFormat, v)
	}
}

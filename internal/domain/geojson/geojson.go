// Package geojson models the GeoJSON geometry values stored on asset documents
// and converts them to and from their document representation.
package geojson

import (
	"errors"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/domain"
)

// GeoJSON type tags.
const (
	TypePoint              = "Point"
	TypeLineString         = "LineString"
	TypeMultiPoint         = "MultiPoint"
	TypePolygon            = "Polygon"
	TypeGeometryCollection = "GeometryCollection"
)

// Value is a GeoJSON geometry. Type always matches the concrete variant.
type Value interface {
	Type() string
}

// Point is a single position. X is the longitude, Y the latitude.
type Point struct {
	X float64
	Y float64
}

// Type returns "Point".
func (Point) Type() string { return TypePoint }

// MultiPoint is an unordered set of at least two points.
type MultiPoint struct {
	points []Point
}

// NewMultiPoint validates and creates a MultiPoint.
func NewMultiPoint(points ...Point) (MultiPoint, error) {
	if len(points) < 2 {
		return MultiPoint{}, fmt.Errorf("%w: multipoint needs at least 2 points, got %d", domain.ErrFormat, len(points))
	}
	return MultiPoint{points: clonePoints(points)}, nil
}

// Type returns "MultiPoint".
func (MultiPoint) Type() string { return TypeMultiPoint }

// Points returns a copy of the member points.
func (m MultiPoint) Points() []Point { return clonePoints(m.points) }

// LineString is an ordered path of at least two points.
type LineString struct {
	points []Point
}

// NewLineString validates and creates a LineString.
func NewLineString(points ...Point) (LineString, error) {
	if len(points) < 2 {
		return LineString{}, fmt.Errorf("%w: linestring needs at least 2 points, got %d", domain.ErrFormat, len(points))
	}
	return LineString{points: clonePoints(points)}, nil
}

// Type returns "LineString".
func (LineString) Type() string { return TypeLineString }

// Points returns a copy of the path.
func (l LineString) Points() []Point { return clonePoints(l.points) }

// Polygon is a single closed exterior ring. Holes are not modeled.
type Polygon struct {
	ring []Point
}

// NewPolygon validates and creates a Polygon from its exterior ring.
// The ring must have at least 4 points and end where it starts.
func NewPolygon(ring ...Point) (Polygon, error) {
	if len(ring) < 4 {
		return Polygon{}, fmt.Errorf("%w: polygon ring needs at least 4 points, got %d", domain.ErrFormat, len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		return Polygon{}, fmt.Errorf("%w: polygon ring is not closed", domain.ErrFormat)
	}
	return Polygon{ring: clonePoints(ring)}, nil
}

// Type returns "Polygon".
func (Polygon) Type() string { return TypePolygon }

// Ring returns a copy of the exterior ring.
func (p Polygon) Ring() []Point { return clonePoints(p.ring) }

// Rings returns the polygon's linear rings, exterior first.
func (p Polygon) Rings() [][]Point { return [][]Point{p.Ring()} }

// GeometryCollection is an ordered list of geometries.
type GeometryCollection struct {
	geometries []Value
}

var errNilGeometry = errors.New("geometry collection member is nil")

// NewGeometryCollection validates and creates a GeometryCollection.
func NewGeometryCollection(geometries ...Value) (GeometryCollection, error) {
	for i, g := range geometries {
		if g == nil {
			return GeometryCollection{}, fmt.Errorf("%w: index %d: %w", domain.ErrFormat, i, errNilGeometry)
		}
	}
	out := make([]Value, len(geometries))
	copy(out, geometries)
	return GeometryCollection{geometries: out}, nil
}

// Type returns "GeometryCollection".
func (GeometryCollection) Type() string { return TypeGeometryCollection }

// Geometries returns a copy of the members.
func (g GeometryCollection) Geometries() []Value {
	out := make([]Value, len(g.geometries))
	copy(out, g.geometries)
	return out
}

func clonePoints(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

package geojson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/digitalbridge/mongoes/internal/domain"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestEncode_Polygon(t *testing.T) {
	p, err := NewPolygon(Point{0, 0}, Point{0, 1}, Point{1, 1}, Point{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := mustJSON(t, Encode(p))
	want := `{"coordinates":[[[0,0],[0,1],[1,1],[0,0]]],"type":"Polygon"}`
	if got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}
}

func TestDecodePolygon_FromJSON(t *testing.T) {
	var doc map[string]any
	raw := `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[0,0]]]}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	p, err := DecodePolygon(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ring := p.Ring()
	if len(ring) != 4 {
		t.Fatalf("expected 4 points, got %d", len(ring))
	}
	want := []Point{{0, 0}, {0, 1}, {1, 1}, {0, 0}}
	for i := range want {
		if ring[i] != want[i] {
			t.Errorf("ring[%d] = %v, want %v", i, ring[i], want[i])
		}
	}
}

func TestDecodePolygon_KeepsExteriorRingOnly(t *testing.T) {
	doc := map[string]any{
		"type": "Polygon",
		"coordinates": []any{
			[]any{[]any{0.0, 0.0}, []any{0.0, 10.0}, []any{10.0, 10.0}, []any{0.0, 0.0}},
			[]any{[]any{1.0, 1.0}, []any{1.0, 2.0}, []any{2.0, 2.0}, []any{1.0, 1.0}},
		},
	}
	p, err := DecodePolygon(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Rings()) != 1 {
		t.Fatalf("expected exterior ring only, got %d rings", len(p.Rings()))
	}
	if p.Ring()[1] != (Point{0, 10}) {
		t.Errorf("unexpected exterior ring: %v", p.Ring())
	}
}

func TestRoundTrip(t *testing.T) {
	poly, err := NewPolygon(Point{-73.9, 40.7}, Point{-73.8, 40.7}, Point{-73.8, 40.8}, Point{-73.9, 40.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		value Value
	}{
		{"point", Point{X: -73.856077, Y: 40.848447}},
		{"point origin", Point{}},
		{"polygon", poly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.value))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mustJSON(t, Encode(got)) != mustJSON(t, Encode(tt.value)) {
				t.Errorf("round trip mismatch: %v != %v", got, tt.value)
			}
		})
	}
}

func TestDecodePoint_WrongType(t *testing.T) {
	docs := []map[string]any{
		{"type": "Polygon", "coordinates": []any{1.0, 2.0}},
		{"coordinates": []any{1.0, 2.0}},
		{"type": 42, "coordinates": []any{1.0, 2.0}},
	}
	for _, doc := range docs {
		_, err := DecodePoint(doc)
		var fe *domain.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FormatError for %v, got %v", doc, err)
		}
		if fe.Expected != TypePoint {
			t.Errorf("Expected = %q", fe.Expected)
		}
	}
}

func TestDecodePolygon_WrongType(t *testing.T) {
	_, err := DecodePolygon(map[string]any{"type": "Point", "coordinates": []any{1.0, 2.0}})
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestDecodePoint_Numbers(t *testing.T) {
	tests := []struct {
		name   string
		coords any
	}{
		{"float64", []any{1.5, 2.0}},
		{"ints", []any{int32(1), int64(2)}},
		{"json number", []any{json.Number("1"), json.Number("2")}},
		{"typed slice", []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePoint(map[string]any{"type": "Point", "coordinates": tt.coords})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.X < 1 || p.Y != 2 {
				t.Errorf("unexpected point %v", p)
			}
		})
	}
}

func TestDecodePoint_BadCoordinates(t *testing.T) {
	bad := []any{nil, []any{1.0}, []any{"a", "b"}, "1,2", []any{1.0, 2.0, 3.0}}
	for _, c := range bad {
		_, err := DecodePoint(map[string]any{"type": "Point", "coordinates": c})
		if !errors.Is(err, domain.ErrFormat) {
			t.Errorf("coordinates %v: expected ErrFormat, got %v", c, err)
		}
	}
}

func TestEncode_GeometryCollection(t *testing.T) {
	line, _ := NewLineString(Point{0, 0}, Point{1, 1})
	gc, err := NewGeometryCollection(Point{1, 2}, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := mustJSON(t, Encode(gc))
	want := `{"geometries":[{"coordinates":[1,2],"type":"Point"},` +
		`{"coordinates":[[0,0],[1,1]],"type":"LineString"}],"type":"GeometryCollection"}`
	if got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}

	back, err := Decode(Encode(gc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	members := back.(GeometryCollection).Geometries()
	if len(members) != 2 || members[0] != (Point{1, 2}) {
		t.Errorf("unexpected members: %v", members)
	}
}

func TestDecode_MultiPointAndLineString(t *testing.T) {
	mp, err := Decode(map[string]any{
		"type":        "MultiPoint",
		"coordinates": [][]float64{{0, 0}, {3, 4}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp.(MultiPoint).Points()) != 2 {
		t.Errorf("unexpected multipoint: %v", mp)
	}

	_, err = Decode(map[string]any{"type": "LineString", "coordinates": []any{[]any{0.0, 0.0}}})
	if !errors.Is(err, domain.ErrFormat) {
		t.Errorf("expected ErrFormat for single-point linestring, got %v", err)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode(map[string]any{"type": "Circle"})
	var fe *domain.FormatError
	if !errors.As(err, &fe) || fe.Got != "Circle" {
		t.Fatalf("expected FormatError naming Circle, got %v", err)
	}
}

package docpath

import "testing"

func TestPutGet_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
	}{
		{"top level", "a", 1},
		{"nested", "a.b.c", "v"},
		{"deep", "address.location.lat", "40.84"},
		{"nil value", "a.b", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := map[string]any{}
			Put(doc, tt.path, tt.value)
			if got := Get(doc, tt.path); got != tt.value {
				t.Errorf("Get(Put(doc, %q, %v)) = %v", tt.path, tt.value, got)
			}
		})
	}
}

func TestGet_MissingSegments(t *testing.T) {
	doc := map[string]any{
		"a":    map[string]any{"b": "leaf"},
		"flat": 42,
	}
	tests := []string{"x", "a.x", "a.b.c", "flat.inner", "x.y.z", ""}
	for _, path := range tests {
		if got := Get(doc, path); got != nil {
			t.Errorf("Get(%q) = %v, want nil", path, got)
		}
	}
	if Get(nil, "a") != nil {
		t.Error("Get on nil document must return nil")
	}
}

func TestPut_ReusesExistingIntermediates(t *testing.T) {
	doc := map[string]any{
		"address": map[string]any{"street": "Morris Park Ave"},
	}
	Put(doc, "address.zipcode", "10462")

	addr := doc["address"].(map[string]any)
	if addr["street"] != "Morris Park Ave" {
		t.Error("sibling field was lost")
	}
	if addr["zipcode"] != "10462" {
		t.Errorf("zipcode = %v", addr["zipcode"])
	}
}

func TestPut_ReplacesNonDocumentIntermediate(t *testing.T) {
	doc := map[string]any{"a": "scalar"}
	Put(doc, "a.b", 1)
	if Get(doc, "a.b") != 1 {
		t.Fatalf("unexpected doc: %v", doc)
	}
}

func TestDelete(t *testing.T) {
	doc := map[string]any{}
	Put(doc, "address.location.type", "Point")
	Put(doc, "address.location.lat", "1")

	Delete(doc, "address.location.type")
	Delete(doc, "address.missing.key")

	loc := Get(doc, "address.location").(map[string]any)
	if _, ok := loc["type"]; ok {
		t.Error("type was not deleted")
	}
	if loc["lat"] != "1" {
		t.Error("sibling was deleted")
	}
}

package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IndexFieldType enumerates supported mapping field types.
type IndexFieldType string

const (
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText IndexFieldType = "text"
	// IndexFieldKeyword is an exact-value field usable in terms filters and aggregations.
	IndexFieldKeyword IndexFieldType = "keyword"
	// IndexFieldLong is a 64-bit integer field.
	IndexFieldLong IndexFieldType = "long"
	// IndexFieldDate is a date field.
	IndexFieldDate IndexFieldType = "date"
	// IndexFieldGeoPoint is a lat/lon point field.
	IndexFieldGeoPoint IndexFieldType = "geo_point"
)

// IndexField describes a single field in an index mapping.
// Dotted names address object sub-fields.
type IndexField struct {
	Name   string
	Type   IndexFieldType
	Format string // date format
}

// IndexDefinition is a complete index definition: settings plus mapping.
type IndexDefinition struct {
	Name     string
	Shards   int
	Replicas int
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIndexName(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if idx.Shards < 0 || idx.Replicas < 0 {
		return errors.New("shards and replicas must not be negative")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}
	for name := range seen {
		for parent := parentOf(name); parent != ""; parent = parentOf(parent) {
			if seen[parent] {
				return fmt.Errorf("field %s is nested under leaf field %s", name, parent)
			}
		}
	}
	return nil
}

// Settings returns the index settings body.
func (idx *IndexDefinition) Settings() map[string]any {
	settings := map[string]any{}
	if idx.Shards > 0 {
		settings["number_of_shards"] = idx.Shards
	}
	if idx.Replicas > 0 {
		settings["number_of_replicas"] = idx.Replicas
	}
	return settings
}

// Mapping returns the mapping body with dotted field names expanded into object properties.
func (idx *IndexDefinition) Mapping() map[string]any {
	root := map[string]any{}
	for _, f := range idx.Fields {
		props := root
		segments := strings.Split(f.Name, ".")
		for _, seg := range segments[:len(segments)-1] {
			obj, ok := props[seg].(map[string]any)
			if !ok {
				obj = map[string]any{"properties": map[string]any{}}
				props[seg] = obj
			}
			props = obj["properties"].(map[string]any)
		}
		leaf := map[string]any{"type": string(f.Type)}
		if f.Format != "" {
			leaf["format"] = f.Format
		}
		props[segments[len(segments)-1]] = leaf
	}
	return map[string]any{"properties": root}
}

// Body returns the create-index request body.
func (idx *IndexDefinition) Body() map[string]any {
	body := map[string]any{}
	if s := idx.Settings(); len(s) > 0 {
		body["settings"] = s
	}
	if len(idx.Fields) > 0 {
		body["mappings"] = idx.Mapping()
	}
	return body
}

// String returns a debug representation of the definition.
func (idx *IndexDefinition) String() string {
	parts := []string{"PUT", idx.Name}
	if idx.Shards > 0 {
		parts = append(parts, "shards="+strconv.Itoa(idx.Shards))
	}
	if idx.Replicas > 0 {
		parts = append(parts, "replicas="+strconv.Itoa(idx.Replicas))
	}
	for _, f := range idx.Fields {
		parts = append(parts, f.Name+":"+string(f.Type))
	}
	return strings.Join(parts, " ")
}

// IsValidIndexName reports whether s is a legal lower-case index name.
func IsValidIndexName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if s[0] == '-' || s[0] == '_' || s[0] == '+' {
		return false
	}
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-' || r == '.' || r == '+'
		if !isLower && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

func parentOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[:i]
}

// Package docpath reads and writes values in nested documents by dotted field path.
package docpath

import "strings"

// Get returns the value at fieldPath, or nil when any segment is missing
// or an intermediate value is not a document.
func Get(doc map[string]any, fieldPath string) any {
	if doc == nil || fieldPath == "" {
		return nil
	}
	segments := strings.Split(fieldPath, ".")
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := asDocument(current[seg])
		if !ok {
			return nil
		}
		current = next
	}
	return current[segments[len(segments)-1]]
}

// Put stores value at fieldPath, creating missing intermediate documents.
// Existing intermediate documents are reused; non-document intermediates are replaced.
func Put(doc map[string]any, fieldPath string, value any) {
	if doc == nil || fieldPath == "" {
		return
	}
	segments := strings.Split(fieldPath, ".")
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := asDocument(current[seg])
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// Delete removes the value at fieldPath. Missing paths are ignored.
func Delete(doc map[string]any, fieldPath string) {
	if doc == nil || fieldPath == "" {
		return
	}
	segments := strings.Split(fieldPath, ".")
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := asDocument(current[seg])
		if !ok {
			return
		}
		current = next
	}
	delete(current, segments[len(segments)-1])
}

// Document returns v as a nested document if it is one.
func Document(v any) (map[string]any, bool) { return asDocument(v) }

func asDocument(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

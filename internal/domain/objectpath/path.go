// Package objectpath tracks the objects materialized during one document-to-object
// conversion so that repeated references resolve to the same instance and cycles end.
package objectpath

import (
	"fmt"
	"strings"
)

// entry is one tracked object with the identity it was read under.
type entry struct {
	object     any
	collection string
	id         any
}

// Path is an immutable stack of tracked objects. The zero value equals Root.
type Path struct {
	entries []entry
}

// Root is the empty path every top-level conversion starts from.
var Root = Path{}

// Push returns a new path with object appended. The receiver is left unchanged.
// A nil id is allowed; such entries are never returned by Lookup.
func (p Path) Push(object any, collection string, id any) Path {
	if object == nil {
		panic("objectpath: push of nil object")
	}
	entries := make([]entry, len(p.entries), len(p.entries)+1)
	copy(entries, p.entries)
	entries = append(entries, entry{object: object, collection: collection, id: id})
	return Path{entries: entries}
}

// Lookup returns the first tracked object with the given id in collection.
func (p Path) Lookup(id any, collection string) (any, bool) {
	if id == nil {
		return nil, false
	}
	for _, e := range p.entries {
		if e.id == nil || e.collection != collection {
			continue
		}
		if sameID(e.id, id) {
			return e.object, true
		}
	}
	return nil, false
}

// Current returns the most recently pushed object.
func (p Path) Current() (any, bool) {
	if len(p.entries) == 0 {
		return nil, false
	}
	return p.entries[len(p.entries)-1].object, true
}

// Len returns the number of tracked objects.
func (p Path) Len() int { return len(p.entries) }

// IsRoot reports whether nothing has been pushed.
func (p Path) IsRoot() bool { return len(p.entries) == 0 }

func (p Path) String() string {
	if p.IsRoot() {
		return "ObjectPath{}"
	}
	parts := make([]string, len(p.entries))
	for i, e := range p.entries {
		parts[i] = fmt.Sprintf("%s/%v", e.collection, e.id)
	}
	return "ObjectPath{" + strings.Join(parts, " -> ") + "}"
}

// sameID compares ids, tolerating non-comparable values by their printed form.
func sameID(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = fmt.Sprint(a) == fmt.Sprint(b)
		}
	}()
	return a == b
}

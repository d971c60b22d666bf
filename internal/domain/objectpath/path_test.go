package objectpath

import "testing"

type asset struct{ name string }

func TestRoot_IsEmpty(t *testing.T) {
	if !Root.IsRoot() || Root.Len() != 0 {
		t.Fatal("Root must be empty")
	}
	if _, ok := Root.Current(); ok {
		t.Error("Current() on Root must be empty")
	}
	if _, ok := Root.Lookup("a1", "assetwrapper"); ok {
		t.Error("Lookup on Root must miss")
	}
}

func TestPush_DoesNotMutate(t *testing.T) {
	a := &asset{name: "a"}
	p1 := Root.Push(a, "assetwrapper", "a1")
	p2 := p1.Push(&asset{name: "b"}, "assetwrapper", "a2")

	if !Root.IsRoot() {
		t.Error("Root was mutated")
	}
	if p1.Len() != 1 || p2.Len() != 2 {
		t.Fatalf("unexpected lengths: %d, %d", p1.Len(), p2.Len())
	}
	if _, ok := p1.Lookup("a2", "assetwrapper"); ok {
		t.Error("p1 must not see entries pushed onto p2")
	}
}

func TestPush_SiblingsIndependent(t *testing.T) {
	base := Root.Push(&asset{}, "assetwrapper", "a1")
	left := base.Push(&asset{}, "notes", "n1")
	right := base.Push(&asset{}, "notes", "n2")

	if _, ok := left.Lookup("n2", "notes"); ok {
		t.Error("left branch sees right sibling")
	}
	if _, ok := right.Lookup("n1", "notes"); ok {
		t.Error("right branch sees left sibling")
	}
}

func TestLookup(t *testing.T) {
	a := &asset{name: "a"}
	n := &asset{name: "n"}
	p := Root.Push(a, "assetwrapper", "a1").Push(n, "notes", "n1")

	tests := []struct {
		name       string
		id         any
		collection string
		want       any
		found      bool
	}{
		{"pushed asset", "a1", "assetwrapper", a, true},
		{"pushed note", "n1", "notes", n, true},
		{"wrong collection", "a1", "notes", nil, false},
		{"unknown id", "a9", "assetwrapper", nil, false},
		{"nil id", nil, "assetwrapper", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Lookup(tt.id, tt.collection)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("Lookup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookup_SkipsNilIDEntries(t *testing.T) {
	placeholder := &asset{name: "placeholder"}
	tracked := &asset{name: "tracked"}
	p := Root.Push(placeholder, "address", nil).Push(tracked, "address", "x1")

	got, ok := p.Lookup("x1", "address")
	if !ok || got != tracked {
		t.Fatalf("Lookup() = %v, %v", got, ok)
	}
}

func TestLookup_FirstMatchWins(t *testing.T) {
	first := &asset{name: "first"}
	p := Root.Push(first, "notes", "n1").Push(&asset{name: "second"}, "notes", "n1")

	got, _ := p.Lookup("n1", "notes")
	if got != first {
		t.Errorf("expected first pushed object, got %v", got)
	}
}

func TestLookup_NonComparableIDs(t *testing.T) {
	obj := &asset{}
	p := Root.Push(obj, "notes", []any{"n", 1})

	got, ok := p.Lookup([]any{"n", 1}, "notes")
	if !ok || got != obj {
		t.Fatalf("Lookup() with slice id = %v, %v", got, ok)
	}
}

func TestCurrent(t *testing.T) {
	a, b := &asset{name: "a"}, &asset{name: "b"}
	p := Root.Push(a, "assetwrapper", "a1").Push(b, "address", nil)

	got, ok := p.Current()
	if !ok || got != b {
		t.Fatalf("Current() = %v, %v", got, ok)
	}
}

func TestPush_NilObjectPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Root.Push(nil, "assetwrapper", "a1")
}

func TestString(t *testing.T) {
	p := Root.Push(&asset{}, "assetwrapper", "a1").Push(&asset{}, "notes", "n1")
	if got := p.String(); got != "ObjectPath{assetwrapper/a1 -> notes/n1}" {
		t.Errorf("String() = %q", got)
	}
}

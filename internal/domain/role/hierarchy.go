// Package role implements an inherited role hierarchy ("A > B" grants B to holders of A).
package role

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known roles.
const (
	SuperUser = "ROLE_SUPERUSER"
	Admin     = "ROLE_ADMIN"
	User      = "ROLE_USER"
	Guest     = "ROLE_GUEST"
)

// DefaultHierarchy is used when none is configured.
const DefaultHierarchy = "ROLE_SUPERUSER > ROLE_ADMIN ROLE_ADMIN > ROLE_USER ROLE_USER > ROLE_GUEST"

// Hierarchy maps each role to every role it implies.
type Hierarchy struct {
	reachable map[string]map[string]struct{}
}

// ParseHierarchy reads "HIGHER > LOWER" pairs separated by whitespace or newlines.
func ParseHierarchy(expr string) (*Hierarchy, error) {
	direct := make(map[string][]string)
	tokens := strings.Fields(expr)
	for i := 0; i < len(tokens); {
		if i+2 >= len(tokens) || tokens[i+1] != ">" {
			return nil, fmt.Errorf("invalid role hierarchy near %q", strings.Join(tokens[i:], " "))
		}
		higher, lower := tokens[i], tokens[i+2]
		direct[higher] = append(direct[higher], lower)
		i += 3
	}

	h := &Hierarchy{reachable: make(map[string]map[string]struct{}, len(direct))}
	for r := range direct {
		seen := map[string]struct{}{}
		stack := append([]string(nil), direct[r]...)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			stack = append(stack, direct[n]...)
		}
		if _, ok := seen[r]; ok {
			return nil, fmt.Errorf("role hierarchy has a cycle through %s", r)
		}
		h.reachable[r] = seen
	}
	return h, nil
}

// Reachable returns the granted roles plus every role they imply, sorted.
func (h *Hierarchy) Reachable(granted ...string) []string {
	set := make(map[string]struct{})
	for _, g := range granted {
		set[g] = struct{}{}
		for r := range h.reachable[g] {
			set[r] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Allows reports whether holders of granted have the required role.
func (h *Hierarchy) Allows(granted []string, required string) bool {
	for _, g := range granted {
		if g == required {
			return true
		}
		if _, ok := h.reachable[g][required]; ok {
			return true
		}
	}
	return false
}

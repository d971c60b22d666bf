package role

import (
	"strings"
	"testing"
)

func TestParseHierarchy_Default(t *testing.T) {
	h, err := ParseHierarchy(DefaultHierarchy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(h.Reachable(SuperUser), ",")
	want := "ROLE_ADMIN,ROLE_GUEST,ROLE_SUPERUSER,ROLE_USER"
	if got != want {
		t.Errorf("Reachable(SUPERUSER) = %s, want %s", got, want)
	}
}

func TestAllows(t *testing.T) {
	h, err := ParseHierarchy(DefaultHierarchy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		granted  []string
		required string
		want     bool
	}{
		{[]string{Admin}, User, true},
		{[]string{Admin}, Guest, true},
		{[]string{Admin}, SuperUser, false},
		{[]string{User}, Admin, false},
		{[]string{Guest}, User, false},
		{[]string{Guest, SuperUser}, Admin, true},
		{nil, Guest, false},
		{[]string{"ROLE_CUSTOM"}, "ROLE_CUSTOM", true},
	}
	for _, tt := range tests {
		if got := h.Allows(tt.granted, tt.required); got != tt.want {
			t.Errorf("Allows(%v, %s) = %v, want %v", tt.granted, tt.required, got, tt.want)
		}
	}
}

func TestParseHierarchy_Invalid(t *testing.T) {
	bad := []string{
		"ROLE_ADMIN ROLE_USER",
		"ROLE_ADMIN >",
		"ROLE_A > ROLE_B ROLE_B > ROLE_A",
	}
	for _, expr := range bad {
		if _, err := ParseHierarchy(expr); err == nil {
			t.Errorf("ParseHierarchy(%q): expected error", expr)
		}
	}
}

func TestParseHierarchy_Multiline(t *testing.T) {
	h, err := ParseHierarchy("ROLE_ADMIN > ROLE_USER\nROLE_USER > ROLE_GUEST\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Allows([]string{Admin}, Guest) {
		t.Error("expected transitive grant")
	}
}

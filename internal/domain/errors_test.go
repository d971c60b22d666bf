package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatError_WrapsSentinel(t *testing.T) {
	err := fmt.Errorf("decode: %w", &FormatError{Expected: "Point", Got: "Polygon"})
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), `"Polygon"`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Collection: "address", ID: "a1"}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound")
	}
	if err.Error() != "address/a1: not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTransportError_MatchesSentinelAndCause(t *testing.T) {
	err := &TransportError{Op: "search", Fault: FaultReadTimeout, Err: context.DeadlineExceeded}
	if !errors.Is(err, ErrTransport) {
		t.Error("expected ErrTransport")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable")
	}
}

func TestIsIndexMissing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"index missing", &ServerError{Status: 404, Fault: FaultIndexMissing}, true},
		{"wrapped", fmt.Errorf("stats: %w", &ServerError{Fault: FaultIndexMissing}), true},
		{"cluster block", &ServerError{Status: 403, Fault: FaultClusterBlock}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIndexMissing(tt.err); got != tt.want {
				t.Errorf("IsIndexMissing() = %v, want %v", got, tt.want)
			}
		})
	}
}

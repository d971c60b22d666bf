package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
	}{
		{"prod", "", false},
		{"local", "debug", false},
		{"test", "warn", false},
		{"staging", "", true},
		{"prod", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := New(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.level == "warn" && l.Core().Enabled(zap.InfoLevel) {
				t.Error("info enabled despite warn override")
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fallback := zap.New(core).With(zap.String("from", "fallback"))
	stored := zap.New(core).With(zap.String("from", "context"))

	FromContext(context.Background(), fallback).Info("a")
	FromContext(WithContext(context.Background(), stored), fallback).Info("b")
	FromContext(context.Background(), nil).Info("dropped")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["from"] != "fallback" || entries[1].ContextMap()["from"] != "context" {
		t.Errorf("entries = %v", entries)
	}
}

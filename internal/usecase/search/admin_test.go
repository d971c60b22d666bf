package search

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
)

func TestCreateIndex(t *testing.T) {
	var got *db.IndexDefinition
	admin := &mockAdmin{createFn: func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}}
	if err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).CreateIndex(context.Background(), "Assets"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "assets" || got.Shards != 5 || got.Replicas != 1 {
		t.Errorf("definition = %+v", got)
	}
}

func TestCreateIndex_InvalidName(t *testing.T) {
	err := New(&mockSearcher{}, &mockAdmin{}, &mockLoader{}, Config{}, nil).CreateIndex(context.Background(), "_bad")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDropIndex(t *testing.T) {
	var got string
	admin := &mockAdmin{deleteFn: func(_ context.Context, name string) error {
		got = name
		return nil
	}}
	svc := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil)
	if err := svc.DropIndex(context.Background(), "Assets"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "assets" {
		t.Errorf("deleted %q", got)
	}
}

func TestDropIndex_TransportFault(t *testing.T) {
	admin := &mockAdmin{deleteFn: func(context.Context, string) error {
		return &domain.TransportError{Op: "delete index", Fault: domain.FaultConnectionRefused, Err: syscall.ECONNREFUSED}
	}}
	err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).DropIndex(context.Background(), "assets")
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Fault != domain.FaultDeleteFailed {
		t.Fatalf("expected delete fault, got %v", err)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("cause should be kept")
	}
}

func TestRefreshIndex(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"named", "assets", 1},
		{"all", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := -1
			admin := &mockAdmin{refreshFn: func(_ context.Context, names ...string) error {
				got = len(names)
				return nil
			}}
			if err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).RefreshIndex(context.Background(), tt.in); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("refreshed %d names, want %d", got, tt.want)
			}
		})
	}
}

func TestOptimize(t *testing.T) {
	segments := 0
	admin := &mockAdmin{mergeFn: func(_ context.Context, n int) error {
		segments = n
		return nil
	}}
	if err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).Optimize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segments != 1 {
		t.Errorf("max segments = %d", segments)
	}
}

func statsReport(sections ...string) map[string]any {
	total := map[string]any{}
	for _, s := range sections {
		total[s] = map[string]any{"count": 1}
	}
	return map[string]any{"indices": map[string]any{DefaultIndex: map[string]any{"total": total}}}
}

func TestStats(t *testing.T) {
	tests := []struct {
		name    string
		report  map[string]any
		wantErr bool
	}{
		{"complete", statsReport("docs", "store", "indexing", "get", "search"), false},
		{"missing section", statsReport("docs", "store"), true},
		{"missing index", map[string]any{"indices": map[string]any{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := &mockAdmin{statsFn: func(context.Context, string) (map[string]any, error) { return tt.report, nil }}
			total, err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).Stats(context.Background())
			if tt.wantErr {
				if !errors.Is(err, domain.ErrServer) {
					t.Errorf("expected ErrServer, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := total["docs"]; !ok {
				t.Errorf("total = %v", total)
			}
		})
	}
}

func TestCreateGeoPointMapping(t *testing.T) {
	var got *db.IndexDefinition
	admin := &mockAdmin{putMappingFn: func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}}
	if err := New(&mockSearcher{}, admin, &mockLoader{}, Config{}, nil).CreateGeoPointMapping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != DefaultAlias {
		t.Errorf("mapping put on %s", got.Name)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("mapping invalid: %v", err)
	}
	props := got.Mapping()["properties"].(map[string]any)
	loc := props["address"].(map[string]any)["properties"].(map[string]any)["location"].(map[string]any)
	if loc["type"] != "geo_point" {
		t.Errorf("location = %v", loc)
	}
}

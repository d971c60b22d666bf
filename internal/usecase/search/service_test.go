package search

import (
	"context"
	"errors"
	"testing"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

func TestSearch_LoadsHitsInOrder(t *testing.T) {
	searcher := &mockSearcher{searchFn: func(context.Context, string, map[string]any) (*db.SearchResponse, error) {
		return &db.SearchResponse{Total: 3, Hits: []db.Hit{{ID: "a3"}, {ID: "a1"}, {ID: "gone"}}}, nil
	}}
	var gotName string
	var gotIDs []string
	loader := &mockLoader{getManyFn: func(_ context.Context, name string, ids []string) ([]domentity.Entity, error) {
		gotName, gotIDs = name, ids
		return []domentity.Entity{&asset.AssetWrapper{ID: "a3"}, &asset.AssetWrapper{ID: "a1"}}, nil
	}}
	svc := New(searcher, &mockAdmin{}, loader, Config{}, nil)

	out, err := svc.Search(context.Background(), " garden ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].(*asset.AssetWrapper).ID != "a3" {
		t.Errorf("unexpected result: %v", out)
	}
	if gotName != asset.EntityAssetWrapper || len(gotIDs) != 3 || gotIDs[0] != "a3" || gotIDs[2] != "gone" {
		t.Errorf("GetMany(%s, %v)", gotName, gotIDs)
	}

	if searcher.lastIndex != DefaultIndex {
		t.Errorf("index = %s", searcher.lastIndex)
	}
	if searcher.lastBody["size"] != DefaultLimit {
		t.Errorf("size = %v", searcher.lastBody["size"])
	}
	mm := searcher.lastBody["query"].(map[string]any)["multi_match"].(map[string]any)
	fields := mm["fields"].([]string)
	if mm["query"] != "garden" || len(fields) != 2 || fields[0] != "aName" || fields[1] != "cuisine" {
		t.Errorf("multi_match = %v", mm)
	}
}

func TestSearch_NoHitsSkipsStore(t *testing.T) {
	loader := &mockLoader{getManyFn: func(context.Context, string, []string) ([]domentity.Entity, error) {
		t.Fatal("store must not be queried")
		return nil, nil
	}}
	out, err := New(&mockSearcher{}, &mockAdmin{}, loader, Config{}, nil).Search(context.Background(), "x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty slice, got %v", out)
	}
}

func TestSearch_Validation(t *testing.T) {
	svc := New(&mockSearcher{}, &mockAdmin{}, &mockLoader{}, Config{}, nil)
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{"empty text", "  ", 5},
		{"limit too large", "x", MaxLimit + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Search(context.Background(), tt.text, tt.limit); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSearch_ServerErrorPropagates(t *testing.T) {
	searcher := &mockSearcher{searchFn: func(context.Context, string, map[string]any) (*db.SearchResponse, error) {
		return nil, &domain.ServerError{Op: "search", Status: 404, Fault: domain.FaultIndexMissing}
	}}
	_, err := New(searcher, &mockAdmin{}, &mockLoader{}, Config{}, nil).Search(context.Background(), "x", 1)
	if !domain.IsIndexMissing(err) {
		t.Fatalf("expected index missing, got %v", err)
	}
}

package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/metrics"
)

func req() Request {
	return Request{SourceIndex: "digitalbridge", SourceType: "assetwrapper", DestIndex: "digitalbridge_alias", DestType: "assetwrapper"}
}

func TestRun_GeoPage(t *testing.T) {
	src := pagedSource(3, []db.Hit{
		geoHit("a1", -73.856077, 40.848447),
		geoHit("a2", -73.961704, 40.662942),
		geoHit("a3", -73.98513559999999, 40.7676919),
	})
	sink := &mockSink{}

	res, err := New(src, sink, nil).Run(context.Background(), req())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages != 1 || res.Hits != 3 || res.Indexed != 3 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if len(sink.calls) != 1 || len(sink.calls[0]) != 3 {
		t.Fatalf("expected one bulk of 3, got %v", sink.calls)
	}

	first := sink.calls[0][0]
	if first.ID != "a1" {
		t.Errorf("bulk item should be keyed by hit id, got %q", first.ID)
	}
	loc := first.Source["address"].(map[string]any)["location"].(map[string]any)
	if loc["lat"] != "40.848447" || loc["lon"] != "-73.856077" {
		t.Errorf("location = %v", loc)
	}
	for _, item := range sink.calls[0] {
		l := item.Source["address"].(map[string]any)["location"].(map[string]any)
		if _, ok := l["type"]; ok {
			t.Errorf("%s: type should be gone", item.ID)
		}
		if _, ok := l["coordinates"]; ok {
			t.Errorf("%s: coordinates should be gone", item.ID)
		}
	}
	if len(src.cleared) != 1 || src.cleared[0] != "s1" {
		t.Errorf("scroll should be cleared once, got %v", src.cleared)
	}
}

func TestRun_Termination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pages     [][]db.Hit
		legacy    bool
		wantPages int
		wantBulks int
	}{
		{
			name:      "partial page ends run",
			total:     5,
			pages:     [][]db.Hit{hits("a", "b"), hits("c", "d"), hits("e")},
			wantPages: 3,
			wantBulks: 3,
		},
		{
			name:      "total reached ends run",
			total:     4,
			pages:     [][]db.Hit{hits("a", "b"), hits("c", "d"), hits("never", "read")},
			wantPages: 2,
			wantBulks: 2,
		},
		{
			name:      "empty page ends run",
			total:     0,
			pages:     [][]db.Hit{hits("a", "b"), hits("c", "d")},
			wantPages: 2,
			wantBulks: 2,
		},
		{
			name:      "empty index",
			total:     0,
			pages:     nil,
			wantPages: 0,
			wantBulks: 0,
		},
		{
			name:      "legacy stops after a full page",
			total:     6,
			pages:     [][]db.Hit{hits("a", "b"), hits("c", "d"), hits("e", "f")},
			legacy:    true,
			wantPages: 1,
			wantBulks: 1,
		},
		{
			name:      "legacy continues while pages overflow",
			total:     7,
			pages:     [][]db.Hit{hits("a", "b", "c"), hits("d", "e", "f"), hits("g")},
			legacy:    true,
			wantPages: 3,
			wantBulks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := pagedSource(tt.total, tt.pages...)
			sink := &mockSink{}
			var opts []Option
			if tt.legacy {
				opts = append(opts, WithLegacyTermination())
			}
			r := req()
			r.PageSize = 2

			res, err := New(src, sink, nil, opts...).Run(context.Background(), r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", res.Pages, tt.wantPages)
			}
			if len(sink.calls) != tt.wantBulks {
				t.Errorf("bulk calls = %d, want %d", len(sink.calls), tt.wantBulks)
			}
		})
	}
}

func TestRun_FailedBulkIsSkipped(t *testing.T) {
	src := pagedSource(0, hits("a", "b"), hits("c", "d"), hits("e"))
	call := 0
	sink := &mockSink{bulkFn: func(_ context.Context, _ string, items []db.BulkItem) (*db.BulkResult, error) {
		call++
		if call == 2 {
			return nil, &domain.TransportError{Op: "bulk", Fault: domain.FaultReadTimeout, Err: context.DeadlineExceeded}
		}
		return &db.BulkResult{Indexed: len(items)}, nil
	}}
	before := testutil.ToFloat64(metrics.ReindexPagesTotal.WithLabelValues("failed"))

	r := req()
	r.PageSize = 2
	res, err := New(src, sink, nil).Run(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pages != 3 || res.Hits != 5 {
		t.Errorf("run should continue past the failed page: %+v", res)
	}
	if res.Indexed != 3 || res.Failed != 2 || res.FailedPages != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if got := testutil.ToFloat64(metrics.ReindexPagesTotal.WithLabelValues("failed")); got != before+1 {
		t.Errorf("failed pages counter = %v, want %v", got, before+1)
	}
}

func TestRun_RejectedDocumentsCounted(t *testing.T) {
	src := pagedSource(2, hits("a", "b"))
	sink := &mockSink{bulkFn: func(context.Context, string, []db.BulkItem) (*db.BulkResult, error) {
		return &db.BulkResult{Indexed: 1, Failed: []db.BulkFailure{{ID: "b", Status: 400, Reason: "mapper_parsing_exception: bad"}}}, nil
	}}

	r := req()
	r.PageSize = 2
	res, err := New(src, sink, nil).Run(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Indexed != 1 || res.Failed != 1 || res.FailedPages != 0 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestRun_ScrollFailureAborts(t *testing.T) {
	boom := &domain.TransportError{Op: "scroll", Fault: domain.FaultConnectionRefused, Err: errors.New("refused")}
	src := &mockSource{
		openFn: func(context.Context, *db.ScrollQuery) (*db.ScrollPage, error) {
			return &db.ScrollPage{ScrollID: "s1", Total: 10, Hits: hits("a", "b")}, nil
		},
		scrollFn: func(context.Context, string, time.Duration) (*db.ScrollPage, error) {
			return nil, boom
		},
	}
	sink := &mockSink{}

	r := req()
	r.PageSize = 2
	res, err := New(src, sink, nil).Run(context.Background(), r)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if res == nil || res.Pages != 1 || res.Indexed != 2 {
		t.Errorf("expected partial result, got %+v", res)
	}
	if len(src.cleared) != 1 {
		t.Errorf("scroll should still be cleared, got %v", src.cleared)
	}
}

func TestRun_OpenScrollFailure(t *testing.T) {
	src := &mockSource{openFn: func(context.Context, *db.ScrollQuery) (*db.ScrollPage, error) {
		return nil, &domain.ServerError{Op: "search", Status: 404, Fault: domain.FaultIndexMissing}
	}}

	_, err := New(src, &mockSink{}, nil).Run(context.Background(), req())
	if !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if len(src.cleared) != 0 {
		t.Errorf("nothing to clear, got %v", src.cleared)
	}
}

func TestRun_Defaults(t *testing.T) {
	var got *db.ScrollQuery
	src := &mockSource{openFn: func(_ context.Context, q *db.ScrollQuery) (*db.ScrollPage, error) {
		got = q
		return &db.ScrollPage{ScrollID: "s1"}, nil
	}}

	if _, err := New(src, &mockSink{}, nil).Run(context.Background(), req()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Size != DefaultPageSize || got.KeepAlive != DefaultKeepAlive || got.Index != "digitalbridge" {
		t.Errorf("unexpected scroll query: %+v", got)
	}

	if _, err := New(src, &mockSink{}, nil, WithDefaults(50, time.Minute)).Run(context.Background(), req()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Size != 50 || got.KeepAlive != time.Minute {
		t.Errorf("unexpected scroll query: %+v", got)
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	_, err := New(&mockSource{}, &mockSink{}, nil).Run(context.Background(), Request{SourceIndex: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

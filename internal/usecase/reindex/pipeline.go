// Package reindex copies every document of one search index into another,
// rewriting GeoJSON locations into geo_point form on the way.
package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/metrics"
)

// Defaults applied to zero Request fields.
const (
	DefaultPageSize  = 1000
	DefaultKeepAlive = 5 * time.Minute
)

// Request describes one reindex run.
type Request struct {
	SourceIndex string
	SourceType  string
	DestIndex   string
	DestType    string
	PageSize    int
	KeepAlive   time.Duration
}

// Result summarizes a run.
type Result struct {
	RunID       string
	Pages       int
	Hits        int
	Indexed     int
	Failed      int
	FailedPages int
	Duration    time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLegacyTermination keeps scrolling only while a page holds more hits
// than the page size.
func WithLegacyTermination() Option {
	return func(p *Pipeline) { p.legacy = true }
}

// WithDefaults overrides the page size and keep-alive used for zero Request fields.
func WithDefaults(pageSize int, keepAlive time.Duration) Option {
	return func(p *Pipeline) {
		if pageSize > 0 {
			p.pageSize = pageSize
		}
		if keepAlive > 0 {
			p.keepAlive = keepAlive
		}
	}
}

// Pipeline scrolls a source index and bulk-writes each page to a destination.
type Pipeline struct {
	source    Source
	sink      Sink
	logger    *zap.Logger
	legacy    bool
	pageSize  int
	keepAlive time.Duration
	now       func() time.Time
}

// New creates a reindex pipeline.
func New(source Source, sink Sink, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		source:    source,
		sink:      sink,
		logger:    logger,
		pageSize:  DefaultPageSize,
		keepAlive: DefaultKeepAlive,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run copies SourceIndex into DestIndex. A page whose bulk write fails is
// logged and counted, and the run continues. A failed scroll advance aborts
// the run and returns the partial result with the error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.SourceIndex == "" || req.DestIndex == "" {
		return nil, fmt.Errorf("%w: source and destination index are required", domain.ErrInvalidInput)
	}
	if req.PageSize <= 0 {
		req.PageSize = p.pageSize
	}
	if req.KeepAlive <= 0 {
		req.KeepAlive = p.keepAlive
	}

	res := &Result{RunID: uuid.NewString()}
	start := p.now()
	log := p.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("source", req.SourceIndex),
		zap.String("dest", req.DestIndex),
	)
	if req.SourceType != "" || req.DestType != "" {
		log.Debug("Mapping types are ignored by typeless indices",
			zap.String("source_type", req.SourceType),
			zap.String("dest_type", req.DestType))
	}

	page, err := p.source.OpenScroll(ctx, &db.ScrollQuery{
		Index:     req.SourceIndex,
		Size:      req.PageSize,
		KeepAlive: req.KeepAlive,
	})
	if err != nil {
		return nil, fmt.Errorf("open scroll on %s: %w", req.SourceIndex, err)
	}

	scrollID := page.ScrollID
	defer func() {
		if scrollID == "" {
			return
		}
		if err := p.source.ClearScroll(context.WithoutCancel(ctx), scrollID); err != nil {
			log.Warn("Failed to clear scroll", zap.Error(err))
		}
	}()

	total := page.Total
	for {
		n := len(page.Hits)
		if n == 0 {
			metrics.ReindexPagesTotal.WithLabelValues("empty").Inc()
			break
		}
		res.Pages++
		res.Hits += n
		log.Info("Scrolled page", zap.Int("page", res.Pages), zap.Int("hits", n))

		p.writePage(ctx, req.DestIndex, page.Hits, res, log)

		if p.done(n, res.Hits, total, req.PageSize) {
			break
		}

		next, err := p.source.Scroll(ctx, scrollID, req.KeepAlive)
		if err != nil {
			p.finish(res, start)
			log.Error("Scroll failed, aborting run", zap.Int("page", res.Pages+1), zap.Error(err))
			return res, fmt.Errorf("scroll page %d: %w", res.Pages+1, err)
		}
		if next.ScrollID != "" {
			scrollID = next.ScrollID
		}
		if next.Total > 0 {
			total = next.Total
		}
		page = next
	}

	p.finish(res, start)
	log.Info("Reindex finished",
		zap.Int("pages", res.Pages),
		zap.Int("hits", res.Hits),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
		zap.Int("failed_pages", res.FailedPages),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (p *Pipeline) writePage(ctx context.Context, index string, hits []db.Hit, res *Result, log *zap.Logger) {
	items := make([]db.BulkItem, 0, len(hits))
	for _, h := range hits {
		items = append(items, db.BulkItem{ID: h.ID, Source: FlattenLocation(h.Source)})
	}

	br, err := p.sink.Bulk(ctx, index, items)
	if err != nil {
		res.FailedPages++
		res.Failed += len(items)
		metrics.ReindexPagesTotal.WithLabelValues("failed").Inc()
		metrics.ReindexDocumentsTotal.WithLabelValues("failed").Add(float64(len(items)))
		log.Error("Bulk write failed, skipping page",
			zap.Int("page", res.Pages),
			zap.Int("documents", len(items)),
			zap.Error(err))
		return
	}

	res.Indexed += br.Indexed
	res.Failed += len(br.Failed)
	metrics.ReindexPagesTotal.WithLabelValues("ok").Inc()
	metrics.ReindexDocumentsTotal.WithLabelValues("indexed").Add(float64(br.Indexed))
	if br.HasFailures() {
		metrics.ReindexDocumentsTotal.WithLabelValues("failed").Add(float64(len(br.Failed)))
		first := br.Failed[0]
		log.Warn("Documents rejected",
			zap.Int("page", res.Pages),
			zap.Int("rejected", len(br.Failed)),
			zap.String("first_id", first.ID),
			zap.String("first_reason", first.Reason))
	}
}

// done reports whether the page just written was the last one.
func (p *Pipeline) done(n, seen int, total int64, pageSize int) bool {
	if p.legacy {
		return n <= pageSize
	}
	if n < pageSize {
		return true
	}
	return total > 0 && int64(seen) >= total
}

func (p *Pipeline) finish(res *Result, start time.Time) {
	res.Duration = p.now().Sub(start)
	metrics.ReindexRunDuration.Observe(res.Duration.Seconds())
}

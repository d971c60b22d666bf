package search

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/domain/search/filter"
)

// Aggregation names of a facet search.
const (
	AggCuisine   = "MyCuisine"
	AggBorough   = "MyBorough"
	AggDateRange = "MyDateRange"
)

// OpenBound stands in for a missing range boundary in date bucket keys.
const OpenBound = "*"

// Facets maps aggregation name to bucket key to document count.
type Facets map[string]map[string]int64

// Facets counts the assets matching expr per cuisine, borough and
// modification month. Buckets without documents and aggregations without
// buckets are left out. With refresh the index is refreshed first.
func (s *Service) Facets(ctx context.Context, expr filter.Expression, refresh bool) (Facets, error) {
	if refresh {
		if err := s.admin.Refresh(ctx, s.cfg.Index); err != nil {
			return nil, fmt.Errorf("refresh %s: %w", s.cfg.Index, err)
		}
	}

	res, err := s.searcher.Search(ctx, s.cfg.Index, map[string]any{
		"size":  0,
		"query": facetQuery(expr),
		"aggs": map[string]any{
			AggCuisine: termsAgg(asset.FieldCuisine, s.cfg.TermsSize),
			AggBorough: termsAgg(asset.FieldBorough, s.cfg.TermsSize),
			AggDateRange: map[string]any{
				"date_range": map[string]any{
					"field":  asset.FieldLastModified,
					"ranges": monthRanges(s.now()),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("facet search %s: %w", s.cfg.Index, err)
	}

	out := Facets{}
	for _, name := range []string{AggCuisine, AggBorough} {
		buckets, err := termBuckets(res.Aggregations[name])
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if len(buckets) > 0 {
			out[name] = buckets
		}
	}
	dates, err := dateBuckets(res.Aggregations[AggDateRange])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", AggDateRange, err)
	}
	if len(dates) > 0 {
		out[AggDateRange] = dates
	}
	return out, nil
}

// ParseFilters builds an expression from request filters. Keys listed as
// date fields take {"from", "to"} objects, all other keys take term values.
func (s *Service) ParseFilters(raw map[string][]any) (filter.Expression, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]filter.Condition, 0, len(keys))
	for _, key := range keys {
		var (
			c   filter.Condition
			err error
		)
		if slices.Contains(s.cfg.DateFields, key) {
			c, err = parseDateCondition(key, raw[key])
		} else {
			c, err = parseTermsCondition(key, raw[key])
		}
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		conds = append(conds, c)
	}
	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return expr, nil
}

func parseTermsCondition(key string, values []any) (filter.Condition, error) {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		s, err := cast.ToStringE(v)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter %s: %w", key, err)
		}
		terms = append(terms, s)
	}
	return filter.NewTerms(key, terms...) //nolint:wrapcheck // validation message is final
}

func parseDateCondition(key string, values []any) (filter.Condition, error) {
	ranges := make([]filter.DateRange, 0, len(values))
	for _, v := range values {
		m, err := cast.ToStringMapE(v)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter %s: date range must be an object", key)
		}
		from, err := boundary(m["from"])
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter %s from: %w", key, err)
		}
		to, err := boundary(m["to"])
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter %s to: %w", key, err)
		}
		r, err := filter.NewDateRange(from, to)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter %s: %w", key, err)
		}
		ranges = append(ranges, r)
	}
	return filter.NewDateRanges(key, ranges...) //nolint:wrapcheck // validation message is final
}

func boundary(v any) (*time.Time, error) {
	if v == nil || v == "" {
		return nil, nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, err //nolint:wrapcheck // caller adds the key
	}
	t = t.UTC()
	return &t, nil
}

func facetQuery(expr filter.Expression) map[string]any {
	if expr.IsEmpty() {
		return map[string]any{"match_all": map[string]any{}}
	}
	filters := make([]any, 0, len(expr.Conditions()))
	for _, c := range expr.Conditions() {
		switch {
		case c.IsTerms():
			filters = append(filters, map[string]any{"terms": map[string]any{c.Key(): c.Terms()}})
		case c.IsDateRange():
			should := make([]any, 0, len(c.DateRanges()))
			for _, r := range c.DateRanges() {
				bounds := map[string]any{}
				if r.From() != nil {
					bounds["gte"] = r.From().Format(time.RFC3339)
				}
				if r.To() != nil {
					bounds["lt"] = r.To().Format(time.RFC3339)
				}
				should = append(should, map[string]any{"range": map[string]any{c.Key(): bounds}})
			}
			filters = append(filters, map[string]any{
				"bool": map[string]any{"should": should, "minimum_should_match": 1},
			})
		}
	}
	return map[string]any{
		"bool": map[string]any{
			"must":   []any{map[string]any{"match_all": map[string]any{}}},
			"filter": filters,
		},
	}
}

func termsAgg(field string, size int) map[string]any {
	return map[string]any{
		"terms": map[string]any{
			"field": field,
			"size":  size,
			"order": map[string]any{"_count": "desc"},
		},
	}
}

// monthRanges returns 14 date buckets around the start of the current UTC
// month: everything before the last twelve months, one bucket per month, and
// everything from the current month on.
func monthRanges(now time.Time) []any {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	format := func(t time.Time) string { return t.Format(time.RFC3339) }

	ranges := make([]any, 0, 14)
	ranges = append(ranges, map[string]any{"to": format(start.AddDate(0, -12, 0))})
	for i := 12; i > 0; i-- {
		ranges = append(ranges, map[string]any{
			"from": format(start.AddDate(0, -i, 0)),
			"to":   format(start.AddDate(0, -(i - 1), 0)),
		})
	}
	ranges = append(ranges, map[string]any{"from": format(start)})
	return ranges
}

type bucketList[T any] struct {
	Buckets []T `json:"buckets"`
}

type termBucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

type rangeBucket struct {
	From     *string `json:"from_as_string"`
	To       *string `json:"to_as_string"`
	DocCount int64   `json:"doc_count"`
}

func termBuckets(raw json.RawMessage) (map[string]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var agg bucketList[termBucket]
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, err //nolint:wrapcheck // caller names the aggregation
	}
	out := map[string]int64{}
	for _, b := range agg.Buckets {
		if b.DocCount > 0 {
			out[cast.ToString(b.Key)] = b.DocCount
		}
	}
	return out, nil
}

func dateBuckets(raw json.RawMessage) (map[string]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var agg bucketList[rangeBucket]
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, err //nolint:wrapcheck // caller names the aggregation
	}
	out := map[string]int64{}
	for _, b := range agg.Buckets {
		if b.DocCount > 0 {
			out[orOpen(b.From)+"|"+orOpen(b.To)] = b.DocCount
		}
	}
	return out, nil
}

func orOpen(s *string) string {
	if s == nil || *s == "" {
		return OpenBound
	}
	return *s
}

package health

import (
	"context"
	"sync"
	"time"
)

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy means every check passed.
	Healthy Status = "ok"
	// Degraded means some checks failed.
	Degraded Status = "degraded"
	// Unhealthy means every check failed.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one named check.
type CheckResult string

const (
	CheckOK      CheckResult = "ok"
	CheckError   CheckResult = "error"
	CheckTimeout CheckResult = "timeout"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 2 * time.Second

// Report aggregates check results by name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name   string
	pinger Pinger
}

// Service pings the document store and optional backends.
type Service struct {
	checks  []check
	timeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each check. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithCheck adds a named backend check, e.g. the reference cache.
func WithCheck(name string, p Pinger) Option {
	return func(s *Service) {
		if p != nil {
			s.checks = append(s.checks, check{name: name, pinger: p})
		}
	}
}

// New creates a Service checking the store as "database" and, when search is
// non-nil, the search cluster as "search".
func New(db, search Pinger, opts ...Option) *Service {
	s := &Service{checks: []check{{name: "database", pinger: db}}, timeout: DefaultTimeout}
	if search != nil {
		s.checks = append(s.checks, check{name: "search", pinger: search})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check runs every check concurrently, each under its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	results := make(map[string]CheckResult, len(s.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.run(ctx, c.pinger)
			mu.Lock()
			results[c.name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r != CheckOK {
			failed++
		}
	}
	status := Healthy
	switch {
	case failed == len(results):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: results}
}

func (s *Service) run(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := p.Ping(ctx)
	switch {
	case err == nil:
		return CheckOK
	case ctx.Err() != nil:
		return CheckTimeout
	default:
		return CheckError
	}
}

// Package chi exposes the entity, search and admin APIs over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/domain/role"
	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
	healthuc "github.com/digitalbridge/mongoes/internal/usecase/health"
	reindexuc "github.com/digitalbridge/mongoes/internal/usecase/reindex"
	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// Server serves the HTTP API. search and reindex are nil when no search
// cluster is configured; their routes then answer 503.
type Server struct {
	entities      *entityuc.Service
	search        *searchuc.Service
	reindex       *reindexuc.Pipeline
	reindexReq    reindexuc.Request
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithSearch enables the search and admin routes.
func WithSearch(search *searchuc.Service) Option {
	return func(s *Server) { s.search = search }
}

// WithReindex enables POST /api/admin/reindex. defaults fills the fields a
// request body leaves empty.
func WithReindex(p *reindexuc.Pipeline, defaults reindexuc.Request) Option {
	return func(s *Server) {
		s.reindex = p
		s.reindexReq = defaults
	}
}

// NewServer creates an HTTP API server.
func NewServer(entities *entityuc.Service, health *healthuc.Service, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		entities:      entities,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register mounts every route on r. auth guards the /api routes.
func (s *Server) Register(r chirouter.Router, auth *Authenticator) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chirouter.Router) {
		r.Group(func(r chirouter.Router) {
			r.Use(auth.Require(role.User))
			r.Get("/entities", s.ListEntityNames)
			r.Get("/entities/{entity}", s.ListEntities)
			r.Post("/entities/{entity}", s.CreateEntity)
			r.Get("/entities/{entity}/{id}", s.GetEntity)
			r.Put("/entities/{entity}/{id}", s.UpdateEntity)
			r.Delete("/entities/{entity}/{id}", s.DeleteEntity)
			r.Get("/search", s.Search)
			r.Post("/search/facets", s.Facets)
		})
		r.Route("/admin", func(r chirouter.Router) {
			r.Use(auth.Require(role.Admin))
			r.Post("/reindex", s.Reindex)
			r.Post("/indexes/{index}", s.CreateIndex)
			r.Delete("/indexes/{index}", s.DropIndex)
			r.Post("/indexes/{index}/refresh", s.RefreshIndex)
			r.Post("/mapping", s.CreateMapping)
			r.Post("/optimize", s.Optimize)
			r.Get("/stats", s.Stats)
		})
	})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchEnabled writes 503 and returns false when no search cluster is configured.
func (s *Server) searchEnabled(w http.ResponseWriter) bool {
	if s.search == nil {
		writeError(w, http.StatusServiceUnavailable, CodeSearchDisabled, "search is not configured")
		return false
	}
	return true
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched
// when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
	return false
}

// queryParams binds optional form-style query parameters. Each binding names
// the parameter and its destination.
func queryParams(w http.ResponseWriter, query url.Values, bindings map[string]any) bool {
	for name, dest := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter "+name+": "+err.Error())
			return false
		}
	}
	return true
}

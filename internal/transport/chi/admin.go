package chi

import (
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	logpkg "github.com/digitalbridge/mongoes/internal/logger"
	reindexuc "github.com/digitalbridge/mongoes/internal/usecase/reindex"
)

// ReindexRequest overrides the configured reindex run. Empty fields keep
// the configured value.
type ReindexRequest struct {
	SourceIndex      string `json:"sourceIndex"`
	SourceType       string `json:"sourceType"`
	DestIndex        string `json:"destIndex"`
	DestType         string `json:"destType"`
	PageSize         int    `json:"pageSize"`
	KeepAliveSeconds int    `json:"keepAliveSeconds"`
}

// ReindexResponse summarizes a reindex run.
type ReindexResponse struct {
	RunID           string  `json:"runId"`
	Pages           int     `json:"pages"`
	Hits            int     `json:"hits"`
	Indexed         int     `json:"indexed"`
	Failed          int     `json:"failed"`
	FailedPages     int     `json:"failedPages"`
	DurationSeconds float64 `json:"durationSeconds"`
	Error           string  `json:"error,omitempty"`
}

// Reindex handles POST /api/admin/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	if s.reindex == nil {
		writeError(w, http.StatusServiceUnavailable, CodeSearchDisabled, "search is not configured")
		return
	}
	var body ReindexRequest
	if !decodeBody(w, r, &body, true) {
		return
	}

	req := s.reindexReq
	if body.SourceIndex != "" {
		req.SourceIndex = body.SourceIndex
	}
	if body.SourceType != "" {
		req.SourceType = body.SourceType
	}
	if body.DestIndex != "" {
		req.DestIndex = body.DestIndex
	}
	if body.DestType != "" {
		req.DestType = body.DestType
	}
	if body.PageSize > 0 {
		req.PageSize = body.PageSize
	}
	if body.KeepAliveSeconds > 0 {
		req.KeepAlive = time.Duration(body.KeepAliveSeconds) * time.Second
	}

	res, err := s.reindex.Run(r.Context(), req)
	if res == nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := reindexResponse(res)
	if err != nil {
		// A scroll failure ends the run early; report what was copied.
		logpkg.FromContext(r.Context(), s.logger).Warn("reindex aborted", zap.String("run_id", res.RunID), zap.Error(err))
		out.Error = safeDomainMessage(err)
		writeJSON(w, http.StatusBadGateway, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func reindexResponse(res *reindexuc.Result) ReindexResponse {
	return ReindexResponse{
		RunID:           res.RunID,
		Pages:           res.Pages,
		Hits:            res.Hits,
		Indexed:         res.Indexed,
		Failed:          res.Failed,
		FailedPages:     res.FailedPages,
		DurationSeconds: res.Duration.Seconds(),
	}
}

// CreateIndex handles POST /api/admin/indexes/{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	if err := s.search.CreateIndex(r.Context(), chirouter.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DropIndex handles DELETE /api/admin/indexes/{index}.
func (s *Server) DropIndex(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	if err := s.search.DropIndex(r.Context(), chirouter.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshIndex handles POST /api/admin/indexes/{index}/refresh.
func (s *Server) RefreshIndex(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	if err := s.search.RefreshIndex(r.Context(), chirouter.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateMapping handles POST /api/admin/mapping.
func (s *Server) CreateMapping(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	if err := s.search.CreateGeoPointMapping(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Optimize handles POST /api/admin/optimize.
func (s *Server) Optimize(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	if err := s.search.Optimize(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/admin/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	stats, err := s.search.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

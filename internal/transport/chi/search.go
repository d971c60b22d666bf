package chi

import (
	"net/http"

	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
)

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Items []map[string]any `json:"items"`
	Total int              `json:"total"`
}

// Search handles GET /api/search?q=&limit=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	var (
		q     string
		limit int
	)
	if !queryParams(w, r.URL.Query(), map[string]any{"q": &q, "limit": &limit}) {
		return
	}

	beans, err := s.search.Search(r.Context(), q, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items, err := s.entities.Views(beans)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// FacetsRequest maps a filter key to its accepted values. Date fields take
// {"from": ..., "to": ...} objects, other keys take plain terms.
type FacetsRequest map[string][]any

// Facets handles POST /api/search/facets?refresh=.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request) {
	if !s.searchEnabled(w) {
		return
	}
	var refresh bool
	if !queryParams(w, r.URL.Query(), map[string]any{"refresh": &refresh}) {
		return
	}
	req := FacetsRequest{}
	if !decodeBody(w, r, &req, true) {
		return
	}

	expr, err := s.search.ParseFilters(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	facets, err := s.search.Facets(r.Context(), expr, refresh)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if facets == nil {
		facets = searchuc.Facets{}
	}
	writeJSON(w, http.StatusOK, facets)
}

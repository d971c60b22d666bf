package chi

import (
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
)

// PageResponse is one page of an entity listing.
type PageResponse struct {
	Items  []map[string]any `json:"items"`
	Total  int              `json:"total"`
	Offset int              `json:"offset"`
	Limit  int              `json:"limit"`
}

// ListEntityNames handles GET /api/entities.
func (s *Server) ListEntityNames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"entities": s.entities.Names()})
}

// ListEntities handles GET /api/entities/{entity}.
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	var offset, limit int
	if !queryParams(w, r.URL.Query(), map[string]any{"offset": &offset, "limit": &limit}) {
		return
	}

	page, err := s.entities.List(r.Context(), chirouter.URLParam(r, "entity"), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{
		Items:  page.Items,
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

// GetEntity handles GET /api/entities/{entity}/{id}?expand=.
func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	var expand bool
	if !queryParams(w, r.URL.Query(), map[string]any{"expand": &expand}) {
		return
	}

	view, err := s.entities.Get(r.Context(), chirouter.URLParam(r, "entity"), chirouter.URLParam(r, "id"), expand)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateEntity handles POST /api/entities/{entity}.
func (s *Server) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var view map[string]any
	if !decodeBody(w, r, &view, false) {
		return
	}

	out, err := s.entities.Create(r.Context(), chirouter.URLParam(r, "entity"), view)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateEntity handles PUT /api/entities/{entity}/{id}.
func (s *Server) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	var view map[string]any
	if !decodeBody(w, r, &view, false) {
		return
	}

	out, err := s.entities.Update(r.Context(), chirouter.URLParam(r, "entity"), chirouter.URLParam(r, "id"), view)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteEntity handles DELETE /api/entities/{entity}/{id}.
func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	if err := s.entities.Delete(r.Context(), chirouter.URLParam(r, "entity"), chirouter.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

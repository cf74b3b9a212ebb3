package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type textResponse struct {
	Culture string `json:"culture"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

// handleGetText reads one field, falling back to the service culture.
func (s *Server) handleGetText(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	culture := chi.URLParam(r, "culture")
	field := chi.URLParam(r, "field")

	value, err := s.service.Text(r.Context(), chi.URLParam(r, "kind"), id, culture, field)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Culture: culture, Field: field, Value: value})
}

// handleSetText writes the fields of a {"field": "value"} body in one upsert.
func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	var values map[string]string
	if !decodeJSON(w, r, &values) {
		return
	}
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "no fields given")
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	if err := s.service.SetText(ctx, chi.URLParam(r, "kind"), id, chi.URLParam(r, "culture"), values); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

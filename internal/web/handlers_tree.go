package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/qubit/internal/core"
)

// maxJSONBody bounds request bodies of the tree and translation routes.
const maxJSONBody = 1 << 20

type insertRequest struct {
	ParentID int64          `json:"parent_id"`
	Columns  map[string]any `json:"columns,omitempty"`
}

type moveRequest struct {
	ParentID *int64 `json:"parent_id"`
}

func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Kinds())
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.service.Roots(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	n, err := s.service.Get(r.Context(), chi.URLParam(r, "kind"), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	s.listNodes(w, r, s.service.Children)
}

func (s *Server) handleSubtree(w http.ResponseWriter, r *http.Request) {
	s.listNodes(w, r, s.service.Subtree)
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	s.listNodes(w, r, s.service.Ancestors)
}

type listFunc func(ctx context.Context, kind string, id int64) ([]core.NodeView, error)

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request, list listFunc) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	nodes, err := list(r.Context(), chi.URLParam(r, "kind"), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// handleInsert creates a node. parent_id 0 or absent makes a new root.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParentID < 0 {
		writeError(w, http.StatusBadRequest, "parent_id must not be negative")
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	n, err := s.service.Insert(ctx, chi.URLParam(r, "kind"), req.ParentID, req.Columns)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// handleMove re-parents a node. parent_id is required; 0 makes it a root.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParentID == nil || *req.ParentID < 0 {
		writeError(w, http.StatusBadRequest, "parent_id is required")
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	n, err := s.service.Move(ctx, chi.URLParam(r, "kind"), id, *req.ParentID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	ctx := withRequestMetadata(r.Context(), r)
	removed, err := s.service.Delete(ctx, chi.URLParam(r, "kind"), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Verify(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleRebuild renumbers the forest and answers with a fresh report.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	ctx := withRequestMetadata(r.Context(), r)
	if err := s.service.Rebuild(ctx, kind); err != nil {
		respondError(w, r, err)
		return
	}
	report, err := s.service.Verify(ctx, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// nodeID parses the {id} segment, answering 400 when it is not a number.
func nodeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "node id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

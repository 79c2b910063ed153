package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"planboard/internal/core"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.entities.ListProjects(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.entities.CreateProject(r.Context(), p)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var p core.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	p.ID = id

	p.Normalize()
	if err := p.Validate(); err != nil {
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.entities.UpdateProject(r.Context(), p); err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.entities.DeleteProject(r.Context(), id); err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	w.WriteHeader(http.StatusNoContent)
}

// progressRequest carries the raw progress value. The value is accepted as a
// JSON string or number and coerced; out-of-range and malformed input is
// clamped, never rejected.
type progressRequest struct {
	Progress json.RawMessage `json:"progress"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	raw := string(req.Progress)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	stored, err := s.progress.UpdateProgress(r.Context(), id, raw)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusOK, map[string]int{"progress": stored})
}

// pathID parses the {id} route parameter, writing a problem response when it
// is not a valid integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

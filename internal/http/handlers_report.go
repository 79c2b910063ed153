package http

import (
	"log/slog"
	"net/http"

	"planboard/internal/core"
)

// handleGenerateReport computes a report for the requested scope, archives it
// as a snapshot, and returns the snapshot. Generation always recomputes; the
// cache only serves previews.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	scope := core.ParseScope(r.URL.Query().Get("scope"))

	snapshot, err := s.reports.Generate(r.Context(), scope)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.reportCache.Set(scope.String(), snapshot.Report)
	writeJSON(w, r, http.StatusCreated, snapshot)
}

// handlePreviewReport computes a report without archiving it. Results are
// cached per scope until an entity write invalidates them.
func (s *Server) handlePreviewReport(w http.ResponseWriter, r *http.Request) {
	scope := core.ParseScope(r.URL.Query().Get("scope"))
	key := scope.String()

	if report, ok := s.reportCache.Get(key); ok {
		slog.DebugContext(r.Context(), "report cache hit", "scope", key)
		writeJSON(w, r, http.StatusOK, report)
		return
	}

	report, err := s.reports.Preview(r.Context(), scope)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.reportCache.Set(key, report)
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.archive.ListSnapshots(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshots)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	snapshot, err := s.archive.GetSnapshot(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot)
}

package http

import (
	"encoding/json"
	"net/http"

	"planboard/internal/core"
)

// Budgets, expenses, and tasks share the same shape of handler: list everything,
// or decode, normalize, validate, create, and invalidate cached reports.

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.entities.ListBudgets(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	b.Normalize()
	if err := b.Validate(); err != nil {
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.entities.CreateBudget(r.Context(), b)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.entities.ListExpenses(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	if err := e.Validate(); err != nil {
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.entities.CreateExpense(r.Context(), e)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.entities.ListTasks(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t core.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	created, err := s.entities.CreateTask(r.Context(), t)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	s.invalidateReportCache()
	writeJSON(w, r, http.StatusCreated, created)
}

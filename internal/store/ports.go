// Package store declares the ports the report engine's collaborators
// implement. The aggregation core itself never touches these; callers fetch a
// snapshot of records through them, run the pure computation, then persist
// the result.
package store

import (
	"context"
	"errors"
	"time"

	"planboard/internal/core"
)

// ErrNotFound is returned when an addressed record does not exist.
var ErrNotFound = errors.New("record not found")

type (
	ProjectStore interface {
		ListProjects(ctx context.Context) ([]core.Project, error)
		CreateProject(ctx context.Context, p core.Project) (core.Project, error)
		UpdateProject(ctx context.Context, p core.Project) error
		DeleteProject(ctx context.Context, id int64) error
		// SetProjectProgress mutates only the progress attribute.
		// Last write wins; there is no version check.
		SetProjectProgress(ctx context.Context, id int64, progress int) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	}

	TaskStore interface {
		ListTasks(ctx context.Context) ([]core.Task, error)
		CreateTask(ctx context.Context, t core.Task) (core.Task, error)
	}

	// EntityStore is the full entity collaborator.
	EntityStore interface {
		ProjectStore
		BudgetStore
		ExpenseStore
		TaskStore
	}

	// ReportArchive keeps the capped, newest-first snapshot log. Appending
	// enforces the cap; snapshots are immutable once stored.
	ReportArchive interface {
		AppendSnapshot(ctx context.Context, report core.ReportData) (core.Snapshot, error)
		ListSnapshots(ctx context.Context) ([]core.Snapshot, error)
		GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error)
	}

	ScheduleStore interface {
		ListSchedules(ctx context.Context) ([]core.ReportSchedule, error)
		CreateSchedule(ctx context.Context, s core.ReportSchedule) (core.ReportSchedule, error)
		MarkScheduleRun(ctx context.Context, id int64, at time.Time) error
	}

	AlertStore interface {
		// CreateAlert records an alert, unless one with the same snapshot,
		// project, and kind already exists.
		CreateAlert(ctx context.Context, a core.Alert) error
		ListAlerts(ctx context.Context) ([]core.Alert, error)
	}
)

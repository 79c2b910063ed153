// Package memory is the in-memory entity store and report archive. It backs
// local development and tests; data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"planboard/internal/core"
	"planboard/internal/store"
)

type Store struct {
	mu sync.Mutex

	projects []core.Project
	budgets  []core.Budget
	expenses []core.Expense
	tasks    []core.Task

	snapshots []core.Snapshot
	schedules []core.ReportSchedule
	alerts    []core.Alert

	nextID map[string]int64
}

var (
	_ store.EntityStore   = (*Store)(nil)
	_ store.ReportArchive = (*Store)(nil)
	_ store.ScheduleStore = (*Store)(nil)
	_ store.AlertStore    = (*Store)(nil)
)

func New() *Store {
	return &Store{nextID: make(map[string]int64)}
}

func (s *Store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Project(nil), s.projects...), nil
}

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("project")
	s.projects = append(s.projects, p)
	return p, nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteProject(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SetProjectProgress(_ context.Context, id int64, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].Progress = progress
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id("budget")
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id("expense")
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) ListTasks(_ context.Context) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Task(nil), s.tasks...), nil
}

func (s *Store) CreateTask(_ context.Context, t core.Task) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id("task")
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *Store) AppendSnapshot(_ context.Context, report core.ReportData) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := core.Snapshot{
		ID:        s.id("snapshot"),
		CreatedAt: time.Now(),
		Report:    report,
	}
	s.snapshots = core.Archive(s.snapshots, snap)
	return snap, nil
}

func (s *Store) ListSnapshots(_ context.Context) ([]core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Snapshot(nil), s.snapshots...), nil
}

func (s *Store) GetSnapshot(_ context.Context, id int64) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.snapshots {
		if snap.ID == id {
			return snap, nil
		}
	}
	return core.Snapshot{}, store.ErrNotFound
}

func (s *Store) ListSchedules(_ context.Context) ([]core.ReportSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ReportSchedule(nil), s.schedules...), nil
}

func (s *Store) CreateSchedule(_ context.Context, sched core.ReportSchedule) (core.ReportSchedule, error) {
	if err := sched.Validate(); err != nil {
		return core.ReportSchedule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sched.ID = s.id("schedule")
	s.schedules = append(s.schedules, sched)
	return sched, nil
}

func (s *Store) MarkScheduleRun(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			s.schedules[i].LastRun = at
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateAlert(_ context.Context, a core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.alerts {
		if ex.SnapshotID == a.SnapshotID && ex.ProjectID == a.ProjectID && ex.Kind == a.Kind {
			return nil
		}
	}
	a.ID = s.id("alert")
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *Store) ListAlerts(_ context.Context) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Alert(nil), s.alerts...), nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"planboard/internal/core"
	"planboard/internal/store/memory"
)

type recordingPublisher struct {
	snapshotIDs []int64
	scopes      []string
	err         error
}

func (p *recordingPublisher) PublishReportGenerated(_ context.Context, snapshotID int64, scope string) error {
	if p.err != nil {
		return p.err
	}
	p.snapshotIDs = append(p.snapshotIDs, snapshotID)
	p.scopes = append(p.scopes, scope)
	return nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	p1, err := s.CreateProject(ctx, core.Project{
		Name:         "Launchpad",
		PlanStatus:   core.StatusDevelopment,
		ReportStatus: core.StatusActive,
		Progress:     40,
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if _, err := s.CreateBudget(ctx, core.Budget{
		ProjectID: &p1.ID,
		Name:      "Build",
		Amount:    core.Cents(500000),
		Spent:     core.Cents(200000),
		Category:  core.CategoryDevelopment,
		Type:      core.BudgetExpense,
	}); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	if _, err := s.CreateTask(ctx, core.Task{ProjectID: &p1.ID, Completed: true}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := s.CreateTask(ctx, core.Task{ProjectID: &p1.ID}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	return s
}

func TestReportServiceGenerate(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	pub := &recordingPublisher{}
	svc := NewReportService(s, s, pub)

	snapshot, err := svc.Generate(ctx, core.ScopeAll())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if snapshot.Report.TotalProjects != 1 {
		t.Errorf("TotalProjects = %d, want 1", snapshot.Report.TotalProjects)
	}
	if snapshot.Report.TotalBudget != 500000 {
		t.Errorf("TotalBudget = %d, want 500000", snapshot.Report.TotalBudget)
	}
	if snapshot.Report.CompletedTasks != 1 || snapshot.Report.PendingTasks != 1 {
		t.Errorf("tasks = %d/%d, want 1/1", snapshot.Report.CompletedTasks, snapshot.Report.PendingTasks)
	}

	archived, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("archived %d snapshots, want 1", len(archived))
	}
	if archived[0].ID != snapshot.ID {
		t.Errorf("archived snapshot ID = %d, want %d", archived[0].ID, snapshot.ID)
	}

	if len(pub.snapshotIDs) != 1 || pub.snapshotIDs[0] != snapshot.ID {
		t.Errorf("published ids = %v, want [%d]", pub.snapshotIDs, snapshot.ID)
	}
	if pub.scopes[0] != "all" {
		t.Errorf("published scope = %q, want %q", pub.scopes[0], "all")
	}
}

func TestReportServiceGeneratePublishFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewReportService(s, s, pub)

	snapshot, err := svc.Generate(ctx, core.ScopeAll())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	archived, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(archived) != 1 || archived[0].ID != snapshot.ID {
		t.Error("snapshot should be archived even when publish fails")
	}
}

func TestReportServiceGenerateNilPublisher(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	svc := NewReportService(s, s, nil)

	if _, err := svc.Generate(ctx, core.ScopeAll()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestReportServicePreviewDoesNotArchive(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	svc := NewReportService(s, s, nil)

	report, err := svc.Preview(ctx, core.ScopeAll())
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if report.TotalProjects != 1 {
		t.Errorf("TotalProjects = %d, want 1", report.TotalProjects)
	}

	archived, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(archived) != 0 {
		t.Errorf("archived %d snapshots, want 0", len(archived))
	}
}

func TestProgressServiceUpdateProgress(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	svc := NewProgressService(s)

	projects, _ := s.ListProjects(ctx)
	id := projects[0].ID

	tests := []struct {
		raw  string
		want int
	}{
		{"42", 42},
		{"150", 100},
		{"-5", 0},
		{"abc", 0},
		{"99.6", 100},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := svc.UpdateProgress(ctx, id, tt.raw)
			if err != nil {
				t.Fatalf("UpdateProgress() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UpdateProgress(%q) = %d, want %d", tt.raw, got, tt.want)
			}

			stored, _ := s.ListProjects(ctx)
			if stored[0].Progress != tt.want {
				t.Errorf("stored progress = %d, want %d", stored[0].Progress, tt.want)
			}
		})
	}
}

func TestProgressServiceUnknownProject(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	svc := NewProgressService(s)

	if _, err := svc.UpdateProgress(ctx, 999, "50"); err == nil {
		t.Error("expected error for unknown project")
	}
}

func TestScheduleProcessor(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	reports := NewReportService(s, s, nil)
	proc := NewScheduleProcessor(s, reports)

	daily, err := s.CreateSchedule(ctx, core.ReportSchedule{Scope: "all", Every: core.Daily})
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if _, err := s.CreateSchedule(ctx, core.ReportSchedule{Scope: "all", Every: core.Weekly}); err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	processed, err := proc.ProcessDueSchedules(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDueSchedules() error = %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2", processed)
	}

	snapshots, _ := s.ListSnapshots(ctx)
	if len(snapshots) != 2 {
		t.Errorf("archived %d snapshots, want 2", len(snapshots))
	}

	// Same day again: daily schedule already ran, weekly ran within 7 days.
	processed, err = proc.ProcessDueSchedules(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ProcessDueSchedules() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}

	// Next day: only the daily schedule fires.
	processed, err = proc.ProcessDueSchedules(ctx, now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ProcessDueSchedules() error = %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}

	schedules, _ := s.ListSchedules(ctx)
	for _, sched := range schedules {
		if sched.ID == daily.ID && !sched.LastRun.Equal(now.AddDate(0, 0, 1)) {
			t.Errorf("daily LastRun = %v, want %v", sched.LastRun, now.AddDate(0, 0, 1))
		}
	}
}

// staleFrequencyStore serves a schedule whose frequency is no longer
// registered, as happens after a checker registration is removed.
type staleFrequencyStore struct {
	marked []int64
}

func (s *staleFrequencyStore) ListSchedules(_ context.Context) ([]core.ReportSchedule, error) {
	return []core.ReportSchedule{{ID: 1, Scope: "all", Every: "hourly"}}, nil
}

func (s *staleFrequencyStore) CreateSchedule(_ context.Context, sched core.ReportSchedule) (core.ReportSchedule, error) {
	return sched, nil
}

func (s *staleFrequencyStore) MarkScheduleRun(_ context.Context, id int64, _ time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func TestScheduleProcessorUnknownFrequencySkipped(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	reports := NewReportService(s, s, nil)
	stale := &staleFrequencyStore{}
	proc := NewScheduleProcessor(stale, reports)

	processed, err := proc.ProcessDueSchedules(ctx, time.Now())
	if err != nil {
		t.Fatalf("ProcessDueSchedules() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
	if len(stale.marked) != 0 {
		t.Errorf("marked %v, want none", stale.marked)
	}
}

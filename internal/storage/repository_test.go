package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"planboard/internal/core"
	"planboard/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "planboard_test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_ProjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.CreateProject(ctx, core.Project{
		Name:    "Website",
		Client:  "ACME",
		Color:   "#f97316",
		EndDate: core.NewDate(2026, 12, 31),
		Tags:    core.Tags{"go", "web"},
		Links:   []core.Link{{Title: "Repo", URL: "https://example.com"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.PlanStatus != core.StatusIdea || p.ReportStatus != core.StatusActive {
		t.Errorf("defaults not applied: %+v", p)
	}

	got, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Name != "Website" || len(got[0].Tags) != 2 || len(got[0].Links) != 1 {
		t.Errorf("round trip lost data: %+v", got[0])
	}
	if got[0].EndDate.Format("2006-01-02") != "2026-12-31" {
		t.Errorf("EndDate = %v", got[0].EndDate)
	}
}

func TestSQLiteRepository_SetProjectProgress(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p, _ := repo.CreateProject(ctx, core.Project{Name: "Site", Client: "ACME"})

	if err := repo.SetProjectProgress(ctx, p.ID, 73); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	got, _ := repo.ListProjects(ctx)
	if got[0].Progress != 73 {
		t.Errorf("Progress = %d, want 73", got[0].Progress)
	}
	if got[0].Client != "ACME" {
		t.Errorf("progress update must not touch other columns: %+v", got[0])
	}

	err := repo.SetProjectProgress(ctx, 999, 10)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_NullableProjectID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	unlinked, err := repo.CreateBudget(ctx, core.Budget{Name: "Misc"})
	if err != nil {
		t.Fatalf("create unlinked budget: %v", err)
	}
	if unlinked.ProjectID != nil {
		t.Errorf("ProjectID = %v, want nil", unlinked.ProjectID)
	}

	p, _ := repo.CreateProject(ctx, core.Project{Name: "Site"})
	linked, err := repo.CreateBudget(ctx, core.Budget{Name: "Site budget", ProjectID: &p.ID, Amount: 5000})
	if err != nil {
		t.Fatalf("create linked budget: %v", err)
	}
	if linked.ProjectID == nil || *linked.ProjectID != p.ID {
		t.Errorf("ProjectID = %v, want %d", linked.ProjectID, p.ID)
	}

	budgets, _ := repo.ListBudgets(ctx)
	if len(budgets) != 2 {
		t.Fatalf("len = %d, want 2", len(budgets))
	}
	if budgets[0].ProjectID != nil {
		t.Errorf("unlinked budget came back with project id %v", *budgets[0].ProjectID)
	}
}

func TestSQLiteRepository_SnapshotArchiveCap(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 15; i++ {
		if _, err := repo.AppendSnapshot(ctx, core.ReportData{Scope: "all", TotalProjects: i}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	snaps, err := repo.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != core.ArchiveLimit {
		t.Fatalf("len = %d, want %d", len(snaps), core.ArchiveLimit)
	}
	if snaps[0].Report.TotalProjects != 14 {
		t.Errorf("newest snapshot TotalProjects = %d, want 14", snaps[0].Report.TotalProjects)
	}
	if snaps[len(snaps)-1].Report.TotalProjects != 5 {
		t.Errorf("oldest kept snapshot TotalProjects = %d, want 5", snaps[len(snaps)-1].Report.TotalProjects)
	}
}

func TestSQLiteRepository_GetSnapshotNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetSnapshot(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_AlertIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	a := core.Alert{SnapshotID: 1, ProjectID: 2, Kind: core.AlertOverBudget, Message: "over"}

	if err := repo.CreateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	alerts, _ := repo.ListAlerts(ctx)
	if len(alerts) != 1 {
		t.Errorf("len = %d, want 1", len(alerts))
	}
}

func TestSQLiteRepository_Schedules(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s, err := repo.CreateSchedule(ctx, core.ReportSchedule{Every: core.Daily})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Scope != "all" {
		t.Errorf("Scope = %q, want all default", s.Scope)
	}

	list, _ := repo.ListSchedules(ctx)
	if len(list) != 1 || !list[0].LastRun.IsZero() {
		t.Fatalf("list = %+v", list)
	}

	if err := repo.MarkScheduleRun(ctx, s.ID, time.Now()); err != nil {
		t.Fatalf("mark run: %v", err)
	}
	list, _ = repo.ListSchedules(ctx)
	if list[0].LastRun.IsZero() {
		t.Error("LastRun not recorded")
	}

	if err := repo.MarkScheduleRun(ctx, 999, time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown schedule err = %v, want ErrNotFound", err)
	}
}

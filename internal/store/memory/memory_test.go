package memory

import (
	"context"
	"errors"
	"testing"

	"planboard/internal/core"
	"planboard/internal/store"
)

func TestStore_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	p, err := s.CreateProject(ctx, core.Project{Name: "Website"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Error("create should assign an id")
	}
	if p.PlanStatus != core.StatusIdea || p.Progress != 0 {
		t.Errorf("defaults not applied: %+v", p)
	}

	p.Name = "Website v2"
	if err := s.UpdateProject(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.ListProjects(ctx)
	if len(got) != 1 || got[0].Name != "Website v2" {
		t.Errorf("list after update = %+v", got)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteProject(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestStore_SetProjectProgressOnlyTouchesProgress(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, _ := s.CreateProject(ctx, core.Project{Name: "Site", Client: "ACME"})

	if err := s.SetProjectProgress(ctx, p.ID, 42); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	got, _ := s.ListProjects(ctx)
	if got[0].Progress != 42 {
		t.Errorf("Progress = %d, want 42", got[0].Progress)
	}
	if got[0].Client != "ACME" || got[0].Name != "Site" {
		t.Errorf("progress update altered other fields: %+v", got[0])
	}

	if err := s.SetProjectProgress(ctx, 999, 10); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestStore_SnapshotArchiveCap(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 15; i++ {
		if _, err := s.AppendSnapshot(ctx, core.ReportData{Scope: "all"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	snaps, _ := s.ListSnapshots(ctx)
	if len(snaps) != core.ArchiveLimit {
		t.Fatalf("len = %d, want %d", len(snaps), core.ArchiveLimit)
	}
	if snaps[0].ID <= snaps[1].ID {
		t.Errorf("snapshots not newest-first: %d then %d", snaps[0].ID, snaps[1].ID)
	}
}

func TestStore_AlertIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := core.Alert{SnapshotID: 1, ProjectID: 2, Kind: core.AlertOverdue}

	if err := s.CreateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAlert(ctx, a); err != nil {
		t.Fatal(err)
	}
	alerts, _ := s.ListAlerts(ctx)
	if len(alerts) != 1 {
		t.Errorf("len = %d, duplicate (snapshot, project, kind) must collapse", len(alerts))
	}
}

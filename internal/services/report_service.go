package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"planboard/internal/core"
	applog "planboard/internal/log"
	"planboard/internal/store"
)

// ReportPublisher announces archived snapshots to downstream consumers.
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, snapshotID int64, scope string) error
}

// ReportService orchestrates report generation: it gathers all entities,
// runs the aggregation, archives the snapshot, and notifies consumers.
type ReportService struct {
	entities  store.EntityStore
	archive   store.ReportArchive
	publisher ReportPublisher
	logger    *applog.StructuredLogger
}

// NewReportService creates a report service. publisher may be nil, in which
// case snapshots are archived without notification.
func NewReportService(entities store.EntityStore, archive store.ReportArchive, publisher ReportPublisher) *ReportService {
	return &ReportService{
		entities:  entities,
		archive:   archive,
		publisher: publisher,
		logger:    applog.NewStructuredLogger(applog.Default()),
	}
}

// Generate computes a report for the given scope, archives it, and publishes
// a notification. A publish failure does not fail the operation; the snapshot
// is already archived.
func (s *ReportService) Generate(ctx context.Context, scope core.Scope) (core.Snapshot, error) {
	input, err := s.gather(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}

	report := core.ComputeReport(input, scope, time.Now())

	snapshot, err := s.archive.AppendSnapshot(ctx, report)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("archive snapshot: %w", err)
	}

	if err := s.publish(ctx, snapshot.ID, scope.String()); err != nil {
		s.logger.LogError(ctx, "failed to publish report notification",
			err, applog.ComponentReport, applog.OpGenerate,
			applog.NewFields().WithReport(snapshot.ID, scope.String()))
	}

	s.logger.LogReportGenerated(ctx, snapshot.ID, scope.String(), report.TotalProjects)

	return snapshot, nil
}

// Preview computes a report without archiving or publishing it.
func (s *ReportService) Preview(ctx context.Context, scope core.Scope) (core.ReportData, error) {
	input, err := s.gather(ctx)
	if err != nil {
		return core.ReportData{}, err
	}
	return core.ComputeReport(input, scope, time.Now()), nil
}

// gather lists the four entity sets concurrently; the aggregation needs all
// of them regardless of scope.
func (s *ReportService) gather(ctx context.Context) (core.ReportInput, error) {
	var input core.ReportInput

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := s.entities.ListProjects(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		input.Projects = projects
		return nil
	})
	g.Go(func() error {
		budgets, err := s.entities.ListBudgets(ctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		input.Budgets = budgets
		return nil
	})
	g.Go(func() error {
		expenses, err := s.entities.ListExpenses(ctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		input.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		tasks, err := s.entities.ListTasks(ctx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		input.Tasks = tasks
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.ReportInput{}, err
	}

	return input, nil
}

func (s *ReportService) publish(ctx context.Context, snapshotID int64, scope string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "no publisher configured, skipping report notification")
		return nil
	}
	return s.publisher.PublishReportGenerated(ctx, snapshotID, scope)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"planboard/internal/core"
	"planboard/internal/store"
)

// ScheduleProcessor fires report schedules that are due.
type ScheduleProcessor struct {
	schedules store.ScheduleStore
	reports   *ReportService
}

// NewScheduleProcessor creates a new schedule processor.
func NewScheduleProcessor(schedules store.ScheduleStore, reports *ReportService) *ScheduleProcessor {
	return &ScheduleProcessor{
		schedules: schedules,
		reports:   reports,
	}
}

// ProcessDueSchedules generates a report for every schedule that is due and
// records the run. Returns the number of schedules processed.
func (p *ScheduleProcessor) ProcessDueSchedules(ctx context.Context, now time.Time) (int, error) {
	if p.schedules == nil || p.reports == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	schedules, err := p.schedules.ListSchedules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list report schedules: %w", err)
	}

	slog.InfoContext(ctx, "processing report schedules",
		"total", len(schedules),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, schedule := range schedules {
		checker, err := GetDuenessChecker(schedule.Every)
		if err != nil {
			slog.ErrorContext(ctx, "failed to resolve schedule frequency",
				"schedule_id", schedule.ID,
				"frequency", schedule.Every,
				"error", err)
			continue
		}

		if !checker.IsDue(schedule.LastRun, now) {
			continue
		}

		snapshot, err := p.reports.Generate(ctx, core.ParseScope(schedule.Scope))
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate scheduled report",
				"schedule_id", schedule.ID,
				"scope", schedule.Scope,
				"error", err)
			continue
		}

		if err := p.schedules.MarkScheduleRun(ctx, schedule.ID, now); err != nil {
			slog.ErrorContext(ctx, "failed to record schedule run",
				"schedule_id", schedule.ID,
				"error", err)
			// Continue anyway; the report was archived.
		}

		processedCount++
		slog.InfoContext(ctx, "scheduled report generated",
			"schedule_id", schedule.ID,
			"scope", schedule.Scope,
			"frequency", schedule.Every,
			"snapshot_id", snapshot.ID)
	}

	slog.InfoContext(ctx, "schedule processing complete",
		"processed", processedCount,
		"total_checked", len(schedules))

	return processedCount, nil
}

// Package worker turns archived report snapshots into alerts.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"planboard/internal/amqp"
	"planboard/internal/core"
	"planboard/internal/export"
	"planboard/internal/store"
)

// AlertWorker consumes report-generated notifications, inspects the archived
// snapshot, and records an alert for every over-budget or overdue project.
// Alert creation is idempotent per (snapshot, project, kind), so redelivered
// messages are harmless.
type AlertWorker struct {
	archive  store.ReportArchive
	alerts   store.AlertStore
	exporter export.SnapshotExporter
}

// NewAlertWorker creates an alert worker. exporter may be nil, in which case
// snapshots are not pushed to an external sheet.
func NewAlertWorker(archive store.ReportArchive, alerts store.AlertStore, exporter export.SnapshotExporter) *AlertWorker {
	return &AlertWorker{
		archive:  archive,
		alerts:   alerts,
		exporter: exporter,
	}
}

// HandleReportGenerated processes a single report notification.
func (w *AlertWorker) HandleReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	slog.InfoContext(ctx, "processing report notification",
		"snapshot_id", msg.SnapshotID,
		"scope", msg.Scope)

	snap, err := w.archive.GetSnapshot(ctx, msg.SnapshotID)
	if err != nil {
		return fmt.Errorf("get snapshot %d: %w", msg.SnapshotID, err)
	}

	created := 0
	for _, d := range snap.Report.ProjectDetails {
		if d.IsOverBudget {
			overrun := -d.Remaining
			alert := core.Alert{
				SnapshotID: snap.ID,
				ProjectID:  d.ProjectID,
				Kind:       core.AlertOverBudget,
				Message:    fmt.Sprintf("%s is over budget by %d cents", d.Name, overrun),
				CreatedAt:  snap.CreatedAt,
			}
			if err := w.alerts.CreateAlert(ctx, alert); err != nil {
				return fmt.Errorf("create over-budget alert for project %d: %w", d.ProjectID, err)
			}
			created++
		}

		if d.IsOverdue {
			alert := core.Alert{
				SnapshotID: snap.ID,
				ProjectID:  d.ProjectID,
				Kind:       core.AlertOverdue,
				Message:    fmt.Sprintf("%s is %d days past its end date", d.Name, -d.DaysRemaining),
				CreatedAt:  snap.CreatedAt,
			}
			if err := w.alerts.CreateAlert(ctx, alert); err != nil {
				return fmt.Errorf("create overdue alert for project %d: %w", d.ProjectID, err)
			}
			created++
		}
	}

	if w.exporter != nil {
		ref, err := w.exporter.ExportSnapshot(ctx, snap)
		if err != nil {
			// Alerts are already recorded; a sheet hiccup should not requeue
			// the message and duplicate the work.
			slog.ErrorContext(ctx, "failed to export snapshot",
				"snapshot_id", snap.ID, "error", err)
		} else {
			slog.InfoContext(ctx, "snapshot exported",
				"snapshot_id", snap.ID, "sheets_ref", ref)
		}
	}

	slog.InfoContext(ctx, "report notification processed",
		"snapshot_id", snap.ID,
		"alerts_created", created,
		"projects", len(snap.Report.ProjectDetails))

	return nil
}

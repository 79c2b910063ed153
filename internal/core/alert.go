package core

import "time"

// AlertKind classifies a report-derived alert.
type AlertKind string

const (
	AlertOverBudget AlertKind = "over_budget"
	AlertOverdue    AlertKind = "overdue"
)

// Alert records a condition the alert worker found in an archived snapshot.
// Alerts are facts about a snapshot, so one (snapshot, project, kind) triple
// is recorded at most once.
type Alert struct {
	ID         int64     `json:"id"`
	SnapshotID int64     `json:"snapshotId"`
	ProjectID  int64     `json:"projectId"`
	Kind       AlertKind `json:"kind"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

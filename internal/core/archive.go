package core

import "time"

// ArchiveLimit is how many snapshots the report archive retains.
const ArchiveLimit = 10

// Snapshot is an immutable captured report. Once archived it is never
// recomputed, even if the underlying records change; it represents a
// point-in-time view.
type Snapshot struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Report    ReportData `json:"report"`
}

// Archive prepends next to reports and truncates to the ArchiveLimit most
// recent entries, newest first. No deduplication, no identity merge. The
// input slice is not modified.
func Archive(reports []Snapshot, next Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(reports)+1)
	out = append(out, next)
	out = append(out, reports...)
	if len(out) > ArchiveLimit {
		out = out[:ArchiveLimit]
	}
	return out
}

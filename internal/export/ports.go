package export

import (
	"context"

	"planboard/internal/core"
)

// SnapshotExporter pushes an archived report snapshot to an external sink.
type SnapshotExporter interface {
	// ExportSnapshot writes a summary of the snapshot and returns a reference
	// to where it landed.
	ExportSnapshot(ctx context.Context, snap core.Snapshot) (ref string, err error)
}

// Package memory is an in-process snapshot exporter used in tests and when no
// external sheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"planboard/internal/core"
	"planboard/internal/export"
)

type Exporter struct {
	mu    sync.Mutex
	items []core.Snapshot
}

var _ export.SnapshotExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportSnapshot records the snapshot and returns a synthetic row reference.
func (e *Exporter) ExportSnapshot(_ context.Context, snap core.Snapshot) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append(e.items, snap)
	return fmt.Sprintf("mem:%d", len(e.items)), nil
}

// Exported returns a copy of everything exported so far.
func (e *Exporter) Exported() []core.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Snapshot(nil), e.items...)
}

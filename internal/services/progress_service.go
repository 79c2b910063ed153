package services

import (
	"context"
	"fmt"
	"log/slog"

	"planboard/internal/core"
	"planboard/internal/store"
)

// ProgressService applies progress updates to projects. Raw client input is
// coerced and clamped before it reaches the store; the update touches only
// the progress attribute and the last write wins.
type ProgressService struct {
	projects store.ProjectStore
}

func NewProgressService(projects store.ProjectStore) *ProgressService {
	return &ProgressService{projects: projects}
}

// UpdateProgress clamps raw into 0..100 and stores it. Returns the value
// actually stored.
func (s *ProgressService) UpdateProgress(ctx context.Context, projectID int64, raw string) (int, error) {
	progress := core.ClampProgress(raw)

	if err := s.projects.SetProjectProgress(ctx, projectID, progress); err != nil {
		return 0, fmt.Errorf("set progress for project %d: %w", projectID, err)
	}

	slog.InfoContext(ctx, "project progress updated",
		"project_id", projectID,
		"progress", progress,
		"raw", raw)

	return progress, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/authz"
	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const progressCacheTTL = 30 * time.Second

// Progress summarizes task completion for one project.
type Progress struct {
	Total      int64   `json:"total"`
	Completed  int64   `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// ProgressService computes completion statistics for a project's tasks.
type ProgressService interface {
	Progress(ctx context.Context, user *model.User, projectID uint) (*Progress, error)
}

type progressService struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	cache    *cache.Client
}

// NewProgressService creates a new progress service.
func NewProgressService(projects repository.ProjectRepository, tasks repository.TaskRepository, cache *cache.Client) ProgressService {
	return &progressService{
		projects: projects,
		tasks:    tasks,
		cache:    cache,
	}
}

// Progress authorizes the project, then counts its tasks. Read-only. Results
// are cached briefly; task writes invalidate the entry.
func (s *progressService) Progress(ctx context.Context, user *model.User, projectID uint) (*Progress, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}
	if !authz.CanAccessProject(project, user) {
		return nil, apperrors.ErrProjectAccessDenied
	}

	if data, _ := s.cache.Get(ctx, progressCacheKey(projectID)); data != nil {
		var cached Progress
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	total, completed, err := s.tasks.CountByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	progress := &Progress{
		Total:     total,
		Completed: completed,
	}
	if total > 0 {
		progress.Percentage = float64(completed) * 100.0 / float64(total)
	}

	if payload, err := json.Marshal(progress); err == nil {
		_ = s.cache.Set(ctx, progressCacheKey(projectID), payload, progressCacheTTL)
	}
	return progress, nil
}

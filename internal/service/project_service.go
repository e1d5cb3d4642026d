package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/authz"
	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const (
	projectCacheTTL = 5 * time.Minute
)

func projectCacheKey(id uint) string {
	return fmt.Sprintf("project:%d", id)
}

func progressCacheKey(projectID uint) string {
	return fmt.Sprintf("progress:%d", projectID)
}

// ProjectInput carries the caller-editable project fields.
type ProjectInput struct {
	Title       string
	Description string
}

// ProjectService exposes owner-scoped project operations. Every method takes
// the current user explicitly; there is no ambient session state.
type ProjectService interface {
	List(ctx context.Context, user *model.User) ([]model.Project, error)
	Get(ctx context.Context, user *model.User, id uint) (*model.Project, error)
	Create(ctx context.Context, user *model.User, input ProjectInput) (*model.Project, error)
	Update(ctx context.Context, user *model.User, id uint, input ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, user *model.User, id uint) error
}

type projectService struct {
	projects repository.ProjectRepository
	uow      repository.UnitOfWork
	cache    *cache.Client
}

// NewProjectService creates a new project service.
func NewProjectService(projects repository.ProjectRepository, uow repository.UnitOfWork, cache *cache.Client) ProjectService {
	return &projectService{
		projects: projects,
		uow:      uow,
		cache:    cache,
	}
}

// List returns all projects owned by user in store order.
func (s *projectService) List(ctx context.Context, user *model.User) ([]model.Project, error) {
	return s.projects.FindByOwnerID(ctx, user.ID)
}

// Get fetches a project by id and authorizes it against user. The fetch is
// cache-aside; the owner reference is immutable, so a cached row is as safe a
// basis for the ownership check as a fresh one.
func (s *projectService) Get(ctx context.Context, user *model.User, id uint) (*model.Project, error) {
	if data, _ := s.cache.Get(ctx, projectCacheKey(id)); data != nil {
		var cached model.Project
		if err := json.Unmarshal(data, &cached); err == nil {
			if !authz.CanAccessProject(&cached, user) {
				return nil, apperrors.ErrProjectAccessDenied
			}
			return &cached, nil
		}
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(project); err == nil {
		_ = s.cache.Set(ctx, projectCacheKey(id), payload, projectCacheTTL)
	}

	if !authz.CanAccessProject(project, user) {
		return nil, apperrors.ErrProjectAccessDenied
	}
	return project, nil
}

// Create validates the title and persists a new project owned by user.
func (s *projectService) Create(ctx context.Context, user *model.User, input ProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}

	project := &model.Project{
		Title:       title,
		Description: input.Description,
		OwnerID:     user.ID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Update overwrites title and description. The fetch, ownership check and
// write run in one transaction with a row lock. Owner never changes.
func (s *projectService) Update(ctx context.Context, user *model.User, id uint, input ProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}

	var updated *model.Project
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		project, err := repos.Projects.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProjectNotFound
			}
			return err
		}
		if !authz.CanAccessProject(project, user) {
			return apperrors.ErrProjectAccessDenied
		}

		project.Title = title
		project.Description = input.Description
		if err := repos.Projects.Save(ctx, project); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, projectCacheKey(id))
	return updated, nil
}

// Delete removes the project and all its tasks as one transaction.
func (s *projectService) Delete(ctx context.Context, user *model.User, id uint) error {
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		project, err := repos.Projects.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProjectNotFound
			}
			return err
		}
		if !authz.CanAccessProject(project, user) {
			return apperrors.ErrProjectAccessDenied
		}

		if err := repos.Tasks.DeleteByProjectID(ctx, id); err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		if err := repos.Projects.Delete(ctx, project); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, projectCacheKey(id))
	_ = s.cache.Delete(ctx, progressCacheKey(id))
	return nil
}

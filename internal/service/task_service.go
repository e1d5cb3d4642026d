package service

import (
	"context"
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

const defaultPageSize = 10

// TaskInput carries the caller-editable task fields.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
	ProjectID   uint
}

// TaskFilter describes a filtered, sorted, paginated task listing request.
// Zero values fall back to the defaults: sort by id ascending, page 0,
// page size 10.
type TaskFilter struct {
	ProjectID     uint
	Search        string
	Completed     *bool
	SortBy        string
	SortDirection string
	Page          int
	Size          int
}

// TaskPage is one bounded slice of a filtered listing plus its pagination
// metadata.
type TaskPage struct {
	Tasks         []model.Task
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

// TaskService exposes owner-scoped task operations.
type TaskService interface {
	ListByProject(ctx context.Context, user *model.User, projectID uint) ([]model.Task, error)
	ListFiltered(ctx context.Context, user *model.User, filter TaskFilter) (*TaskPage, error)
	Get(ctx context.Context, user *model.User, id uint) (*model.Task, error)
	Create(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error)
	Update(ctx context.Context, user *model.User, id uint, input TaskInput) (*model.Task, error)
	Delete(ctx context.Context, user *model.User, id uint) error
}

type taskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	uow      repository.UnitOfWork
	cache    *cache.Client
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, uow repository.UnitOfWork, cache *cache.Client) TaskService {
	return &taskService{
		tasks:    tasks,
		projects: projects,
		uow:      uow,
		cache:    cache,
	}
}

// fetchAuthorizedProject resolves a project for the read paths: not-found
// wins over the ownership outcome.
func (s *taskService) fetchAuthorizedProject(ctx context.Context, user *model.User, projectID uint) (*model.Project, error) {
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
	return project, nil
}

// ListByProject returns every task of the project, unfiltered, in store order.
func (s *taskService) ListByProject(ctx context.Context, user *model.User, projectID uint) ([]model.Task, error) {
	if _, err := s.fetchAuthorizedProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	return s.tasks.FindByProjectID(ctx, projectID)
}

// ListFiltered authorizes the project, then runs the bounded query described
// by filter and wraps the result in a page descriptor.
func (s *taskService) ListFiltered(ctx context.Context, user *model.User, filter TaskFilter) (*TaskPage, error) {
	if _, err := s.fetchAuthorizedProject(ctx, user, filter.ProjectID); err != nil {
		return nil, err
	}

	column, ok := repository.SortColumn(filter.SortBy)
	if !ok {
		return nil, apperrors.ErrInvalidSortField
	}

	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.Size
	if size <= 0 {
		size = defaultPageSize
	}

	query := repository.TaskQuery{
		ProjectID:   filter.ProjectID,
		Search:      filter.Search,
		Completed:   filter.Completed,
		OrderColumn: column,
		Descending:  strings.EqualFold(filter.SortDirection, "desc"),
		Offset:      page * size,
		Limit:       size,
	}

	tasks, total, err := s.tasks.FindPage(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return newTaskPage(tasks, page, size, total), nil
}

// newTaskPage computes the pagination metadata for one result slice.
func newTaskPage(tasks []model.Task, page, size int, total int64) *TaskPage {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &TaskPage{
		Tasks:         tasks,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          totalPages == 0 || page == totalPages-1,
	}
}

// Get fetches a task by id; ownership is judged through the task's project.
func (s *taskService) Get(ctx context.Context, user *model.User, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	if !authz.CanAccessTask(task, user) {
		return nil, apperrors.ErrTaskAccessDenied
	}
	return task, nil
}

// Create validates the input, authorizes the target project and persists the
// task, all within one transaction so the project cannot vanish between the
// ownership check and the insert.
func (s *taskService) Create(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}

	var created *model.Task
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		project, err := repos.Projects.FindByIDForUpdate(ctx, input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProjectNotFound
			}
			return err
		}
		if !authz.CanAccessProject(project, user) {
			return apperrors.ErrProjectAccessDenied
		}

		task := &model.Task{
			Title:       title,
			Description: input.Description,
			DueDate:     input.DueDate,
			Completed:   input.Completed,
			ProjectID:   project.ID,
			Project:     *project,
		}
		if err := repos.Tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, progressCacheKey(created.ProjectID))
	return created, nil
}

// Update overwrites the task fields and, when the request names a different
// project, rebinds the task after authorizing the target against the same
// user. A foreign target fails without touching the original binding.
func (s *taskService) Update(ctx context.Context, user *model.User, id uint, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.ErrTitleRequired
	}

	var updated *model.Task
	var previousProjectID uint
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		task, err := repos.Tasks.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTaskNotFound
			}
			return err
		}
		if !authz.CanAccessTask(task, user) {
			return apperrors.ErrTaskAccessDenied
		}
		previousProjectID = task.ProjectID

		if input.ProjectID != task.ProjectID {
			target, err := repos.Projects.FindByIDForUpdate(ctx, input.ProjectID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrProjectNotFound
				}
				return err
			}
			if !authz.CanAccessProject(target, user) {
				return apperrors.ErrTargetProjectAccessDenied
			}
			task.ProjectID = target.ID
			task.Project = *target
		}

		task.Title = title
		task.Description = input.Description
		task.DueDate = input.DueDate
		task.Completed = input.Completed
		if err := repos.Tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, progressCacheKey(previousProjectID))
	if updated.ProjectID != previousProjectID {
		_ = s.cache.Delete(ctx, progressCacheKey(updated.ProjectID))
	}
	return updated, nil
}

// Delete removes the task after the usual fetch-then-authorize sequence.
func (s *taskService) Delete(ctx context.Context, user *model.User, id uint) error {
	var projectID uint
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		task, err := repos.Tasks.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTaskNotFound
			}
			return err
		}
		if !authz.CanAccessTask(task, user) {
			return apperrors.ErrTaskAccessDenied
		}
		projectID = task.ProjectID
		return repos.Tasks.Delete(ctx, task)
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, progressCacheKey(projectID))
	return nil
}

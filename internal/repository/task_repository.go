package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/model"
)

// TaskQuery describes a bounded, deterministic task listing. OrderColumn must
// come from SortColumn; free-form field names never reach the SQL layer.
type TaskQuery struct {
	ProjectID   uint
	Search      string
	Completed   *bool
	OrderColumn string
	Descending  bool
	Offset      int
	Limit       int
}

// SortColumn maps an API-level sort field to its database column. The empty
// field defaults to id. Unknown fields report ok=false and must be rejected by
// the caller.
func SortColumn(field string) (column string, ok bool) {
	switch field {
	case "", "id":
		return "id", true
	case "title":
		return "title", true
	case "dueDate":
		return "due_date", true
	case "completed":
		return "completed", true
	case "createdAt":
		return "created_at", true
	default:
		return "", false
	}
}

// TaskRepository defines task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Task, error)
	FindByProjectID(ctx context.Context, projectID uint) ([]model.Task, error)
	FindPage(ctx context.Context, q TaskQuery) (tasks []model.Task, total int64, err error)
	DeleteByProjectID(ctx context.Context, projectID uint) error
	CountByProject(ctx context.Context, projectID uint) (total int64, completed int64, err error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit("Project").Create(task).Error
}

func (r *taskRepository) Save(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit("Project").Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}

// FindByID loads a task with its project so ownership can be evaluated.
func (r *taskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Project").Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDForUpdate locks the task row and loads its project. Must run inside
// a transaction. The project owner is immutable, so the unlocked preload is
// still a safe basis for the ownership check.
func (r *taskRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("id = ?", task.ProjectID).First(&task.Project).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByProjectID lists all tasks of a project, unfiltered, in store order.
func (r *taskRepository) FindByProjectID(ctx context.Context, projectID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindPage runs the filtered, sorted, offset/limit query and returns the
// matching slice together with the total match count.
func (r *taskRepository) FindPage(ctx context.Context, q TaskQuery) ([]model.Task, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Task{}).Where("project_id = ?", q.ProjectID)

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		base = base.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if q.Completed != nil {
		base = base.Where("completed = ?", *q.Completed)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	var tasks []model.Task
	err := base.Order(q.OrderColumn + " " + direction).
		Offset(q.Offset).Limit(q.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// DeleteByProjectID removes every task of a project. Used by the cascade path
// of project deletion; the FK constraint is the backstop.
func (r *taskRepository) DeleteByProjectID(ctx context.Context, projectID uint) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Task{}).Error
}

// CountByProject returns total and completed task counts for a project.
func (r *taskRepository) CountByProject(ctx context.Context, projectID uint) (total int64, completed int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND completed = ?", projectID, true).Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepos bundles transaction-bound repositories handed to a unit of work.
type TxRepos struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
}

// UnitOfWork executes a function within a single database transaction so a
// fetch-authorize-mutate sequence commits or rolls back as one atomic step.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a GORM-backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := TxRepos{
			Users:    NewUserRepository(tx),
			Projects: NewProjectRepository(tx),
			Tasks:    NewTaskRepository(tx),
		}
		return fn(ctx, repos)
	})
}

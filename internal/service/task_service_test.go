package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func TestTaskService_ListFiltered(t *testing.T) {
	owner := &model.User{ID: 1}
	project := &model.Project{ID: 10, OwnerID: 1}

	t.Run("defaults to id ascending, page 0, size 10", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByID", mock.Anything, uint(10)).Return(project, nil)
		mockTasks.On("FindPage", mock.Anything, repository.TaskQuery{
			ProjectID:   10,
			OrderColumn: "id",
			Offset:      0,
			Limit:       10,
		}).Return([]model.Task{{ID: 1, ProjectID: 10}}, int64(1), nil)

		service := NewTaskService(mockTasks, mockProjects, stubUnitOfWork{}, nil)
		page, err := service.ListFiltered(context.Background(), owner, TaskFilter{ProjectID: 10})

		assert.NoError(t, err)
		assert.Len(t, page.Tasks, 1)
		assert.Equal(t, 0, page.Page)
		assert.Equal(t, 10, page.Size)
		assert.Equal(t, int64(1), page.TotalElements)
		assert.Equal(t, 1, page.TotalPages)
		assert.True(t, page.First)
		assert.True(t, page.Last)
		mockTasks.AssertExpectations(t)
	})

	t.Run("search and completed combine with explicit sort", func(t *testing.T) {
		completed := true
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByID", mock.Anything, uint(10)).Return(project, nil)
		mockTasks.On("FindPage", mock.Anything, repository.TaskQuery{
			ProjectID:   10,
			Search:      "milk",
			Completed:   &completed,
			OrderColumn: "due_date",
			Descending:  true,
			Offset:      5,
			Limit:       5,
		}).Return([]model.Task{}, int64(6), nil)

		service := NewTaskService(mockTasks, mockProjects, stubUnitOfWork{}, nil)
		page, err := service.ListFiltered(context.Background(), owner, TaskFilter{
			ProjectID:     10,
			Search:        "milk",
			Completed:     &completed,
			SortBy:        "dueDate",
			SortDirection: "DESC",
			Page:          1,
			Size:          5,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(6), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
		assert.False(t, page.First)
		assert.True(t, page.Last)
		mockTasks.AssertExpectations(t)
	})

	t.Run("unknown sort field is rejected", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByID", mock.Anything, uint(10)).Return(project, nil)

		service := NewTaskService(mockTasks, mockProjects, stubUnitOfWork{}, nil)
		page, err := service.ListFiltered(context.Background(), owner, TaskFilter{ProjectID: 10, SortBy: "owner"})

		assert.Equal(t, apperrors.ErrInvalidSortField, err)
		assert.Nil(t, page)
		mockTasks.AssertNotCalled(t, "FindPage", mock.Anything, mock.Anything)
	})

	t.Run("foreign project is denied before querying tasks", func(t *testing.T) {
		intruder := &model.User{ID: 2}
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByID", mock.Anything, uint(10)).Return(project, nil)

		service := NewTaskService(mockTasks, mockProjects, stubUnitOfWork{}, nil)
		page, err := service.ListFiltered(context.Background(), intruder, TaskFilter{ProjectID: 10})

		assert.Equal(t, apperrors.ErrProjectAccessDenied, err)
		assert.Nil(t, page)
		mockTasks.AssertNotCalled(t, "FindPage", mock.Anything, mock.Anything)
	})
}

func TestNewTaskPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		size       int
		total      int64
		totalPages int
		first      bool
		last       bool
	}{
		{name: "empty result", page: 0, size: 10, total: 0, totalPages: 0, first: true, last: true},
		{name: "single partial page", page: 0, size: 10, total: 3, totalPages: 1, first: true, last: true},
		{name: "exact multiple", page: 1, size: 5, total: 10, totalPages: 2, first: false, last: true},
		{name: "remainder adds a page", page: 0, size: 5, total: 11, totalPages: 3, first: true, last: false},
		{name: "middle page", page: 1, size: 5, total: 11, totalPages: 3, first: false, last: false},
		{name: "page past the end", page: 7, size: 5, total: 11, totalPages: 3, first: false, last: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTaskPage(nil, tt.page, tt.size, tt.total)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.size, p.Size)
			assert.Equal(t, tt.total, p.TotalElements)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.first, p.First)
			assert.Equal(t, tt.last, p.Last)
		})
	}
}

func TestTaskService_Get(t *testing.T) {
	owner := &model.User{ID: 1}
	intruder := &model.User{ID: 2}

	tests := []struct {
		name          string
		user          *model.User
		setupMock     func(*MockTaskRepository)
		expectedError error
	}{
		{
			name: "owner reads task through its project",
			user: owner,
			setupMock: func(m *MockTaskRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(&model.Task{
					ID: 5, ProjectID: 10, Project: model.Project{ID: 10, OwnerID: 1},
				}, nil)
			},
			expectedError: nil,
		},
		{
			name: "task of a foreign project is denied",
			user: intruder,
			setupMock: func(m *MockTaskRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(&model.Task{
					ID: 5, ProjectID: 10, Project: model.Project{ID: 10, OwnerID: 1},
				}, nil)
			},
			expectedError: apperrors.ErrTaskAccessDenied,
		},
		{
			name: "missing task",
			user: owner,
			setupMock: func(m *MockTaskRepository) {
				m.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrTaskNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTasks := new(MockTaskRepository)
			tt.setupMock(mockTasks)

			service := NewTaskService(mockTasks, new(MockProjectRepository), stubUnitOfWork{}, nil)
			task, err := service.Get(context.Background(), tt.user, 5)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, task)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, uint(5), task.ID)
			}

			mockTasks.AssertExpectations(t)
		})
	}
}

func TestTaskService_Create(t *testing.T) {
	owner := &model.User{ID: 1}

	tests := []struct {
		name          string
		user          *model.User
		input         TaskInput
		setupMock     func(*MockProjectRepository, *MockTaskRepository)
		expectedError error
	}{
		{
			name:  "creates task in owned project",
			user:  owner,
			input: TaskInput{Title: "Buy milk", ProjectID: 10},
			setupMock: func(mp *MockProjectRepository, mt *MockTaskRepository) {
				mp.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
				mt.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "foreign project is denied",
			user:  &model.User{ID: 2},
			input: TaskInput{Title: "Buy milk", ProjectID: 10},
			setupMock: func(mp *MockProjectRepository, mt *MockTaskRepository) {
				mp.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
			},
			expectedError: apperrors.ErrProjectAccessDenied,
		},
		{
			name:  "missing project",
			user:  owner,
			input: TaskInput{Title: "Buy milk", ProjectID: 99},
			setupMock: func(mp *MockProjectRepository, mt *MockTaskRepository) {
				mp.On("FindByIDForUpdate", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProjectNotFound,
		},
		{
			name:          "blank title is rejected",
			user:          owner,
			input:         TaskInput{Title: "  ", ProjectID: 10},
			setupMock:     func(mp *MockProjectRepository, mt *MockTaskRepository) {},
			expectedError: apperrors.ErrTitleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProjects := new(MockProjectRepository)
			mockTasks := new(MockTaskRepository)
			tt.setupMock(mockProjects, mockTasks)

			uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
			service := NewTaskService(mockTasks, mockProjects, uow, nil)

			task, err := service.Create(context.Background(), tt.user, tt.input)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, task)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Buy milk", task.Title)
				assert.Equal(t, tt.input.ProjectID, task.ProjectID)
			}

			mockProjects.AssertExpectations(t)
			mockTasks.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	owner := &model.User{ID: 1}

	existing := func() *model.Task {
		return &model.Task{
			ID:        5,
			Title:     "Buy milk",
			ProjectID: 10,
			Project:   model.Project{ID: 10, OwnerID: 1},
		}
	}

	t.Run("updates fields in place", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(existing(), nil)
		mockTasks.On("Save", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewTaskService(mockTasks, mockProjects, uow, nil)

		task, err := service.Update(context.Background(), owner, 5, TaskInput{
			Title: "Buy oat milk", Completed: true, ProjectID: 10,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Buy oat milk", task.Title)
		assert.True(t, task.Completed)
		assert.Equal(t, uint(10), task.ProjectID)
		mockTasks.AssertExpectations(t)
	})

	t.Run("moves task to another owned project", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(existing(), nil)
		mockProjects.On("FindByIDForUpdate", mock.Anything, uint(11)).Return(&model.Project{ID: 11, OwnerID: 1}, nil)
		mockTasks.On("Save", mock.Anything, mock.AnythingOfType("*model.Task")).Return(nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewTaskService(mockTasks, mockProjects, uow, nil)

		task, err := service.Update(context.Background(), owner, 5, TaskInput{
			Title: "Buy milk", ProjectID: 11,
		})

		assert.NoError(t, err)
		assert.Equal(t, uint(11), task.ProjectID)
		mockProjects.AssertExpectations(t)
		mockTasks.AssertExpectations(t)
	})

	t.Run("move to a foreign project fails without saving", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(existing(), nil)
		mockProjects.On("FindByIDForUpdate", mock.Anything, uint(20)).Return(&model.Project{ID: 20, OwnerID: 2}, nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewTaskService(mockTasks, mockProjects, uow, nil)

		task, err := service.Update(context.Background(), owner, 5, TaskInput{
			Title: "Buy milk", ProjectID: 20,
		})

		assert.Equal(t, apperrors.ErrTargetProjectAccessDenied, err)
		assert.Nil(t, task)
		mockTasks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("move to a missing project fails without saving", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(existing(), nil)
		mockProjects.On("FindByIDForUpdate", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewTaskService(mockTasks, mockProjects, uow, nil)

		task, err := service.Update(context.Background(), owner, 5, TaskInput{
			Title: "Buy milk", ProjectID: 99,
		})

		assert.Equal(t, apperrors.ErrProjectNotFound, err)
		assert.Nil(t, task)
		mockTasks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("foreign task is denied", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(existing(), nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewTaskService(mockTasks, mockProjects, uow, nil)

		task, err := service.Update(context.Background(), &model.User{ID: 2}, 5, TaskInput{
			Title: "Buy milk", ProjectID: 10,
		})

		assert.Equal(t, apperrors.ErrTaskAccessDenied, err)
		assert.Nil(t, task)
	})
}

func TestTaskService_Delete(t *testing.T) {
	owner := &model.User{ID: 1}

	t.Run("owner deletes task", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		task := &model.Task{ID: 5, ProjectID: 10, Project: model.Project{ID: 10, OwnerID: 1}}
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(task, nil)
		mockTasks.On("Delete", mock.Anything, task).Return(nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Tasks: mockTasks}}
		service := NewTaskService(mockTasks, new(MockProjectRepository), uow, nil)

		err := service.Delete(context.Background(), owner, 5)

		assert.NoError(t, err)
		mockTasks.AssertExpectations(t)
	})

	t.Run("foreign task is denied", func(t *testing.T) {
		mockTasks := new(MockTaskRepository)
		task := &model.Task{ID: 5, ProjectID: 10, Project: model.Project{ID: 10, OwnerID: 1}}
		mockTasks.On("FindByIDForUpdate", mock.Anything, uint(5)).Return(task, nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Tasks: mockTasks}}
		service := NewTaskService(mockTasks, new(MockProjectRepository), uow, nil)

		err := service.Delete(context.Background(), &model.User{ID: 2}, 5)

		assert.Equal(t, apperrors.ErrTaskAccessDenied, err)
		mockTasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

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

func TestProjectService_Get(t *testing.T) {
	owner := &model.User{ID: 1, Email: "owner@example.com"}
	intruder := &model.User{ID: 2, Email: "other@example.com"}

	tests := []struct {
		name          string
		user          *model.User
		projectID     uint
		setupMock     func(*MockProjectRepository)
		expectedError error
	}{
		{
			name:      "owner reads own project",
			user:      owner,
			projectID: 10,
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(&model.Project{ID: 10, Title: "Home", OwnerID: 1}, nil)
			},
			expectedError: nil,
		},
		{
			name:      "foreign project is denied",
			user:      intruder,
			projectID: 10,
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(&model.Project{ID: 10, Title: "Home", OwnerID: 1}, nil)
			},
			expectedError: apperrors.ErrProjectAccessDenied,
		},
		{
			name:      "missing project is not found, regardless of caller",
			user:      intruder,
			projectID: 99,
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProjectRepository)
			tt.setupMock(mockRepo)

			service := NewProjectService(mockRepo, stubUnitOfWork{}, nil)
			project, err := service.Get(context.Background(), tt.user, tt.projectID)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, project)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, project)
				assert.Equal(t, tt.projectID, project.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProjectService_List(t *testing.T) {
	owner := &model.User{ID: 1}

	mockRepo := new(MockProjectRepository)
	mockRepo.On("FindByOwnerID", mock.Anything, uint(1)).Return([]model.Project{
		{ID: 10, Title: "Home", OwnerID: 1},
		{ID: 11, Title: "Work", OwnerID: 1},
	}, nil)

	service := NewProjectService(mockRepo, stubUnitOfWork{}, nil)
	projects, err := service.List(context.Background(), owner)

	assert.NoError(t, err)
	assert.Len(t, projects, 2)
	mockRepo.AssertExpectations(t)
}

func TestProjectService_Create(t *testing.T) {
	owner := &model.User{ID: 1}

	tests := []struct {
		name          string
		input         ProjectInput
		setupMock     func(*MockProjectRepository)
		expectedError error
	}{
		{
			name:  "creates project owned by caller",
			input: ProjectInput{Title: "Home", Description: "chores"},
			setupMock: func(m *MockProjectRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Project")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "blank title is rejected",
			input:         ProjectInput{Title: "   "},
			setupMock:     func(m *MockProjectRepository) {},
			expectedError: apperrors.ErrTitleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProjectRepository)
			tt.setupMock(mockRepo)

			service := NewProjectService(mockRepo, stubUnitOfWork{}, nil)
			project, err := service.Create(context.Background(), owner, tt.input)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, project)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, project)
				assert.Equal(t, "Home", project.Title)
				assert.Equal(t, owner.ID, project.OwnerID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProjectService_Update(t *testing.T) {
	owner := &model.User{ID: 1}
	intruder := &model.User{ID: 2}

	tests := []struct {
		name          string
		user          *model.User
		input         ProjectInput
		setupMock     func(*MockProjectRepository)
		expectedError error
	}{
		{
			name:  "owner updates title and description",
			user:  owner,
			input: ProjectInput{Title: "Renovation", Description: "updated"},
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, Title: "Home", OwnerID: 1}, nil)
				m.On("Save", mock.Anything, mock.AnythingOfType("*model.Project")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "foreign project is denied before any write",
			user:  intruder,
			input: ProjectInput{Title: "Hijack"},
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, Title: "Home", OwnerID: 1}, nil)
			},
			expectedError: apperrors.ErrProjectAccessDenied,
		},
		{
			name:  "missing project",
			user:  owner,
			input: ProjectInput{Title: "Renovation"},
			setupMock: func(m *MockProjectRepository) {
				m.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProjectRepository)
			tt.setupMock(mockRepo)

			uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockRepo}}
			service := NewProjectService(mockRepo, uow, nil)
			project, err := service.Update(context.Background(), tt.user, 10, tt.input)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, project)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.input.Title, project.Title)
				assert.Equal(t, tt.input.Description, project.Description)
				assert.Equal(t, owner.ID, project.OwnerID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProjectService_Delete(t *testing.T) {
	owner := &model.User{ID: 1}
	intruder := &model.User{ID: 2}

	t.Run("deletes project and its tasks", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
		mockTasks.On("DeleteByProjectID", mock.Anything, uint(10)).Return(nil)
		mockProjects.On("Delete", mock.Anything, mock.AnythingOfType("*model.Project")).Return(nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewProjectService(mockProjects, uow, nil)

		err := service.Delete(context.Background(), owner, 10)

		assert.NoError(t, err)
		mockProjects.AssertExpectations(t)
		mockTasks.AssertExpectations(t)
	})

	t.Run("foreign project leaves tasks untouched", func(t *testing.T) {
		mockProjects := new(MockProjectRepository)
		mockTasks := new(MockTaskRepository)
		mockProjects.On("FindByIDForUpdate", mock.Anything, uint(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)

		uow := stubUnitOfWork{repos: repository.TxRepos{Projects: mockProjects, Tasks: mockTasks}}
		service := NewProjectService(mockProjects, uow, nil)

		err := service.Delete(context.Background(), intruder, 10)

		assert.Equal(t, apperrors.ErrProjectAccessDenied, err)
		mockTasks.AssertNotCalled(t, "DeleteByProjectID", mock.Anything, mock.Anything)
		mockProjects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

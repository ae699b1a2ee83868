package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/job-application-tracker/internal/models"
)

// MockApplicationRepository implements repository.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

// Create inserts a new application
func (m *MockApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

// Save inserts or updates an application
func (m *MockApplicationRepository) Save(ctx context.Context, application *models.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

// GetByID retrieves an application by its ID
func (m *MockApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

// GetByEmail retrieves an application by its email
func (m *MockApplicationRepository) GetByEmail(ctx context.Context, email string) (*models.Application, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

// List retrieves all applications
func (m *MockApplicationRepository) List(ctx context.Context) ([]models.Application, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Application), args.Error(1)
}

// ExistsByID reports whether an ID is taken
func (m *MockApplicationRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Delete deletes an application by its ID
func (m *MockApplicationRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Count returns the number of applications
func (m *MockApplicationRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// CountByStatus returns per-status counts
func (m *MockApplicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

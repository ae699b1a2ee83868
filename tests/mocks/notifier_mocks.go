package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/job-application-tracker/internal/models"
)

// MockStatusNotifier implements services.StatusNotifier
type MockStatusNotifier struct {
	mock.Mock
}

// NotifyStatusChange records a status change notification
func (m *MockStatusNotifier) NotifyStatusChange(ctx context.Context, application *models.Application, previousStatus string) error {
	args := m.Called(ctx, application, previousStatus)
	return args.Error(0)
}

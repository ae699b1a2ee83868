package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/job-application-tracker/internal/models"
	"gorm.io/gorm"
)

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	Save(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	GetByEmail(ctx context.Context, email string) (*models.Application, error)
	List(ctx context.Context) ([]models.Application, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// applicationRepository implements ApplicationRepository using GORM
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository instance
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create inserts a new application. The caller assigns the ID.
func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	result := r.db.WithContext(ctx).Create(application)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("application %d (%s): %w", application.ID, application.EmailID, classifyDuplicate(result.Error))
		}
		return persistenceError("failed to create application", result.Error)
	}
	return nil
}

// Save inserts or updates an application
func (r *applicationRepository) Save(ctx context.Context, application *models.Application) error {
	result := r.db.WithContext(ctx).Save(application)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("application %d: %w", application.ID, classifyDuplicate(result.Error))
		}
		return persistenceError("failed to save application", result.Error)
	}
	return nil
}

// GetByID retrieves an application by its ID
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var application models.Application
	result := r.db.WithContext(ctx).First(&application, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("failed to get application by ID", result.Error)
	}
	return &application, nil
}

// GetByEmail retrieves the application submitted with the given email
func (r *applicationRepository) GetByEmail(ctx context.Context, email string) (*models.Application, error) {
	var application models.Application
	result := r.db.WithContext(ctx).Where("email_id = ?", email).First(&application)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("failed to get application by email", result.Error)
	}
	return &application, nil
}

// List retrieves every application in storage order
func (r *applicationRepository) List(ctx context.Context) ([]models.Application, error) {
	applications := make([]models.Application, 0)
	result := r.db.WithContext(ctx).Find(&applications)
	if result.Error != nil {
		return nil, persistenceError("failed to list applications", result.Error)
	}
	return applications, nil
}

// ExistsByID reports whether an application with the ID is stored
func (r *applicationRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, persistenceError("failed to check application ID", result.Error)
	}
	return count > 0, nil
}

// Delete removes an application by ID. Deleting a missing ID is not an error.
func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Application{}, id)
	if result.Error != nil {
		return persistenceError("failed to delete application", result.Error)
	}
	return nil
}

// Count returns the number of stored applications
func (r *applicationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&count).Error; err != nil {
		return 0, persistenceError("failed to count applications", err)
	}
	return count, nil
}

type statusCount struct {
	Status string
	Total  int64
}

// CountByStatus groups stored applications by their status string
func (r *applicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, persistenceError("failed to count applications by status", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

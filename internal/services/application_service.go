package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
	"github.com/welldanyogia/job-application-tracker/internal/models"
	"github.com/welldanyogia/job-application-tracker/internal/repository"
	"github.com/welldanyogia/job-application-tracker/internal/storage"
	"github.com/welldanyogia/job-application-tracker/internal/validator"
)

// GeneralValidationMessage accompanies every field-level validation failure
const GeneralValidationMessage = "Please correct the errors in the form before submitting."

// DefaultContentType is served when a resume's type cannot be determined
const DefaultContentType = "application/octet-stream"

// maxInsertAttempts bounds retries after losing an ID race on insert
const maxInsertAttempts = 10

// Application event types published to live subscribers
const (
	EventApplicationCreated       = "application_created"
	EventApplicationStatusUpdated = "application_status_updated"
	EventApplicationDeleted       = "application_deleted"
)

var (
	ErrResumeRequired = fmt.Errorf("resume file is required: %w", apperrors.ErrInvalidInput)
	ErrStatusRequired = fmt.Errorf("status is required: %w", apperrors.ErrInvalidInput)

	// ErrInsertRetriesExhausted is returned when every insert attempt lost an ID race
	ErrInsertRetriesExhausted = fmt.Errorf("application id collided on %d inserts: %w",
		maxInsertAttempts, apperrors.ErrInternal)
)

// fieldMessages are keyed by "<json field>.<validation tag>"
var fieldMessages = map[string]string{
	"name.notblank":            "Candidate name is required.",
	"emailId.notblank":         "Email ID is required.",
	"emailId.email":            "Email must be a valid format.",
	"mobileNumber.notblank":    "Mobile number is required.",
	"mobileNumber.mobile":      "Mobile number must be 10 digits.",
	"experienceRange.notblank": "Experience range is required.",
	"jobRole.notblank":         "Job role is required.",
	"notes.max":                "Notes must not exceed 500 characters.",
}

// ValidationError carries field-level messages for a rejected submission
type ValidationError struct {
	Fields validator.FieldErrors
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// Unwrap lets callers match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Response returns the field messages plus the general form message
func (e *ValidationError) Response() map[string]string {
	out := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["general"] = GeneralValidationMessage
	return out
}

// CreateApplicationInput is the candidate-supplied part of an application
type CreateApplicationInput struct {
	Name            string `json:"name" validate:"notblank"`
	EmailID         string `json:"emailId" validate:"notblank,email"`
	MobileNumber    string `json:"mobileNumber" validate:"notblank,mobile"`
	ExperienceRange string `json:"experienceRange" validate:"notblank"`
	JobRole         string `json:"jobRole" validate:"notblank"`
	JobLink         string `json:"jobLink"`
	Notes           string `json:"notes" validate:"max=500"`
	Status          string `json:"status"`
}

// Validate returns a *ValidationError when any field is invalid
func (in *CreateApplicationInput) Validate() error {
	if fields := validator.Struct(in, fieldMessages); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ResumeUpload is an uploaded resume file
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ResumeDownload is an opened resume ready to stream
type ResumeDownload struct {
	Filename    string
	ContentType string
	Content     io.ReadCloser
}

// EventPublisher receives application lifecycle events
type EventPublisher interface {
	BroadcastApplicationEvent(eventType string, applicationID uint, payload interface{})
}

// StatusNotifier tells a candidate that their application status changed
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, application *models.Application, previousStatus string) error
}

// ApplicationService defines the job application use cases
type ApplicationService interface {
	Create(ctx context.Context, input CreateApplicationInput, resume *ResumeUpload) (*models.Application, error)
	List(ctx context.Context) ([]models.Application, error)
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	FindByEmail(ctx context.Context, email string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Application, error)
	Delete(ctx context.Context, id uint) error
	OpenResume(ctx context.Context, id uint) (*ResumeDownload, error)
	Total(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ApplicationServiceConfig holds dependencies for the application service
type ApplicationServiceConfig struct {
	Repo      repository.ApplicationRepository
	Storage   storage.FileStorage
	Publisher EventPublisher
	Notifier  StatusNotifier
	Logger    *slog.Logger
	Now       func() time.Time
	DrawID    func() uint
}

// applicationService implements ApplicationService
type applicationService struct {
	repo      repository.ApplicationRepository
	storage   storage.FileStorage
	ids       *IDAllocator
	publisher EventPublisher
	notifier  StatusNotifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewApplicationService creates a new ApplicationService instance
func NewApplicationService(cfg ApplicationServiceConfig) ApplicationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &applicationService{
		repo:      cfg.Repo,
		storage:   cfg.Storage,
		ids:       NewIDAllocator(cfg.Repo, cfg.DrawID),
		publisher: cfg.Publisher,
		notifier:  cfg.Notifier,
		logger:    logger,
		now:       now,
	}
}

// Create validates, stores the resume, assigns an ID and inserts the record
func (s *applicationService) Create(ctx context.Context, input CreateApplicationInput, resume *ResumeUpload) (*models.Application, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if resume == nil || resume.Content == nil || resume.Size == 0 {
		return nil, ErrResumeRequired
	}

	if _, err := s.repo.GetByEmail(ctx, input.EmailID); err == nil {
		return nil, repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	storedName, err := s.storage.Store(resume.Filename, resume.Content)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return nil, ErrResumeRequired
		}
		return nil, err
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.StatusApplied
	}

	application := &models.Application{
		Name:                 input.Name,
		EmailID:              input.EmailID,
		MobileNumber:         input.MobileNumber,
		ExperienceRange:      input.ExperienceRange,
		ResumeFilename:       &storedName,
		JobRole:              input.JobRole,
		JobLink:              input.JobLink,
		Notes:                input.Notes,
		Status:               status,
		ApplicationTimestamp: s.now(),
	}

	if err := s.insertWithFreshID(ctx, application); err != nil {
		// The resume stays on disk; there is no rollback for the file store
		s.logger.Warn("application not persisted, resume file orphaned",
			slog.String("resume_filename", storedName),
			slog.Any("error", err))
		return nil, err
	}

	s.publish(EventApplicationCreated, application.ID, application)
	return application, nil
}

// insertWithFreshID draws IDs until an insert succeeds or fails for a reason
// other than an ID collision
func (s *applicationService) insertWithFreshID(ctx context.Context, application *models.Application) error {
	var lastErr error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		id, err := s.ids.Next(ctx)
		if err != nil {
			return err
		}
		application.ID = id

		lastErr = s.repo.Create(ctx, application)
		if lastErr == nil {
			return nil
		}
		if !isIDCollision(lastErr) {
			return lastErr
		}
		s.logger.Debug("application id collided on insert, redrawing", slog.Uint64("id", uint64(id)))
	}
	// Not wrapped: ErrDuplicateID would map to 409
	return fmt.Errorf("%w: %v", ErrInsertRetriesExhausted, lastErr)
}

// List returns every application
func (s *applicationService) List(ctx context.Context) ([]models.Application, error) {
	return s.repo.List(ctx)
}

// GetByID returns one application
func (s *applicationService) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByEmail returns the application for an email as a zero- or one-element slice
func (s *applicationService) FindByEmail(ctx context.Context, email string) ([]models.Application, error) {
	application, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Application{}, nil
		}
		return nil, err
	}
	return []models.Application{*application}, nil
}

// UpdateStatus replaces the status and nothing else
func (s *applicationService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Application, error) {
	application, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrStatusRequired
	}

	previous := application.Status
	application.Status = status
	if err := s.repo.Save(ctx, application); err != nil {
		return nil, err
	}

	s.publish(EventApplicationStatusUpdated, application.ID, application)

	if s.notifier != nil && previous != status {
		if err := s.notifier.NotifyStatusChange(ctx, application, previous); err != nil {
			s.logger.Warn("failed to notify candidate of status change",
				slog.Uint64("application_id", uint64(application.ID)),
				slog.Any("error", err))
		}
	}

	return application, nil
}

// Delete removes the record. The resume file is left on disk.
func (s *applicationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(EventApplicationDeleted, id, map[string]uint{"id": id})
	return nil
}

// OpenResume locates the resume for an application and opens it.
//
// The presence check accepts a file that exists OR is readable, so a file
// that exists but cannot be read is still attempted and fails with a
// storage error rather than a not-found.
func (s *applicationService) OpenResume(ctx context.Context, id uint) (*ResumeDownload, error) {
	application, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !application.HasResume() {
		return nil, apperrors.ErrResumeNotFound
	}

	name := *application.ResumeFilename
	info := s.storage.Stat(name)
	if !(info.Exists || info.Readable) {
		return nil, apperrors.ErrResumeNotFound
	}

	contentType, err := detectContentType(info.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to probe resume %s: %w", apperrors.ErrStorage, name, err)
	}

	content, err := s.storage.Open(name)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, apperrors.ErrResumeNotFound
		}
		return nil, err
	}

	return &ResumeDownload{
		Filename:    name,
		ContentType: contentType,
		Content:     content,
	}, nil
}

// detectContentType sniffs the file contents, then falls back to the extension
func detectContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	if !mtype.Is(DefaultContentType) {
		return mtype.String(), nil
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt, nil
	}
	return DefaultContentType, nil
}

// Total returns the number of applications
func (s *applicationService) Total(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CountByStatus returns the number of applications per status string
func (s *applicationService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *applicationService) publish(eventType string, applicationID uint, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.BroadcastApplicationEvent(eventType, applicationID, payload)
}

package fixtures

import (
	"time"

	"github.com/welldanyogia/job-application-tracker/internal/models"
)

// ApplicationBuilder creates test Application instances with fluent API
type ApplicationBuilder struct {
	application models.Application
}

// NewApplicationBuilder creates a new ApplicationBuilder with sensible defaults
func NewApplicationBuilder() *ApplicationBuilder {
	resume := "3f1c2b7e-8a9d-4e21-b0c4-5d6e7f8a9b0c.pdf"
	return &ApplicationBuilder{
		application: models.Application{
			ID:                   1234,
			Name:                 "Asha Rao",
			EmailID:              "asha@example.com",
			MobileNumber:         "9876543210",
			ExperienceRange:      "2-4 years",
			ResumeFilename:       &resume,
			JobRole:              "Backend Engineer",
			JobLink:              "https://jobs.example.com/backend",
			Status:               models.StatusApplied,
			ApplicationTimestamp: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
	}
}

// WithID sets the application ID
func (b *ApplicationBuilder) WithID(id uint) *ApplicationBuilder {
	b.application.ID = id
	return b
}

// WithName sets the candidate name
func (b *ApplicationBuilder) WithName(name string) *ApplicationBuilder {
	b.application.Name = name
	return b
}

// WithEmail sets the candidate email
func (b *ApplicationBuilder) WithEmail(email string) *ApplicationBuilder {
	b.application.EmailID = email
	return b
}

// WithStatus sets the status
func (b *ApplicationBuilder) WithStatus(status string) *ApplicationBuilder {
	b.application.Status = status
	return b
}

// WithResume sets the stored resume name
func (b *ApplicationBuilder) WithResume(storedName string) *ApplicationBuilder {
	b.application.ResumeFilename = &storedName
	return b
}

// WithoutResume clears the stored resume name
func (b *ApplicationBuilder) WithoutResume() *ApplicationBuilder {
	b.application.ResumeFilename = nil
	return b
}

// WithNotes sets the notes
func (b *ApplicationBuilder) WithNotes(notes string) *ApplicationBuilder {
	b.application.Notes = notes
	return b
}

// WithTimestamp sets the submission timestamp
func (b *ApplicationBuilder) WithTimestamp(t time.Time) *ApplicationBuilder {
	b.application.ApplicationTimestamp = t
	return b
}

// Build returns the constructed Application
func (b *ApplicationBuilder) Build() *models.Application {
	app := b.application
	if b.application.ResumeFilename != nil {
		name := *b.application.ResumeFilename
		app.ResumeFilename = &name
	}
	return &app
}

// BuildValue returns the constructed Application as a value (not pointer)
func (b *ApplicationBuilder) BuildValue() models.Application {
	return *b.Build()
}

package models

import (
	"time"
)

// Conventional application statuses. Status is free text; these are the
// values the recruiter dashboard uses.
const (
	StatusApplied   = "Applied"
	StatusInterview = "Interview"
	StatusSelected  = "Selected"
	StatusOffer     = "Offer"
	StatusRejected  = "Rejected"
)

// Application represents one submitted job application
type Application struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name                 string    `gorm:"column:candidate_name;not null;size:255" json:"name"`
	EmailID              string    `gorm:"column:email_id;uniqueIndex;not null;size:255" json:"emailId"`
	MobileNumber         string    `gorm:"column:mobile_number;not null;size:20" json:"mobileNumber"`
	ExperienceRange      string    `gorm:"column:experience_range;not null;size:100" json:"experienceRange"`
	ResumeFilename       *string   `gorm:"column:resume_filename;size:255" json:"resumeFilename"`
	JobRole              string    `gorm:"column:job_role;not null;size:255" json:"jobRole"`
	JobLink              string    `gorm:"column:job_link;size:1000" json:"jobLink,omitempty"`
	Notes                string    `gorm:"column:notes;size:500" json:"notes,omitempty"`
	Status               string    `gorm:"column:status;not null;size:50;index" json:"status"`
	ApplicationTimestamp time.Time `gorm:"column:application_timestamp;not null" json:"applicationTimestamp"`
}

// TableName returns the table name for Application
func (Application) TableName() string {
	return "applications"
}

// HasResume reports whether a resume file was stored for the application
func (a *Application) HasResume() bool {
	return a.ResumeFilename != nil && *a.ResumeFilename != ""
}

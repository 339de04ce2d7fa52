package types

import (
	"fmt"
	"time"
)

// Status is the stage a job application is currently in. Transitions are
// unrestricted: any status may follow any other.
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// ParseStatus validates a raw status value against the fixed enumeration.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("invalid status %q", raw)
	}
}

// Application represents a tracked job application. Every application has
// exactly one owner and is never visible to any other account.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// UserID identifies the owning account. It is set at creation and
	// never reassigned.
	UserID int `json:"userId" db:"user_id"`

	// JobTitle is the title of the position applied for.
	JobTitle string `json:"jobTitle" db:"job_title"`

	// Company is the name of the company the application was sent to.
	Company string `json:"company" db:"company"`

	// Location is where the position is based.
	Location string `json:"location" db:"location"`

	// Status is the current stage of the application.
	Status Status `json:"status" db:"status"`

	// Notes holds free-text notes about the application.
	Notes string `json:"notes" db:"notes"`

	// DateApplied is when the application was submitted. Listings are
	// ordered by this field, most recent first.
	DateApplied time.Time `json:"dateApplied" db:"date_applied"`

	// Resume describes the attached resume file, if any.
	Resume *ResumeAttachment `json:"resume,omitempty" db:"-"`

	// CreatedAt is the timestamp at which the record was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the record.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ResumeAttachment references a resume file kept in object storage for a
// single application.
type ResumeAttachment struct {
	// ObjectKey is the identifier of the file in object storage.
	ObjectKey string `json:"-" db:"resume_object_key"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename" db:"resume_filename"`

	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"contentType" db:"resume_content_type"`
}

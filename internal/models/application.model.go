package models

import "time"

// ApplicationStatus is the closed set of review states an application can
// be in. Transitions are admin-driven; provisioning fires only on the
// transition into StatusApproved.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	BaseUUIDModel
	FirstName     string            `gorm:"type:varchar(255);not null"              json:"firstName"`
	LastName      string            `gorm:"type:varchar(255);not null"              json:"lastName"`
	Email         string            `gorm:"type:varchar(255);not null;index"        json:"email"`
	Phone         *string           `gorm:"type:varchar(64)"                        json:"phone,omitempty"`
	Discipline    *string           `gorm:"type:varchar(255)"                       json:"discipline,omitempty"`
	LicenseNumber *string           `gorm:"type:varchar(255)"                       json:"licenseNumber,omitempty"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	// Full submitted wizard snapshot; completion-link consumption merges
	// the supplied missing fields into it.
	FormData    map[string]any `gorm:"serializer:json"                         json:"formData,omitempty"`
	ProviderID  *string        `gorm:"type:varchar(64);index"                  json:"providerId,omitempty"`
	SubmittedAt time.Time      `gorm:"not null"                                json:"submittedAt"`
}

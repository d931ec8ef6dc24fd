package models

// Provider is the account record provisioned from an approved application.
// The unique index on ApplicationID is what makes provisioning idempotent:
// a second create for the same application fails at the constraint and
// resolves to the existing row.
type Provider struct {
	BaseUUIDModel
	ApplicationID string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"applicationId"`
	Code          string  `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	FirstName     string  `gorm:"type:varchar(255);not null"            json:"firstName"`
	LastName      string  `gorm:"type:varchar(255);not null"            json:"lastName"`
	Email         string  `gorm:"type:varchar(255);not null;index"      json:"email"`
	Discipline    *string `gorm:"type:varchar(255)"                     json:"discipline,omitempty"`
	Active        bool    `gorm:"not null;default:true"                 json:"active"`
}

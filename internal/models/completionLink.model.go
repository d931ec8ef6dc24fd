package models

import "time"

// CompletionLink is a single-use, time-boxed token letting a provider
// supply specific missing fields on an existing application. Expiry is a
// pure function of ExpiresAt and the clock; no row mutation marks a link
// expired.
type CompletionLink struct {
	BaseUUIDModel
	Token         string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"token"`
	ApplicationID string     `gorm:"type:varchar(64);not null;index"        json:"applicationId"`
	ProviderID    string     `gorm:"type:varchar(64);not null"              json:"providerId"`
	ProviderEmail string     `gorm:"type:varchar(255);not null"             json:"providerEmail"`
	MissingFields []string   `gorm:"serializer:json"                        json:"missingFields"`
	IssuedBy      string     `gorm:"type:varchar(255);not null"             json:"issuedBy"`
	ExpiresAt     time.Time  `gorm:"not null;index"                         json:"expiresAt"`
	UsedAt        *time.Time `gorm:""                                       json:"usedAt,omitempty"`
}

func (l *CompletionLink) Used() bool {
	return l.UsedAt != nil
}

func (l *CompletionLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Active reports whether the link can still be consumed.
func (l *CompletionLink) Active(now time.Time) bool {
	return !l.Used() && !l.Expired(now)
}

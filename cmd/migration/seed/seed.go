package seed

import (
	"server/config"
	"server/internal/logger"
	. "server/internal/models"
	"time"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	applications := []Application{
		{
			FirstName:  "Jane",
			LastName:   "Doe",
			Email:      "jane.doe@example.com",
			Phone:      stringPtr("555-0134"),
			Discipline: stringPtr("RN"),
			Status:     StatusPending,
			FormData: map[string]any{
				"firstName":      "Jane",
				"lastName":       "Doe",
				"email":          "jane.doe@example.com",
				"license_number": "RN-884422",
			},
			SubmittedAt: time.Now().Add(-48 * time.Hour),
		},
		{
			FirstName:  "Marcus",
			LastName:   "Webb",
			Email:      "marcus.webb@example.com",
			Discipline: stringPtr("LPN"),
			Status:     StatusUnderReview,
			FormData: map[string]any{
				"firstName": "Marcus",
				"lastName":  "Webb",
				"email":     "marcus.webb@example.com",
			},
			SubmittedAt: time.Now().Add(-24 * time.Hour),
		},
		{
			FirstName:  "Priya",
			LastName:   "Natarajan",
			Email:      "priya.natarajan@example.com",
			Discipline: stringPtr("CNA"),
			Status:     StatusPending,
			FormData: map[string]any{
				"firstName": "Priya",
				"lastName":  "Natarajan",
				"email":     "priya.natarajan@example.com",
			},
			SubmittedAt: time.Now().Add(-2 * time.Hour),
		},
	}

	for _, application := range applications {
		var existing Application
		if err := db.First(&existing, "email = ?", application.Email).Error; err == nil {
			log.Info("Application already exists", "email", application.Email)
			continue
		}
		log.Info("Seeding application", "email", application.Email)
		if err := db.Create(&application).Error; err != nil {
			log.Er("failed to create application", err, "email", application.Email)
		}
	}

	return nil
}

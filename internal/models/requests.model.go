package models

type SaveDraftRequest struct {
	ApplicationID string         `json:"applicationId"`
	FormData      map[string]any `json:"formData"`
	CurrentStep   int            `json:"currentStep"`
	TotalSteps    int            `json:"totalSteps"`
}

type SubmitApplicationRequest struct {
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Email         string         `json:"email"`
	Phone         *string        `json:"phone,omitempty"`
	Discipline    *string        `json:"discipline,omitempty"`
	LicenseNumber *string        `json:"licenseNumber,omitempty"`
	FormData      map[string]any `json:"formData"`
	// Local draft to clear once the submission lands.
	DraftID string `json:"draftId,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type IssueLinkRequest struct {
	ProviderID    string   `json:"providerId"`
	ProviderEmail string   `json:"providerEmail"`
	MissingFields []string `json:"missingFields"`
}

type ConsumeLinkRequest struct {
	Fields map[string]any `json:"fields"`
}

type ProvisionRequest struct {
	ApplicationID string `json:"application_id"`
}

package models

// SavedApplicationDraft is the locally persisted snapshot of an
// in-progress wizard application. File inputs are reduced to FileMetadata
// before persistence; binary content is never stored, so resuming a draft
// requires re-attaching files.
type SavedApplicationDraft struct {
	ApplicationID string         `json:"applicationId"`
	FormData      map[string]any `json:"formData"`
	CurrentStep   int            `json:"currentStep"`
	TotalSteps    int            `json:"totalSteps"`
	LastModified  int64          `json:"lastModified"` // epoch ms
	Version       int            `json:"version"`
}

// FileMetadata is the persisted stand-in for a file input value.
type FileMetadata struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"`
}

// DraftSummary is the indexed listing entry kept alongside each draft so
// listing never deserializes full snapshots. Size is the stored snapshot
// size in bytes and feeds the usage gauge.
type DraftSummary struct {
	ApplicationID string `json:"applicationId"`
	ApplicantName string `json:"applicantName"`
	Email         string `json:"email"`
	Progress      int    `json:"progress"`
	CurrentStep   int    `json:"currentStep"`
	LastModified  int64  `json:"lastModified"` // epoch ms
	Size          int    `json:"size"`
}

// DraftUsage is advisory only; the store never enforces it as a limit.
type DraftUsage struct {
	UsedBytes         int64   `json:"usedBytes"`
	EstimatedCapacity int64   `json:"estimatedCapacity"`
	Percentage        float64 `json:"percentage"`
}

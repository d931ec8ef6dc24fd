package draftController

import (
	"context"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/utils"
)

var ErrInvalidDraft = errors.New("invalid draft payload")

// DraftController fronts the draft store for the wizard: it assigns the
// client-style draft id on first save and keeps storage failures from ever
// blocking the in-memory form.
type DraftController struct {
	draftRepo repositories.DraftRepository
	log       logger.Logger
}

func New(draftRepo repositories.DraftRepository) *DraftController {
	return &DraftController{
		draftRepo: draftRepo,
		log:       logger.New("DraftController"),
	}
}

// SaveDraft persists the snapshot, creating the draft id on first save.
// The returned summary reflects what was stored; dropped lists any fields
// removed because they could not be serialized.
func (dc *DraftController) SaveDraft(
	ctx context.Context,
	request *SaveDraftRequest,
) (*DraftSummary, []string, error) {
	log := dc.log.Function("SaveDraft")

	if request.FormData == nil || request.CurrentStep < 1 || request.TotalSteps < 1 {
		return nil, nil, ErrInvalidDraft
	}
	if request.CurrentStep > request.TotalSteps {
		return nil, nil, ErrInvalidDraft
	}

	applicationID := request.ApplicationID
	if applicationID == "" {
		applicationID = utils.NewDraftID()
		log.Info("assigned new draft id", "applicationID", applicationID)
	}

	draft := &SavedApplicationDraft{
		ApplicationID: applicationID,
		FormData:      request.FormData,
		CurrentStep:   request.CurrentStep,
		TotalSteps:    request.TotalSteps,
	}

	summary, dropped, err := dc.draftRepo.Save(ctx, draft)
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			return nil, dropped, err
		}
		return nil, dropped, log.Err("failed to save draft", err, "applicationID", applicationID)
	}

	return summary, dropped, nil
}

// GetDraft returns nil when the draft is absent or past retention.
func (dc *DraftController) GetDraft(
	ctx context.Context,
	applicationID string,
) (*SavedApplicationDraft, error) {
	draft, err := dc.draftRepo.Load(ctx, applicationID)
	if err != nil {
		return nil, dc.log.Function("GetDraft").
			Err("failed to load draft", err, "applicationID", applicationID)
	}

	return draft, nil
}

func (dc *DraftController) ListSummaries(ctx context.Context) ([]DraftSummary, error) {
	summaries, err := dc.draftRepo.ListSummaries(ctx)
	if err != nil {
		return nil, dc.log.Function("ListSummaries").Err("failed to list draft summaries", err)
	}

	return summaries, nil
}

func (dc *DraftController) DeleteDraft(ctx context.Context, applicationID string) error {
	if err := dc.draftRepo.Delete(ctx, applicationID); err != nil {
		return dc.log.Function("DeleteDraft").
			Err("failed to delete draft", err, "applicationID", applicationID)
	}

	return nil
}

func (dc *DraftController) ClearAll(ctx context.Context) error {
	if err := dc.draftRepo.ClearAll(ctx); err != nil {
		return dc.log.Function("ClearAll").Err("failed to clear drafts", err)
	}

	return nil
}

func (dc *DraftController) Usage(ctx context.Context) (*DraftUsage, error) {
	usage, err := dc.draftRepo.Usage(ctx)
	if err != nil {
		return nil, dc.log.Function("Usage").Err("failed to compute draft usage", err)
	}

	return usage, nil
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/utils"
	"sort"
	"time"
)

const (
	draftKeyPrefix   = "provider_app_"
	draftSummaryKey  = "saved_applications"
	draftDataVersion = 1

	// Advisory capacity for the usage gauge, mirroring the browser storage
	// budget the drafts originally lived in. Never enforced as a limit.
	DRAFT_ESTIMATED_CAPACITY = 5 * 1024 * 1024
)

// DraftKV is the key-value backend drafts persist to. The production
// backend is the Draft valkey database; tests run against the in-memory
// implementation. Set returns ErrQuotaExceeded when the backend has no
// room for the value.
type DraftKV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
}

// DraftRepository holds resumable snapshots of in-progress applications.
// Save strips unserializable fields, bumps lastModified, and maintains the
// bounded summary list so listing never deserializes full snapshots.
// Drafts past the retention window are deleted lazily on first access.
type DraftRepository interface {
	Save(ctx context.Context, draft *SavedApplicationDraft) (*DraftSummary, []string, error)
	Load(ctx context.Context, applicationID string) (*SavedApplicationDraft, error)
	ListSummaries(ctx context.Context) ([]DraftSummary, error)
	Delete(ctx context.Context, applicationID string) error
	ClearAll(ctx context.Context) error
	Usage(ctx context.Context) (*DraftUsage, error)
}

type draftRepository struct {
	kv         DraftKV
	retention  time.Duration
	maxEntries int
	now        func() time.Time
	log        logger.Logger
}

func NewDraftStore(kv DraftKV, retention time.Duration, maxEntries int) DraftRepository {
	return &draftRepository{
		kv:         kv,
		retention:  retention,
		maxEntries: maxEntries,
		now:        time.Now,
		log:        logger.New("draftRepository"),
	}
}

func draftKey(applicationID string) string {
	return draftKeyPrefix + applicationID
}

func (r *draftRepository) Save(
	ctx context.Context,
	draft *SavedApplicationDraft,
) (*DraftSummary, []string, error) {
	log := r.log.Function("Save")

	formData, dropped := utils.SanitizeFormData(draft.FormData)
	if len(dropped) > 0 {
		log.Warn("dropped unserializable draft fields",
			"applicationID", draft.ApplicationID, "fields", dropped)
	}

	stored := *draft
	stored.FormData = formData
	stored.LastModified = r.now().UnixMilli()
	stored.Version = draftDataVersion

	payload, err := json.Marshal(&stored)
	if err != nil {
		return nil, dropped, log.Err("failed to serialize draft", err, "applicationID", draft.ApplicationID)
	}

	if err := r.kv.Set(ctx, draftKey(stored.ApplicationID), &stored, r.retention); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return nil, dropped, ErrQuotaExceeded
		}
		return nil, dropped, log.Err("failed to persist draft", err, "applicationID", draft.ApplicationID)
	}

	summary := DraftSummary{
		ApplicationID: stored.ApplicationID,
		ApplicantName: utils.ApplicantNameFromForm(formData),
		Email:         utils.EmailFromForm(formData),
		Progress:      progress(stored.CurrentStep, stored.TotalSteps),
		CurrentStep:   stored.CurrentStep,
		LastModified:  stored.LastModified,
		Size:          len(payload),
	}

	if err := r.upsertSummary(ctx, summary); err != nil {
		log.Warn("failed to update draft summary list",
			"applicationID", stored.ApplicationID, "error", err)
	}

	return &summary, dropped, nil
}

func (r *draftRepository) Load(
	ctx context.Context,
	applicationID string,
) (*SavedApplicationDraft, error) {
	log := r.log.Function("Load")

	var draft SavedApplicationDraft
	found, err := r.kv.Get(ctx, draftKey(applicationID), &draft)
	if err != nil {
		return nil, log.Err("failed to load draft", err, "applicationID", applicationID)
	}
	if !found {
		return nil, nil
	}

	if r.expired(draft.LastModified) {
		log.Info("deleting expired draft on access", "applicationID", applicationID)
		if err := r.Delete(ctx, applicationID); err != nil {
			log.Warn("failed to delete expired draft", "applicationID", applicationID, "error", err)
		}
		return nil, nil
	}

	return &draft, nil
}

func (r *draftRepository) ListSummaries(ctx context.Context) ([]DraftSummary, error) {
	log := r.log.Function("ListSummaries")

	summaries, err := r.loadSummaries(ctx)
	if err != nil {
		return nil, err
	}

	kept := summaries[:0]
	changed := false
	for _, entry := range summaries {
		if r.expired(entry.LastModified) {
			changed = true
			if err := r.kv.Delete(ctx, draftKey(entry.ApplicationID)); err != nil {
				log.Warn("failed to delete expired draft",
					"applicationID", entry.ApplicationID, "error", err)
			}
			continue
		}
		kept = append(kept, entry)
	}

	if changed {
		if err := r.storeSummaries(ctx, kept); err != nil {
			log.Warn("failed to rewrite draft summary list", "error", err)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].LastModified > kept[j].LastModified
	})

	return kept, nil
}

func (r *draftRepository) Delete(ctx context.Context, applicationID string) error {
	log := r.log.Function("Delete")

	if err := r.kv.Delete(ctx, draftKey(applicationID)); err != nil {
		return log.Err("failed to delete draft", err, "applicationID", applicationID)
	}

	summaries, err := r.loadSummaries(ctx)
	if err != nil {
		return err
	}

	kept := summaries[:0]
	for _, entry := range summaries {
		if entry.ApplicationID == applicationID {
			continue
		}
		kept = append(kept, entry)
	}

	return r.storeSummaries(ctx, kept)
}

func (r *draftRepository) ClearAll(ctx context.Context) error {
	log := r.log.Function("ClearAll")

	if err := r.kv.FlushAll(ctx); err != nil {
		return log.Err("failed to clear drafts", err)
	}

	return nil
}

func (r *draftRepository) Usage(ctx context.Context) (*DraftUsage, error) {
	summaries, err := r.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}

	var used int64
	for _, entry := range summaries {
		used += int64(entry.Size)
	}

	return &DraftUsage{
		UsedBytes:         used,
		EstimatedCapacity: DRAFT_ESTIMATED_CAPACITY,
		Percentage:        float64(used) / float64(DRAFT_ESTIMATED_CAPACITY) * 100,
	}, nil
}

func (r *draftRepository) expired(lastModified int64) bool {
	age := r.now().Sub(time.UnixMilli(lastModified))
	return age >= r.retention
}

func (r *draftRepository) loadSummaries(ctx context.Context) ([]DraftSummary, error) {
	var summaries []DraftSummary
	found, err := r.kv.Get(ctx, draftSummaryKey, &summaries)
	if err != nil {
		return nil, r.log.Function("loadSummaries").Err("failed to load draft summaries", err)
	}
	if !found {
		return nil, nil
	}
	return summaries, nil
}

func (r *draftRepository) storeSummaries(ctx context.Context, summaries []DraftSummary) error {
	if err := r.kv.Set(ctx, draftSummaryKey, summaries, 0); err != nil {
		return r.log.Function("storeSummaries").Err("failed to store draft summaries", err)
	}
	return nil
}

// upsertSummary prepends the entry, dropping any previous entry for the
// same draft. When the list outgrows maxEntries the oldest entries are
// evicted and their drafts deleted with them, so every live draft keeps a
// summary entry.
func (r *draftRepository) upsertSummary(ctx context.Context, summary DraftSummary) error {
	log := r.log.Function("upsertSummary")

	summaries, err := r.loadSummaries(ctx)
	if err != nil {
		return err
	}

	updated := make([]DraftSummary, 0, len(summaries)+1)
	updated = append(updated, summary)
	for _, entry := range summaries {
		if entry.ApplicationID == summary.ApplicationID {
			continue
		}
		updated = append(updated, entry)
	}

	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].LastModified > updated[j].LastModified
	})

	if len(updated) > r.maxEntries {
		for _, evicted := range updated[r.maxEntries:] {
			if err := r.kv.Delete(ctx, draftKey(evicted.ApplicationID)); err != nil {
				log.Warn("failed to delete evicted draft",
					"applicationID", evicted.ApplicationID, "error", err)
			}
		}
		updated = updated[:r.maxEntries]
	}

	return r.storeSummaries(ctx, updated)
}

func progress(currentStep, totalSteps int) int {
	if totalSteps <= 0 {
		return 0
	}
	if currentStep > totalSteps {
		currentStep = totalSteps
	}
	return int(float64(currentStep) / float64(totalSteps) * 100)
}

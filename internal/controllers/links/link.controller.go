package linkController

import (
	"context"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/utils"
	"time"
)

var (
	ErrActiveLinkExists     = errors.New("an active completion link already exists for this application")
	ErrInvalidFieldSet      = errors.New("missing field set must not be empty")
	ErrLinkNotFound         = errors.New("completion link not found")
	ErrLinkExpired          = errors.New("completion link expired")
	ErrLinkAlreadyUsed      = errors.New("completion link already used")
	ErrIncompleteSubmission = errors.New("submission does not cover all missing fields")
)

// LinkController issues and redeems the time-boxed completion links that
// let a provider supply missing fields on an existing application. At most
// one link per application may be active at a time.
type LinkController struct {
	linkRepo           repositories.CompletionLinkRepository
	applicationRepo    repositories.ApplicationRepository
	transactionService *services.TransactionService
	notifier           services.Notifier
	ttl                time.Duration
	now                func() time.Time
	log                logger.Logger
}

func New(
	linkRepo repositories.CompletionLinkRepository,
	applicationRepo repositories.ApplicationRepository,
	transactionService *services.TransactionService,
	notifier services.Notifier,
	ttl time.Duration,
) *LinkController {
	return &LinkController{
		linkRepo:           linkRepo,
		applicationRepo:    applicationRepo,
		transactionService: transactionService,
		notifier:           notifier,
		ttl:                ttl,
		now:                time.Now,
		log:                logger.New("LinkController"),
	}
}

// Issue creates a completion link for the application. The single-active
// check and the insert run in one transaction so two concurrent issuances
// cannot both succeed. The email hand-off happens after commit and never
// rolls the link back.
func (lc *LinkController) Issue(
	ctx context.Context,
	applicationID, providerID, providerEmail, issuedBy string,
	missingFields []string,
) (*CompletionLink, error) {
	log := lc.log.Function("Issue")

	if len(missingFields) == 0 {
		return nil, ErrInvalidFieldSet
	}

	if _, err := lc.applicationRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	link := &CompletionLink{
		Token:         utils.NewLinkToken(),
		ApplicationID: applicationID,
		ProviderID:    providerID,
		ProviderEmail: providerEmail,
		MissingFields: missingFields,
		IssuedBy:      issuedBy,
		ExpiresAt:     lc.now().Add(lc.ttl),
	}

	err := lc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		_, err := lc.linkRepo.GetActiveByApplication(txCtx, applicationID, lc.now())
		if err == nil {
			return ErrActiveLinkExists
		}
		if !errors.Is(err, repositories.ErrLinkNotFound) {
			return err
		}

		return lc.linkRepo.Create(txCtx, link)
	})
	if err != nil {
		if errors.Is(err, ErrActiveLinkExists) {
			return nil, ErrActiveLinkExists
		}
		return nil, log.Err("failed to issue completion link", err, "applicationID", applicationID)
	}

	if err := lc.notifier.CompletionLinkIssued(ctx, providerEmail, link.Token, missingFields); err != nil {
		// The link stands even when the notification hand-off fails.
		log.Warn("failed to hand off completion link notification",
			"applicationID", applicationID, "error", err)
	}

	return link, nil
}

// Validate reports whether the token can still be consumed.
func (lc *LinkController) Validate(ctx context.Context, token string) (*CompletionLink, error) {
	link, err := lc.linkRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if link.Used() {
		return nil, ErrLinkAlreadyUsed
	}
	if link.Expired(lc.now()) {
		return nil, ErrLinkExpired
	}

	return link, nil
}

// Consume redeems the token with the submitted fields. Every field in the
// link's missing set must be present; partial submissions are rejected
// whole and usedAt stays null. On success the fields are merged into the
// application and the link is marked used, atomically.
func (lc *LinkController) Consume(
	ctx context.Context,
	token string,
	submitted map[string]any,
) (*CompletionLink, []string, error) {
	log := lc.log.Function("Consume")

	var consumed *CompletionLink
	var missing []string

	err := lc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		link, err := lc.linkRepo.GetByToken(txCtx, token)
		if err != nil {
			if errors.Is(err, repositories.ErrLinkNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		if link.Used() {
			return ErrLinkAlreadyUsed
		}
		if link.Expired(lc.now()) {
			return ErrLinkExpired
		}

		if missing = utils.MissingFromSubmission(link.MissingFields, submitted); len(missing) > 0 {
			return ErrIncompleteSubmission
		}

		application, err := lc.applicationRepo.GetByID(txCtx, link.ApplicationID)
		if err != nil {
			return err
		}

		formData := application.FormData
		if formData == nil {
			formData = make(map[string]any, len(submitted))
		}
		for _, field := range link.MissingFields {
			formData[field] = submitted[field]
		}

		if err := lc.applicationRepo.UpdateFormData(txCtx, link.ApplicationID, formData); err != nil {
			return err
		}

		usedAt := lc.now()
		if err := lc.linkRepo.MarkUsed(txCtx, link.ID, usedAt); err != nil {
			if errors.Is(err, repositories.ErrLinkAlreadyUsed) {
				return ErrLinkAlreadyUsed
			}
			return err
		}

		link.UsedAt = &usedAt
		consumed = link
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrLinkNotFound),
			errors.Is(err, ErrLinkExpired),
			errors.Is(err, ErrLinkAlreadyUsed),
			errors.Is(err, ErrIncompleteSubmission):
			return nil, missing, err
		}
		return nil, nil, log.Err("failed to consume completion link", err)
	}

	return consumed, nil, nil
}

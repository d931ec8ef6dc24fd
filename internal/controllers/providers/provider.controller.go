package providerController

import (
	"context"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/utils"
)

var (
	ErrApplicationNotFound    = errors.New("application not found")
	ErrApplicationNotApproved = errors.New("application is not approved")
)

// ProvisionResult reports whether this call created the provider or found
// one already provisioned for the application.
type ProvisionResult struct {
	Created       bool      `json:"created"`
	AlreadyExists bool      `json:"alreadyExists"`
	Provider      *Provider `json:"provider"`
}

// ProviderController provisions provider accounts from approved
// applications. Provision is idempotent: automatic triggering on approval,
// manual admin retries, and concurrent clicks all resolve to the same
// provider row.
type ProviderController struct {
	providerRepo       repositories.ProviderRepository
	applicationRepo    repositories.ApplicationRepository
	transactionService *services.TransactionService
	notifier           services.Notifier
	log                logger.Logger
}

func New(
	providerRepo repositories.ProviderRepository,
	applicationRepo repositories.ApplicationRepository,
	transactionService *services.TransactionService,
	notifier services.Notifier,
) *ProviderController {
	return &ProviderController{
		providerRepo:       providerRepo,
		applicationRepo:    applicationRepo,
		transactionService: transactionService,
		notifier:           notifier,
		log:                logger.New("ProviderController"),
	}
}

func (pc *ProviderController) Provision(
	ctx context.Context,
	applicationID string,
) (*ProvisionResult, error) {
	log := pc.log.Function("Provision")

	application, err := pc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if application.Status != StatusApproved {
		return nil, ErrApplicationNotApproved
	}

	if existing, err := pc.providerRepo.GetByApplicationID(ctx, applicationID); err == nil {
		return &ProvisionResult{AlreadyExists: true, Provider: existing}, nil
	} else if !errors.Is(err, repositories.ErrProviderNotFound) {
		return nil, err
	}

	provider := &Provider{
		ApplicationID: applicationID,
		Code:          utils.NewProviderCode(),
		FirstName:     application.FirstName,
		LastName:      application.LastName,
		Email:         application.Email,
		Discipline:    application.Discipline,
		Active:        true,
	}

	err = pc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := pc.providerRepo.Create(txCtx, provider); err != nil {
			return err
		}
		return pc.applicationRepo.SetProviderID(txCtx, applicationID, provider.ID)
	})
	if err != nil {
		// A racing provisioner beat us to the unique index; resolve to the
		// row it created.
		if errors.Is(err, repositories.ErrProviderExists) {
			existing, getErr := pc.providerRepo.GetByApplicationID(ctx, applicationID)
			if getErr != nil {
				return nil, log.Err("failed to load existing provider", getErr, "applicationID", applicationID)
			}
			return &ProvisionResult{AlreadyExists: true, Provider: existing}, nil
		}
		return nil, log.Err("failed to provision provider", err, "applicationID", applicationID)
	}

	if err := pc.notifier.ProviderProvisioned(ctx, applicationID, provider.ID, provider.Code); err != nil {
		log.Warn("failed to publish provisioned notification",
			"applicationID", applicationID, "error", err)
	}

	return &ProvisionResult{Created: true, Provider: provider}, nil
}

package applicationController

import (
	"context"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/utils"
	"time"

	providerController "server/internal/controllers/providers"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrInvalidSubmission   = errors.New("invalid application submission")
)

// StatusUpdateResult carries the updated application plus the provisioning
// outcome when the update crossed into approved.
type StatusUpdateResult struct {
	Application *Application
	Provision   *providerController.ProvisionResult
}

type ApplicationController struct {
	applicationRepo    repositories.ApplicationRepository
	providerController *providerController.ProviderController
	transactionService *services.TransactionService
	documentService    *services.DocumentService
	draftRepo          repositories.DraftRepository
	notifier           services.Notifier
	log                logger.Logger
}

func New(
	applicationRepo repositories.ApplicationRepository,
	providerCtrl *providerController.ProviderController,
	transactionService *services.TransactionService,
	documentService *services.DocumentService,
	draftRepo repositories.DraftRepository,
	notifier services.Notifier,
) *ApplicationController {
	return &ApplicationController{
		applicationRepo:    applicationRepo,
		providerController: providerCtrl,
		transactionService: transactionService,
		documentService:    documentService,
		draftRepo:          draftRepo,
		notifier:           notifier,
		log:                logger.New("ApplicationController"),
	}
}

// Submit lands the finished wizard payload as a pending application. The
// application packet is generated inside the same transaction, so a
// generation timeout rolls the submission back and the user resubmits. On
// success the local draft is cleared.
func (ac *ApplicationController) Submit(
	ctx context.Context,
	request *SubmitApplicationRequest,
) (*Application, error) {
	log := ac.log.Function("Submit")

	if request.FirstName == "" || request.LastName == "" || request.Email == "" {
		return nil, ErrInvalidSubmission
	}

	formData, dropped := utils.SanitizeFormData(request.FormData)
	if len(dropped) > 0 {
		log.Warn("dropped unserializable submission fields", "fields", dropped)
	}

	application := &Application{
		FirstName:     request.FirstName,
		LastName:      request.LastName,
		Email:         request.Email,
		Phone:         request.Phone,
		Discipline:    request.Discipline,
		LicenseNumber: request.LicenseNumber,
		Status:        StatusPending,
		FormData:      formData,
		SubmittedAt:   time.Now(),
	}

	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := ac.applicationRepo.Create(txCtx, application); err != nil {
			return err
		}
		return ac.documentService.GeneratePacket(ctx, application)
	})
	if err != nil {
		if errors.Is(err, services.ErrGenerationTimeout) {
			return nil, services.ErrGenerationTimeout
		}
		return nil, log.Err("failed to submit application", err, "email", request.Email)
	}

	if request.DraftID != "" {
		if err := ac.draftRepo.Delete(ctx, request.DraftID); err != nil {
			// The submission stands; the stale draft expires on its own.
			log.Warn("failed to delete draft after submission",
				"draftID", request.DraftID, "error", err)
		}
	}

	return application, nil
}

func (ac *ApplicationController) GetApplication(ctx context.Context, id string) (*Application, error) {
	application, err := ac.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	return application, nil
}

// UpdateStatus applies an admin-driven status change. Provisioning fires
// only on the edge into approved: previous status != approved AND new
// status == approved. Re-writing approved onto an already approved
// application provisions nothing.
func (ac *ApplicationController) UpdateStatus(
	ctx context.Context,
	id string,
	status string,
) (*StatusUpdateResult, error) {
	log := ac.log.Function("UpdateStatus")

	newStatus := ApplicationStatus(status)
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var application *Application
	var previous ApplicationStatus

	err := ac.transactionService.Execute(ctx, func(txCtx context.Context) error {
		var err error
		application, err = ac.applicationRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrApplicationNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		previous = application.Status
		application.Status = newStatus
		return ac.applicationRepo.Update(txCtx, application)
	})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, log.Err("failed to update application status", err, "id", id, "status", status)
	}

	result := &StatusUpdateResult{Application: application}

	if previous != StatusApproved && newStatus == StatusApproved {
		log.Info("application entered approved, provisioning",
			"id", id, "previousStatus", previous)

		if err := ac.notifier.ApplicationApproved(ctx, id); err != nil {
			log.Warn("failed to publish approval notification", "id", id, "error", err)
		}

		provision, err := ac.providerController.Provision(ctx, id)
		if err != nil {
			// The status change stands; the admin can retry provisioning
			// manually.
			log.Er("failed to provision provider on approval", err, "id", id)
		} else {
			result.Provision = provision
		}
	}

	return result, nil
}

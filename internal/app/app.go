package app

import (
	"server/config"
	"server/internal/database"
	"server/internal/events"
	"server/internal/handlers/middleware"
	"server/internal/logger"
	"server/internal/repositories"
	"server/internal/services"
	"server/internal/websockets"
	"time"

	applicationController "server/internal/controllers/applications"
	draftController "server/internal/controllers/drafts"
	linkController "server/internal/controllers/links"
	providerController "server/internal/controllers/providers"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService  *services.TransactionService
	NotificationService *services.NotificationService
	DocumentService     *services.DocumentService

	// Repositories
	ApplicationRepo repositories.ApplicationRepository
	ProviderRepo    repositories.ProviderRepository
	LinkRepo        repositories.CompletionLinkRepository
	DraftRepo       repositories.DraftRepository

	// Controllers
	DraftController       *draftController.DraftController
	ApplicationController *applicationController.ApplicationController
	LinkController        *linkController.LinkController
	ProviderController    *providerController.ProviderController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	notificationService := services.NewNotificationService(eventBus)
	documentService := services.NewDocumentService(
		services.NewLoggingGenerator(),
		time.Duration(config.DocumentTimeoutSeconds)*time.Second,
	)

	// Initialize repositories
	applicationRepo := repositories.NewApplication(db)
	providerRepo := repositories.NewProvider(db)
	linkRepo := repositories.NewCompletionLink(db)
	draftRepo := repositories.NewDraftStore(
		repositories.NewValkeyDraftKV(db.Cache.Draft),
		time.Duration(config.DraftRetentionDays)*24*time.Hour,
		config.DraftMaxSummaries,
	)

	// Initialize controllers with repositories and services
	middleware := middleware.New(db, eventBus, config)
	draftCtrl := draftController.New(draftRepo)
	providerCtrl := providerController.New(providerRepo, applicationRepo, transactionService, notificationService)
	applicationCtrl := applicationController.New(
		applicationRepo,
		providerCtrl,
		transactionService,
		documentService,
		draftRepo,
		notificationService,
	)
	linkCtrl := linkController.New(
		linkRepo,
		applicationRepo,
		transactionService,
		notificationService,
		time.Duration(config.CompletionLinkTTLHours)*time.Hour,
	)

	websocket, err := websockets.New(db, eventBus, config, draftCtrl)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:              db,
		Config:                config,
		Middleware:            middleware,
		TransactionService:    transactionService,
		NotificationService:   notificationService,
		DocumentService:       documentService,
		ApplicationRepo:       applicationRepo,
		ProviderRepo:          providerRepo,
		LinkRepo:              linkRepo,
		DraftRepo:             draftRepo,
		DraftController:       draftCtrl,
		ApplicationController: applicationCtrl,
		LinkController:        linkCtrl,
		ProviderController:    providerCtrl,
		Websocket:             websocket,
		EventBus:              eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.NotificationService,
		a.DocumentService,
		a.ApplicationRepo,
		a.ProviderRepo,
		a.LinkRepo,
		a.DraftRepo,
		a.DraftController,
		a.ApplicationController,
		a.LinkController,
		a.ProviderController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}

package repositories

import (
	"context"
	"errors"
	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
	"time"

	"gorm.io/gorm"
)

const APPLICATION_CACHE_EXPIRY = 1 * time.Hour

type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*Application, error)
	Create(ctx context.Context, application *Application) error
	Update(ctx context.Context, application *Application) error
	UpdateFormData(ctx context.Context, id string, formData map[string]any) error
	SetProviderID(ctx context.Context, id, providerID string) error
	GetByStatus(ctx context.Context, status ApplicationStatus) ([]*Application, error)
}

type applicationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewApplication(db database.DB) ApplicationRepository {
	return &applicationRepository{
		db:  db,
		log: logger.New("applicationRepository"),
	}
}

func (r *applicationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*Application, error) {
	log := r.log.Function("GetByID")

	_, inTx := services.GetTransaction(ctx)

	var application Application
	// Reads inside a transaction go straight to the database so status
	// comparisons never see a stale cached row.
	if !inTx {
		found, err := database.NewCacheBuilder(r.db.Cache.General, applicationCacheKey(id)).
			WithContext(ctx).
			Get(&application)
		if err == nil && found {
			return &application, nil
		}
	}

	if err := r.getDB(ctx).First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, log.Err("failed to get application by id", err, "id", id)
	}

	if !inTx {
		if err := r.addApplicationToCache(ctx, &application); err != nil {
			log.Warn("failed to add application to cache", "applicationID", id, "error", err)
		}
	}

	return &application, nil
}

func (r *applicationRepository) Create(ctx context.Context, application *Application) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(application).Error; err != nil {
		return log.Err("failed to create application", err, "application", application)
	}

	if err := r.syncCache(ctx, application); err != nil {
		log.Warn("failed to sync application cache", "applicationID", application.ID, "error", err)
	}

	return nil
}

func (r *applicationRepository) Update(ctx context.Context, application *Application) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(application).Error; err != nil {
		return log.Err("failed to update application", err, "application", application)
	}

	if err := r.syncCache(ctx, application); err != nil {
		log.Warn("failed to sync application cache", "applicationID", application.ID, "error", err)
	}

	return nil
}

func (r *applicationRepository) UpdateFormData(
	ctx context.Context,
	id string,
	formData map[string]any,
) error {
	log := r.log.Function("UpdateFormData")

	result := r.getDB(ctx).Model(&Application{}).
		Where("id = ?", id).
		Update("form_data", formData)
	if result.Error != nil {
		return log.Err("failed to update application form data", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}

	if err := r.evictFromCache(id); err != nil {
		log.Warn("failed to evict application from cache", "applicationID", id, "error", err)
	}

	return nil
}

func (r *applicationRepository) SetProviderID(ctx context.Context, id, providerID string) error {
	log := r.log.Function("SetProviderID")

	result := r.getDB(ctx).Model(&Application{}).
		Where("id = ?", id).
		Update("provider_id", providerID)
	if result.Error != nil {
		return log.Err("failed to set provider id", result.Error, "id", id, "providerID", providerID)
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}

	if err := r.evictFromCache(id); err != nil {
		log.Warn("failed to evict application from cache", "applicationID", id, "error", err)
	}

	return nil
}

func (r *applicationRepository) GetByStatus(
	ctx context.Context,
	status ApplicationStatus,
) ([]*Application, error) {
	log := r.log.Function("GetByStatus")

	var applications []*Application
	if err := r.getDB(ctx).Where("status = ?", status).
		Order("submitted_at DESC").Find(&applications).Error; err != nil {
		return nil, log.Err("failed to get applications by status", err, "status", status)
	}

	return applications, nil
}

func applicationCacheKey(id string) string {
	return "application_" + id
}

// syncCache keeps the cache coherent after a row write. Outside a
// transaction the row is written through; inside one it is evicted
// instead, because the write can still roll back and the cache must never
// hold uncommitted state. The next read outside a transaction repopulates
// the key from the database.
func (r *applicationRepository) syncCache(ctx context.Context, application *Application) error {
	if _, inTx := services.GetTransaction(ctx); inTx {
		return r.evictFromCache(application.ID)
	}
	return r.addApplicationToCache(ctx, application)
}

func (r *applicationRepository) evictFromCache(id string) error {
	return database.NewCacheBuilder(r.db.Cache.General, applicationCacheKey(id)).Delete()
}

func (r *applicationRepository) addApplicationToCache(ctx context.Context, application *Application) error {
	if err := database.NewCacheBuilder(r.db.Cache.General, applicationCacheKey(application.ID)).
		WithStruct(application).
		WithTTL(APPLICATION_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addApplicationToCache").
			Err("failed to add application to cache", err, "applicationID", application.ID)
	}
	return nil
}

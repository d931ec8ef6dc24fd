package repositories

import (
	"context"
	"errors"
	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
	"strings"

	"gorm.io/gorm"
)

type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*Provider, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Provider, error)
	Create(ctx context.Context, provider *Provider) error
}

type providerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewProvider(db database.DB) ProviderRepository {
	return &providerRepository{
		db:  db,
		log: logger.New("providerRepository"),
	}
}

func (r *providerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *providerRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	log := r.log.Function("GetByID")

	var provider Provider
	if err := r.getDB(ctx).First(&provider, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, log.Err("failed to get provider by id", err, "id", id)
	}

	return &provider, nil
}

func (r *providerRepository) GetByApplicationID(
	ctx context.Context,
	applicationID string,
) (*Provider, error) {
	log := r.log.Function("GetByApplicationID")

	var provider Provider
	if err := r.getDB(ctx).First(&provider, "application_id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, log.Err("failed to get provider by application id", err, "applicationID", applicationID)
	}

	return &provider, nil
}

// Create inserts the provider. The unique index on application_id turns a
// duplicate insert into ErrProviderExists so callers can resolve to the
// existing row instead of duplicating it.
func (r *providerRepository) Create(ctx context.Context, provider *Provider) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(provider).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrProviderExists
		}
		return log.Err("failed to create provider", err, "provider", provider)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite reports constraint failures as plain errors.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

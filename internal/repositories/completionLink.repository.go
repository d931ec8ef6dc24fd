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

type CompletionLinkRepository interface {
	Create(ctx context.Context, link *CompletionLink) error
	GetByToken(ctx context.Context, token string) (*CompletionLink, error)
	GetActiveByApplication(ctx context.Context, applicationID string, now time.Time) (*CompletionLink, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
}

type completionLinkRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCompletionLink(db database.DB) CompletionLinkRepository {
	return &completionLinkRepository{
		db:  db,
		log: logger.New("completionLinkRepository"),
	}
}

func (r *completionLinkRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *completionLinkRepository) Create(ctx context.Context, link *CompletionLink) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(link).Error; err != nil {
		return log.Err("failed to create completion link", err, "applicationID", link.ApplicationID)
	}

	return nil
}

func (r *completionLinkRepository) GetByToken(ctx context.Context, token string) (*CompletionLink, error) {
	log := r.log.Function("GetByToken")

	var link CompletionLink
	if err := r.getDB(ctx).First(&link, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, log.Err("failed to get completion link by token", err)
	}

	return &link, nil
}

// GetActiveByApplication returns the application's unexpired, unused link
// if one exists. Expiry is evaluated against now, never persisted.
func (r *completionLinkRepository) GetActiveByApplication(
	ctx context.Context,
	applicationID string,
	now time.Time,
) (*CompletionLink, error) {
	log := r.log.Function("GetActiveByApplication")

	var link CompletionLink
	err := r.getDB(ctx).
		Where("application_id = ? AND used_at IS NULL AND expires_at > ?", applicationID, now).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, log.Err("failed to get active completion link", err, "applicationID", applicationID)
	}

	return &link, nil
}

// MarkUsed sets used_at exactly once. The used_at IS NULL guard makes the
// write atomic; a second caller sees ErrLinkAlreadyUsed.
func (r *completionLinkRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	log := r.log.Function("MarkUsed")

	result := r.getDB(ctx).Model(&CompletionLink{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", usedAt)
	if result.Error != nil {
		return log.Err("failed to mark completion link used", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return ErrLinkAlreadyUsed
	}

	return nil
}

package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type UserCollectionRepo interface {
	// GetPersonalContext returns the user's designated personal-context
	// collection, or nil when none exists.
	GetPersonalContext(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCollection, error)
}

type userCollectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCollectionRepo(db *gorm.DB, baseLog *logger.Logger) UserCollectionRepo {
	repoLog := baseLog.With("repo", "UserCollectionRepo")
	return &userCollectionRepo{db: db, log: repoLog}
}

func (r *userCollectionRepo) GetPersonalContext(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserCollection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserCollection
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND is_personal_context = ?", userID, true).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

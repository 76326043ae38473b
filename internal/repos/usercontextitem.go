package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type UserContextItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.UserContextItem) ([]*types.UserContextItem, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserContextItem, error)
	GetByUserTitleType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, itemType string) (*types.UserContextItem, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, content datatypes.JSON) error
}

type userContextItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserContextItemRepo(db *gorm.DB, baseLog *logger.Logger) UserContextItemRepo {
	repoLog := baseLog.With("repo", "UserContextItemRepo")
	return &userContextItemRepo{db: db, log: repoLog}
}

func (r *userContextItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.UserContextItem) ([]*types.UserContextItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.UserContextItem{}, nil
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *userContextItemRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserContextItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserContextItem
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userContextItemRepo) GetByUserTitleType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, itemType string) (*types.UserContextItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserContextItem
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND title = ? AND type = ?", userID, title, itemType).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userContextItemRepo) UpdateContent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, content datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserContextItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": time.Now().UTC(),
		}).Error
}

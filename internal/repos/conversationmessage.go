package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type ConversationMessageRepo interface {
	ListByConversationIDs(ctx context.Context, tx *gorm.DB, conversationIDs []uuid.UUID) ([]*types.ConversationMessage, error)
}

type conversationMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationMessageRepo(db *gorm.DB, baseLog *logger.Logger) ConversationMessageRepo {
	repoLog := baseLog.With("repo", "ConversationMessageRepo")
	return &conversationMessageRepo{db: db, log: repoLog}
}

func (r *conversationMessageRepo) ListByConversationIDs(ctx context.Context, tx *gorm.DB, conversationIDs []uuid.UUID) ([]*types.ConversationMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ConversationMessage
	if len(conversationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

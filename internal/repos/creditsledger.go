package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type CreditLedgerRepo interface {
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CreditLedgerEntry, error)
}

type creditLedgerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreditLedgerRepo(db *gorm.DB, baseLog *logger.Logger) CreditLedgerRepo {
	repoLog := baseLog.With("repo", "CreditLedgerRepo")
	return &creditLedgerRepo{db: db, log: repoLog}
}

func (r *creditLedgerRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CreditLedgerEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CreditLedgerEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

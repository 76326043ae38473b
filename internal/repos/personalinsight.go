package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type PersonalInsightRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.PersonalInsight) ([]*types.PersonalInsight, error)
	ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalInsight, error)
	ExpireActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	GetByIDForUser(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID) (*types.PersonalInsight, error)
	// SetReaction records a helpful/not_helpful reaction. Expired rows are
	// never updated.
	SetReaction(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, reaction string) error
	MarkSaved(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, at time.Time) error
	MarkDismissed(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, at time.Time) error
	// ListReactedRecent returns the most recent insights carrying a reaction
	// or a dismissed status, newest first.
	ListReactedRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.PersonalInsight, error)
	// ListActioned returns the full history of insights with a reaction or a
	// status of dismissed/saved, for profile synthesis.
	ListActioned(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalInsight, error)
}

type personalInsightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalInsightRepo(db *gorm.DB, baseLog *logger.Logger) PersonalInsightRepo {
	repoLog := baseLog.With("repo", "PersonalInsightRepo")
	return &personalInsightRepo{db: db, log: repoLog}
}

func (r *personalInsightRepo) CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.PersonalInsight) ([]*types.PersonalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(insights) == 0 {
		return []*types.PersonalInsight{}, nil
	}
	for _, insight := range insights {
		if insight.ID == uuid.Nil {
			insight.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}

func (r *personalInsightRepo) ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PersonalInsight
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.InsightStatusActive).
		Order("generated_at DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *personalInsightRepo) ExpireActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.PersonalInsight{}).
		Where("user_id = ? AND status = ?", userID, types.InsightStatusActive).
		Update("status", types.InsightStatusExpired).Error
}

func (r *personalInsightRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID) (*types.PersonalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.PersonalInsight
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", insightID, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *personalInsightRepo) SetReaction(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, reaction string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.PersonalInsight{}).
		Where("id = ? AND user_id = ? AND status <> ?", insightID, userID, types.InsightStatusExpired).
		Update("reaction", reaction).Error
}

func (r *personalInsightRepo) MarkSaved(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.PersonalInsight{}).
		Where("id = ? AND user_id = ?", insightID, userID).
		Updates(map[string]interface{}{
			"status":   types.InsightStatusSaved,
			"saved_at": at,
		}).Error
}

func (r *personalInsightRepo) MarkDismissed(ctx context.Context, tx *gorm.DB, insightID uuid.UUID, userID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.PersonalInsight{}).
		Where("id = ? AND user_id = ?", insightID, userID).
		Updates(map[string]interface{}{
			"status":       types.InsightStatusDismissed,
			"dismissed_at": at,
		}).Error
}

func (r *personalInsightRepo) ListReactedRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.PersonalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PersonalInsight
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND (reaction IS NOT NULL OR status = ?)", userID, types.InsightStatusDismissed).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *personalInsightRepo) ListActioned(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PersonalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PersonalInsight
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND (reaction IS NOT NULL OR status IN ?)", userID,
			[]string{types.InsightStatusDismissed, types.InsightStatusSaved}).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

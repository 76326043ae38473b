package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/types"
)

type AgentPromptRepo interface {
	// GetByAgentType returns the configuration row for an agent type, or nil
	// when none is configured.
	GetByAgentType(ctx context.Context, tx *gorm.DB, agentType string) (*types.AgentPrompt, error)
}

type agentPromptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentPromptRepo(db *gorm.DB, baseLog *logger.Logger) AgentPromptRepo {
	repoLog := baseLog.With("repo", "AgentPromptRepo")
	return &agentPromptRepo{db: db, log: repoLog}
}

func (r *agentPromptRepo) GetByAgentType(ctx context.Context, tx *gorm.DB, agentType string) (*types.AgentPrompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AgentPrompt
	err := transaction.WithContext(ctx).
		Where("agent_type = ?", agentType).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

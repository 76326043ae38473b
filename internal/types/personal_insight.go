package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	InsightCategoryGrowthOpportunity = "growth_opportunity"
	InsightCategoryLearningPattern   = "learning_pattern"
	InsightCategoryStrength          = "strength"
	InsightCategoryConnection        = "connection"
	InsightCategoryGoalAlignment     = "goal_alignment"
	InsightCategoryRecommendation    = "recommendation"
)

const (
	InsightConfidenceHigh   = "high"
	InsightConfidenceMedium = "medium"
	InsightConfidenceLow    = "low"
)

const (
	InsightStatusActive    = "active"
	InsightStatusSaved     = "saved"
	InsightStatusDismissed = "dismissed"
	InsightStatusExpired   = "expired"
)

const (
	InsightReactionHelpful    = "helpful"
	InsightReactionNotHelpful = "not_helpful"
)

// InsightCategories lists the valid categories in the order the generation
// prompt enumerates them.
var InsightCategories = []string{
	InsightCategoryGrowthOpportunity,
	InsightCategoryLearningPattern,
	InsightCategoryStrength,
	InsightCategoryConnection,
	InsightCategoryGoalAlignment,
	InsightCategoryRecommendation,
}

// PersonalInsight is one generated observation about a user's learning
// behavior. Exactly one batch per user is active at a time; a new generation
// cycle expires the previous batch before inserting its own rows. Reactions
// may only be recorded while the row is not expired, and SavedAt/DismissedAt
// are written exactly on the transition into that status.
type PersonalInsight struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title         string         `gorm:"not null;column:title" json:"title"`
	Summary       string         `gorm:"column:summary" json:"summary"`
	FullContent   string         `gorm:"column:full_content" json:"full_content"`
	Category      string         `gorm:"not null;column:category;index" json:"category"`
	Confidence    string         `gorm:"not null;column:confidence" json:"confidence"`
	SourceSummary datatypes.JSON `gorm:"type:jsonb;column:source_summary" json:"source_summary"`
	Reaction      *string        `gorm:"column:reaction" json:"reaction,omitempty"`
	Status        string         `gorm:"not null;column:status;index" json:"status"`
	GeneratedAt   time.Time      `gorm:"not null;column:generated_at" json:"generated_at"`
	SavedAt       *time.Time     `gorm:"column:saved_at" json:"saved_at,omitempty"`
	DismissedAt   *time.Time     `gorm:"column:dismissed_at" json:"dismissed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (PersonalInsight) TableName() string {
	return "personal_insight"
}

// SourceCounts records how much material each generation cycle considered.
// Serialized into PersonalInsight.SourceSummary.
type SourceCounts struct {
	Conversations  int `json:"conversations"`
	Courses        int `json:"courses"`
	ContextItems   int `json:"context_items"`
	Notes          int `json:"notes"`
	AIInteractions int `json:"ai_interactions"`
	Certificates   int `json:"certificates"`
}

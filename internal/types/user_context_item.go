package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Context item type tags. Content is a tagged union discriminated by Type:
// notes carry {text}, files carry {bucket_key, mime}, AI insights and the
// preference profile carry their structured payloads.
const (
	ContextItemTypeNote              = "note"
	ContextItemTypeFile              = "file"
	ContextItemTypeAIInsight         = "ai_insight"
	ContextItemTypePreferenceProfile = "preference_profile"
)

type UserContextItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CollectionID *uuid.UUID      `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	Title        string          `gorm:"not null;column:title" json:"title"`
	Type         string          `gorm:"not null;column:type;index" json:"type"`
	Content      datatypes.JSON  `gorm:"type:jsonb;column:content" json:"content"`
	IsNote       bool            `gorm:"column:is_note" json:"is_note"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (UserContextItem) TableName() string {
	return "user_context_item"
}

type UserCollection struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User              *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name              string    `gorm:"not null;column:name" json:"name"`
	IsPersonalContext bool      `gorm:"column:is_personal_context" json:"is_personal_context"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (UserCollection) TableName() string {
	return "user_collection"
}

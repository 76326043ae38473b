package types

import (
	"time"

	"github.com/google/uuid"
)

type AILog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AgentType string    `gorm:"not null;column:agent_type" json:"agent_type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AILog) TableName() string {
	return "ai_log"
}

type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title     string    `gorm:"column:title" json:"title"`
	Content   string    `gorm:"column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Note) TableName() string {
	return "note"
}

type CreditLedgerEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Delta     int       `gorm:"not null;column:delta" json:"delta"`
	Reason    string    `gorm:"column:reason" json:"reason"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CreditLedgerEntry) TableName() string {
	return "user_credits_ledger"
}

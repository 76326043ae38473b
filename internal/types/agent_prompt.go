package types

import (
	"time"

	"github.com/google/uuid"
)

// AgentPrompt is the per-agent-type configuration row used to parametrize
// generation calls. Absence of a row yields defaults (empty instruction and
// the fallback model).
type AgentPrompt struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AgentType         string    `gorm:"uniqueIndex;not null;column:agent_type" json:"agent_type"`
	SystemInstruction string    `gorm:"column:system_instruction" json:"system_instruction"`
	Model             string    `gorm:"column:model" json:"model"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (AgentPrompt) TableName() string {
	return "ai_system_prompt"
}

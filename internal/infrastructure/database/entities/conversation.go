package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"jan-server/services/assistant-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversation records.
// The turn sequence is stored as one JSONB document, matching the
// whole-record replace semantics of the conversation store.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	PartitionValue string         `gorm:"type:varchar(96);not null"`
	Turns          datatypes.JSON `gorm:"type:jsonb;not null"`
	Version        int64          `gorm:"not null;default:1"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// ===============================================
// Conversion Functions
// ===============================================

// EtoD converts database entity to domain model
func (c *Conversation) EtoD() (*conversation.Conversation, error) {
	var turns []conversation.Turn
	if len(c.Turns) > 0 {
		if err := json.Unmarshal(c.Turns, &turns); err != nil {
			return nil, fmt.Errorf("decode turns for conversation %s: %w", c.PublicID, err)
		}
	}
	if turns == nil {
		turns = []conversation.Turn{}
	}

	return &conversation.Conversation{
		ID:             c.ID,
		PublicID:       c.PublicID,
		PartitionValue: c.PartitionValue,
		Turns:          turns,
		Version:        c.Version,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}, nil
}

// NewSchemaConversation creates a database entity from domain model
func NewSchemaConversation(c *conversation.Conversation) (*Conversation, error) {
	turns, err := json.Marshal(c.Turns)
	if err != nil {
		return nil, fmt.Errorf("encode turns for conversation %s: %w", c.PublicID, err)
	}

	return &Conversation{
		ID:             c.ID,
		PublicID:       c.PublicID,
		PartitionValue: c.PartitionValue,
		Turns:          datatypes.JSON(turns),
		Version:        c.Version,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}, nil
}

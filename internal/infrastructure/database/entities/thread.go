package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"jan-server/services/assistant-api/internal/domain/thread"
)

// Thread represents the database schema for display-side thread records.
// Feedback entries are stored as one JSONB document so the containment
// lookup by message ID stays a single indexing-friendly predicate.
type Thread struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID   string         `gorm:"type:varchar(128);index"`
	Name     string         `gorm:"type:varchar(255)"`
	Feedback datatypes.JSON `gorm:"type:jsonb;not null"`
	Version  int64          `gorm:"not null;default:1"`
}

// TableName specifies the table name for Thread.
func (Thread) TableName() string {
	return "threads"
}

// Step represents the database schema for orchestrator step events.
type Step struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	ThreadID string `gorm:"type:varchar(64);index;not null"`
	ParentID string `gorm:"type:varchar(64)"`
	Kind     string `gorm:"type:varchar(32);not null"`
	Input    string `gorm:"type:text"`
	Output   string `gorm:"type:text"`
}

// TableName specifies the table name for Step.
func (Step) TableName() string {
	return "steps"
}

// ===============================================
// Conversion Functions
// ===============================================

// EtoD converts database entity to domain model
func (t *Thread) EtoD() (*thread.Thread, error) {
	var feedback []thread.FeedbackEntry
	if len(t.Feedback) > 0 {
		if err := json.Unmarshal(t.Feedback, &feedback); err != nil {
			return nil, fmt.Errorf("decode feedback for thread %s: %w", t.PublicID, err)
		}
	}
	if feedback == nil {
		feedback = []thread.FeedbackEntry{}
	}

	return &thread.Thread{
		ID:        t.ID,
		PublicID:  t.PublicID,
		UserID:    t.UserID,
		Name:      t.Name,
		Feedback:  feedback,
		Version:   t.Version,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

// NewSchemaThread creates a database entity from domain model
func NewSchemaThread(t *thread.Thread) (*Thread, error) {
	feedback, err := json.Marshal(t.Feedback)
	if err != nil {
		return nil, fmt.Errorf("encode feedback for thread %s: %w", t.PublicID, err)
	}

	return &Thread{
		ID:        t.ID,
		PublicID:  t.PublicID,
		UserID:    t.UserID,
		Name:      t.Name,
		Feedback:  datatypes.JSON(feedback),
		Version:   t.Version,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

// EtoD converts database entity to domain model
func (s *Step) EtoD() *thread.Step {
	return &thread.Step{
		ID:        s.ID,
		PublicID:  s.PublicID,
		ThreadID:  s.ThreadID,
		ParentID:  s.ParentID,
		Kind:      thread.StepKind(s.Kind),
		Input:     s.Input,
		Output:    s.Output,
		CreatedAt: s.CreatedAt,
	}
}

// NewSchemaStep creates a database entity from domain model
func NewSchemaStep(s *thread.Step) *Step {
	return &Step{
		ID:        s.ID,
		PublicID:  s.PublicID,
		ThreadID:  s.ThreadID,
		ParentID:  s.ParentID,
		Kind:      string(s.Kind),
		Input:     s.Input,
		Output:    s.Output,
		CreatedAt: s.CreatedAt,
	}
}

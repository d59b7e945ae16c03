package entities

import (
	"time"

	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/domain/status"
)

// MirrorTask represents the database schema for queued conversation-store
// writes awaiting reconciliation.
type MirrorTask struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind           string    `gorm:"type:varchar(32);not null"`
	ConversationID string    `gorm:"type:varchar(64);index;not null"`
	MessageID      string    `gorm:"type:varchar(64)"`
	Vote           int       `gorm:"not null;default:0"`
	Comment        string    `gorm:"type:text"`
	Status         string    `gorm:"type:varchar(20);not null;index:idx_mirror_tasks_claim"`
	Attempts       int       `gorm:"not null;default:0"`
	NextAttemptAt  time.Time `gorm:"index:idx_mirror_tasks_claim"`
	LastError      string    `gorm:"type:text"`
}

// TableName specifies the table name for MirrorTask.
func (MirrorTask) TableName() string {
	return "mirror_tasks"
}

// ===============================================
// Conversion Functions
// ===============================================

// EtoD converts database entity to domain model
func (t *MirrorTask) EtoD() *outbox.Task {
	return &outbox.Task{
		ID:             t.ID,
		PublicID:       t.PublicID,
		Kind:           outbox.TaskKind(t.Kind),
		ConversationID: t.ConversationID,
		MessageID:      t.MessageID,
		Vote:           t.Vote,
		Comment:        t.Comment,
		Status:         status.Status(t.Status),
		Attempts:       t.Attempts,
		NextAttemptAt:  t.NextAttemptAt,
		LastError:      t.LastError,
		QueuedAt:       t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewSchemaMirrorTask creates a database entity from domain model
func NewSchemaMirrorTask(task *outbox.Task) *MirrorTask {
	return &MirrorTask{
		ID:             task.ID,
		PublicID:       task.PublicID,
		Kind:           string(task.Kind),
		ConversationID: task.ConversationID,
		MessageID:      task.MessageID,
		Vote:           task.Vote,
		Comment:        task.Comment,
		Status:         task.Status.String(),
		Attempts:       task.Attempts,
		NextAttemptAt:  task.NextAttemptAt,
		LastError:      task.LastError,
		CreatedAt:      task.QueuedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// Package outbox records intended secondary-store writes durably so a
// background process can retry them until the two stores converge, instead
// of dropping them on first failure.
package outbox

import (
	"time"

	"jan-server/services/assistant-api/internal/domain/status"
	"jan-server/services/assistant-api/internal/utils/idgen"
)

// TaskKind is the closed set of mirror writes the reconciliation workers
// know how to apply.
type TaskKind string

const (
	// TaskKindMirrorFeedback applies a vote and comment to a conversation
	// turn. The vote carries the conversation-store encoding.
	TaskKindMirrorFeedback TaskKind = "mirror_feedback"
	// TaskKindClearFeedback returns a conversation turn's feedback to its
	// unset state.
	TaskKindClearFeedback TaskKind = "clear_feedback"
	// TaskKindDeleteConversation removes the conversation record paired
	// with an already-deleted thread.
	TaskKindDeleteConversation TaskKind = "delete_conversation"
)

// Task is one durable intent to write to the conversation store.
type Task struct {
	ID             uint
	PublicID       string
	Kind           TaskKind
	ConversationID string
	MessageID      string
	Vote           int
	Comment        string
	Status         status.Status
	Attempts       int
	NextAttemptAt  time.Time
	LastError      string
	QueuedAt       time.Time
	UpdatedAt      time.Time
}

func newTask(kind TaskKind, conversationID string) *Task {
	now := time.Now().UTC()
	return &Task{
		PublicID:       idgen.GenerateSecureID("task", 16),
		Kind:           kind,
		ConversationID: conversationID,
		Status:         status.StatusPending,
		NextAttemptAt:  now,
		QueuedAt:       now,
		UpdatedAt:      now,
	}
}

// NewMirrorFeedbackTask records the intent to set a turn's feedback. The
// vote must already carry the conversation-store encoding.
func NewMirrorFeedbackTask(conversationID, messageID string, vote int, comment string) *Task {
	task := newTask(TaskKindMirrorFeedback, conversationID)
	task.MessageID = messageID
	task.Vote = vote
	task.Comment = comment
	return task
}

// NewClearFeedbackTask records the intent to reset a turn's feedback.
func NewClearFeedbackTask(conversationID, messageID string) *Task {
	task := newTask(TaskKindClearFeedback, conversationID)
	task.MessageID = messageID
	return task
}

// NewDeleteConversationTask records the intent to delete a conversation
// record.
func NewDeleteConversationTask(conversationID string) *Task {
	return newTask(TaskKindDeleteConversation, conversationID)
}

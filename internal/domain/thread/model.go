// Package thread holds the UI-facing records: threads with their feedback
// entries, and the step events the orchestrator produces for each
// interaction.
package thread

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ===============================================
// Thread Structure
// ===============================================

// Thread is the display-side record for one dialogue. Its ID matches the
// conversation ID of the model-facing record. Created lazily on first
// feedback write; UserID and Name are display metadata stamped at that
// point and empty for threads written before authentication was enabled.
type Thread struct {
	ID        uint            `json:"-"`
	PublicID  string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Feedback  []FeedbackEntry `json:"feedback"`
	Version   int64           `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FeedbackEntry records one user rating as shown in the UI. Value carries
// the raw UI signal: 0 for a down vote, positive integers for up votes or
// ratings.
type FeedbackEntry struct {
	MessageID   string    `json:"message_id"`
	UserMessage string    `json:"user_message,omitempty"`
	Value       int       `json:"value"`
	Comment     string    `json:"comment,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewThread creates an empty thread record for the given public ID.
func NewThread(publicID string) *Thread {
	now := time.Now().UTC()
	return &Thread{
		PublicID:  publicID,
		Feedback:  []FeedbackEntry{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// nameLimit caps thread display titles derived from message text.
const nameLimit = 100

// NameFromMessage derives a thread display title from message text: the
// first line, trimmed, cut on a rune boundary.
func NameFromMessage(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > nameLimit {
		return string(runes[:nameLimit])
	}
	return text
}

// FindFeedback returns the entry for the given message ID, or nil.
func (t *Thread) FindFeedback(messageID string) *FeedbackEntry {
	for i := range t.Feedback {
		if t.Feedback[i].MessageID == messageID {
			return &t.Feedback[i]
		}
	}
	return nil
}

// UpsertFeedback records the entry, overwriting an existing entry for the
// same message ID in place so re-votes keep one entry per message.
func (t *Thread) UpsertFeedback(entry FeedbackEntry) {
	for i := range t.Feedback {
		if t.Feedback[i].MessageID == entry.MessageID {
			t.Feedback[i] = entry
			t.UpdatedAt = time.Now().UTC()
			return
		}
	}
	t.Feedback = append(t.Feedback, entry)
	t.UpdatedAt = time.Now().UTC()
}

// RemoveFeedback deletes the entry for the given message ID. Returns false
// when no such entry exists.
func (t *Thread) RemoveFeedback(messageID string) bool {
	for i := range t.Feedback {
		if t.Feedback[i].MessageID == messageID {
			t.Feedback = append(t.Feedback[:i], t.Feedback[i+1:]...)
			t.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// ===============================================
// Step Types
// ===============================================

// StepKind is the closed set of step events feedback can be attached to.
// Kinds are resolved from the orchestrator's logical step name once, when
// the step is recorded.
type StepKind string

const (
	// StepKindMessage is a text turn. Its feedback anchors to the parent
	// message.
	StepKindMessage StepKind = "on_message"
	// StepKindAudioEnd is a voice-triggered turn. Its feedback anchors to
	// the step itself.
	StepKindAudioEnd StepKind = "on_audio_end"
)

// ErrUnknownStepKind reports a step name outside the closed kind set.
var ErrUnknownStepKind = errors.New("unknown step kind")

// ParseStepKind resolves a step's logical name to its kind.
func ParseStepKind(name string) (StepKind, error) {
	switch StepKind(name) {
	case StepKindMessage:
		return StepKindMessage, nil
	case StepKindAudioEnd:
		return StepKindAudioEnd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStepKind, name)
	}
}

// Step is one orchestrator-produced interaction event, correlating a UI
// action to a conversation turn.
type Step struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Kind      StepKind  `json:"kind"`
	Input     string    `json:"input,omitempty"`
	Output    string    `json:"output,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackMessageID resolves which turn a feedback event on this step refers
// to. Voice-triggered steps are their own anchor; text steps anchor to their
// parent message.
func (s *Step) FeedbackMessageID() (string, error) {
	switch s.Kind {
	case StepKindAudioEnd:
		return s.PublicID, nil
	case StepKindMessage:
		return s.ParentID, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStepKind, string(s.Kind))
	}
}

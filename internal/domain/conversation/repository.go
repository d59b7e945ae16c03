package conversation

import "context"

// Repository persists conversation records.
//
// Replace is conditional on the version the caller read. Implementations
// return a Conflict error when another writer got there first, so callers can
// re-read and retry.
type Repository interface {
	// FindByPublicID returns the conversation, or (nil, nil) when absent.
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	// Create inserts a new record. Returns a Conflict error when a record
	// with the same public ID already exists.
	Create(ctx context.Context, conversation *Conversation) error
	// Replace overwrites the record if its stored version still matches
	// conversation.Version. The version is bumped on success.
	Replace(ctx context.Context, conversation *Conversation) error
	// Delete removes the record. Returns a NotFound error when absent.
	Delete(ctx context.Context, publicID string) error
}

package thread

import "context"

// Repository persists thread and step records.
//
// ReplaceThread is conditional on the version the caller read, mirroring the
// conversation store's optimistic concurrency scheme.
type Repository interface {
	// FindThreadByPublicID returns the thread, or (nil, nil) when absent.
	FindThreadByPublicID(ctx context.Context, publicID string) (*Thread, error)
	// FindThreadByFeedbackMessageID returns the thread whose feedback
	// sequence contains an entry for the given message ID, or (nil, nil)
	// when none does.
	FindThreadByFeedbackMessageID(ctx context.Context, messageID string) (*Thread, error)
	// CreateThread inserts a new record. Returns a Conflict error when the
	// public ID is already taken.
	CreateThread(ctx context.Context, thread *Thread) error
	// ReplaceThread overwrites the record if its stored version still
	// matches thread.Version. The version is bumped on success.
	ReplaceThread(ctx context.Context, thread *Thread) error
	// DeleteThread removes the record. Returns a NotFound error when absent.
	DeleteThread(ctx context.Context, publicID string) error
	// ListThreads returns a page of threads, newest first, and the total
	// count. A non-empty userID restricts both to that user's threads.
	ListThreads(ctx context.Context, userID string, limit, offset int) ([]Thread, int64, error)

	// SaveStep inserts or updates a step keyed by its public ID.
	SaveStep(ctx context.Context, step *Step) error
	// FindStepByPublicID returns the step, or (nil, nil) when absent.
	FindStepByPublicID(ctx context.Context, publicID string) (*Step, error)
	// ListStepsByThreadID returns all steps for a thread, oldest first.
	ListStepsByThreadID(ctx context.Context, threadID string) ([]Step, error)
	// DeleteStep removes a single step record.
	DeleteStep(ctx context.Context, publicID string) error
}

package outbox

import (
	"context"
	"time"
)

// Queue is the durable task store the reconciliation workers drain.
type Queue interface {
	// Enqueue records a task for later application.
	Enqueue(ctx context.Context, task *Task) error

	// Dequeue claims the next due pending task, marking it in flight and
	// counting the attempt. Returns (nil, nil) when nothing is due.
	Dequeue(ctx context.Context) (*Task, error)

	// MarkCompleted finishes a task whose write was applied, or whose
	// target turned out to be gone.
	MarkCompleted(ctx context.Context, publicID string) error

	// MarkFailed returns a task to pending, scheduled for another attempt.
	MarkFailed(ctx context.Context, publicID string, nextAttemptAt time.Time, taskErr error) error

	// MarkAbandoned parks a task permanently after a fatal failure or an
	// exhausted retry budget.
	MarkAbandoned(ctx context.Context, publicID string, taskErr error) error

	// ReleaseStale returns in-flight tasks older than the cutoff to
	// pending, reclaiming work from crashed workers.
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)

	// Depth returns the number of pending tasks.
	Depth(ctx context.Context) (int64, error)
}

// Applier applies a task's intended write to the conversation store.
type Applier interface {
	ApplyMirrorTask(ctx context.Context, task *Task) error
}

// Package crontab schedules the recurring queue maintenance jobs.
package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/outbox"
	"jan-server/services/assistant-api/internal/infrastructure/metrics"
)

// CronJobTimeout bounds each scheduled job execution.
const CronJobTimeout = 1 * time.Minute

// Crontab owns the recurring jobs around the mirror task queue: releasing
// tasks stuck in flight and publishing the queue depth gauge.
type Crontab struct {
	ctab         *crontab.Crontab
	queue        outbox.Queue
	staleTaskAge time.Duration
	log          zerolog.Logger
}

// NewCrontab creates the scheduler. Jobs start when Run is called.
func NewCrontab(queue outbox.Queue, staleTaskAge time.Duration, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:         crontab.New(),
		queue:        queue,
		staleTaskAge: staleTaskAge,
		log:          log.With().Str("component", "crontab").Logger(),
	}
}

// Run executes the maintenance jobs once, schedules them every minute, and
// blocks until the context is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	// Execute once on server start so a crashed previous instance's
	// in-flight tasks come back without waiting for the first tick.
	c.releaseStaleTasks(ctx)
	c.recordQueueDepth(ctx)

	if err := c.ctab.AddJob("* * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.releaseStaleTasks(jobCtx)
		c.recordQueueDepth(jobCtx)
	}); err != nil {
		return fmt.Errorf("add queue maintenance job: %w", err)
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// releaseStaleTasks returns tasks held in flight past the stale age to the
// pending state so another worker can claim them.
func (c *Crontab) releaseStaleTasks(ctx context.Context) {
	if _, err := c.queue.ReleaseStale(ctx, c.staleTaskAge); err != nil {
		c.log.Error().Err(err).Msg("failed to release stale mirror tasks")
	}
}

func (c *Crontab) recordQueueDepth(ctx context.Context) {
	depth, err := c.queue.Depth(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to read mirror queue depth")
		return
	}
	metrics.SetMirrorQueueDepth(depth)
}

package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

const queueJanitorRetentionDays = 3

// txRunner runs a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type queueCleaner interface {
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueueJanitorJobParams configure the pick queue janitor.
type QueueJanitorJobParams struct {
	Logger        *logger.Logger
	Queue         queueCleaner
	RetentionDays int
}

// NewQueueJanitorJob builds the job that clears abandoned pick queue rows.
// Completed orders clear their rows on completion; rows older than the
// retention window belong to orders nobody finished.
func NewQueueJanitorJob(params QueueJanitorJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("queue cleaner required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = queueJanitorRetentionDays
	}
	return &queueJanitorJob{
		logg:      params.Logger,
		queue:     params.Queue,
		retention: retention,
		now:       time.Now,
	}, nil
}

type queueJanitorJob struct {
	logg      *logger.Logger
	queue     queueCleaner
	retention int
	now       func() time.Time
}

func (j *queueJanitorJob) Name() string { return "pick-queue-janitor" }

func (j *queueJanitorJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	removed, err := j.queue.DeleteStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pick queue janitor: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   removed,
	})
	j.logg.Info(logCtx, "stale pick queue rows cleared")
	return nil
}

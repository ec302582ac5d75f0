package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

type fakeQueueCleaner struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeQueueCleaner) DeleteStale(_ context.Context, olderThan time.Time) (int64, error) {
	f.called++
	f.lastCutoff = olderThan
	if f.err != nil {
		return 0, f.err
	}
	return 4, nil
}

func TestQueueJanitorJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cleaner := &fakeQueueCleaner{}
	jobIface, err := NewQueueJanitorJob(QueueJanitorJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Queue:  cleaner,
	})
	if err != nil {
		t.Fatalf("NewQueueJanitorJob: %v", err)
	}
	job := jobIface.(*queueJanitorJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-queueJanitorRetentionDays * 24 * time.Hour)
	if !cleaner.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, cleaner.lastCutoff)
	}
	if cleaner.called != 1 {
		t.Fatalf("expected one call, got %d", cleaner.called)
	}
}

func TestQueueJanitorJobPropagatesError(t *testing.T) {
	jobIface, err := NewQueueJanitorJob(QueueJanitorJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Queue:  &fakeQueueCleaner{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewQueueJanitorJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

package pickqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:pickqueue_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// Single connection so concurrent callers serialize at the store.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.PickQueueEntry{}))
	return gdb
}

func TestIncrementCreatesThenAccumulates(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	qty, err := repo.Increment(ctx, 100, "SKU-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	qty, err = repo.Increment(ctx, 100, "SKU-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, qty)

	// A different item key starts its own counter.
	qty, err = repo.Increment(ctx, 100, "SKU-2", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestIncrementConcurrentScannersLoseNothing(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	const scanners = 20
	var wg sync.WaitGroup
	errs := make(chan error, scanners)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Increment(ctx, 7, "SKU-9", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	entries, err := repo.Fetch(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, scanners, entries[0].QtySent)
}

func TestFetchReturnsOnlyRequestedOrder(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Increment(ctx, 1, "A", 2)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, 2, "B", 5)
	require.NoError(t, err)

	entries, err := repo.Fetch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].ItemCode)
	assert.Equal(t, 2, entries[0].QtySent)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Increment(ctx, 5, "A", 1)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 5))
	require.NoError(t, repo.Delete(ctx, 5), "second delete is a no-op")

	entries, err := repo.Fetch(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteStaleRemovesOnlyOldRows(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	_, err := repo.Increment(ctx, 11, "OLD", 1)
	require.NoError(t, err)
	_, err = repo.Increment(ctx, 12, "FRESH", 1)
	require.NoError(t, err)

	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, gdb.Model(&models.PickQueueEntry{}).
		Where("order_id = ?", 11).
		Update("updated_at", stale).Error)

	removed, err := repo.DeleteStale(ctx, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := repo.Fetch(ctx, 12)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package backorders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:backorders_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.Backorder{}))
	return gdb
}

func newTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(gdb), nil)
	require.NoError(t, err)
	return svc
}

func qty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestInsertAccumulatesIntoOpenRow(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	first, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-1",
		ItemCode:   "SKU-1",
		QtyMissing: qty("2.5"),
	})
	require.NoError(t, err)
	assert.True(t, first.QtyMissing.Equal(qty("2.5")))

	second, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-1",
		ItemCode:   "SKU-1",
		QtyMissing: qty("1.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "open row is reused")
	assert.True(t, second.QtyMissing.Equal(qty("4")))

	other, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-1",
		ItemCode:   "SKU-2",
		QtyMissing: qty("1"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestInsertAfterFulfillOpensNewRow(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	first, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-2",
		ItemCode:   "SKU-1",
		QtyMissing: qty("3"),
	})
	require.NoError(t, err)

	_, err = svc.MarkFulfilled(ctx, first.ID, "clerk")
	require.NoError(t, err)

	// Fulfilled rows are history: a new shortfall starts a fresh row.
	fresh, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-2",
		ItemCode:   "SKU-1",
		QtyMissing: qty("1"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.True(t, fresh.QtyMissing.Equal(qty("1")))

	kept, err := svc.MarkFulfilled(ctx, first.ID, "clerk")
	require.NoError(t, err)
	assert.True(t, kept.QtyMissing.Equal(qty("3")), "fulfilled quantity untouched")
}

func TestInsertConcurrentShortfallsConverge(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Insert(ctx, InsertInput{
				OrderNo:    "SO-3",
				ItemCode:   "SKU-1",
				QtyMissing: qty("1"),
			})
			if err != nil {
				t.Errorf("concurrent insert failed: %v", err)
			}
		}()
	}
	wg.Wait()

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "all writers land in one open row")
	assert.True(t, pending[0].QtyMissing.Equal(qty("10")))
}

func TestMarkFulfilledIsOneWay(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	row, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-4",
		ItemCode:   "SKU-1",
		QtyMissing: qty("2"),
	})
	require.NoError(t, err)

	done, err := svc.MarkFulfilled(ctx, row.ID, "clerk")
	require.NoError(t, err)
	assert.True(t, done.Fulfilled)
	require.NotNil(t, done.FulfilledAt)
	firstAt := *done.FulfilledAt

	// Second fulfill is a no-op and keeps the original timestamp.
	again, err := svc.MarkFulfilled(ctx, row.ID, "clerk")
	require.NoError(t, err)
	assert.True(t, again.Fulfilled)
	require.NotNil(t, again.FulfilledAt)
	assert.True(t, firstAt.Equal(*again.FulfilledAt))

	_, err = svc.MarkFulfilled(ctx, 99999, "clerk")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestListFulfilledOnDate(t *testing.T) {
	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	row, err := svc.Insert(ctx, InsertInput{
		OrderNo:    "SO-5",
		ItemCode:   "SKU-1",
		QtyMissing: qty("1"),
	})
	require.NoError(t, err)
	_, err = svc.MarkFulfilled(ctx, row.ID, "clerk")
	require.NoError(t, err)

	today := time.Now()
	rows, err := svc.ListFulfilled(ctx, &today)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	yesterday := today.AddDate(0, 0, -1)
	rows, err = svc.ListFulfilled(ctx, &yesterday)
	require.NoError(t, err)
	assert.Empty(t, rows)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInsertValidation(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	_, err := svc.Insert(ctx, InsertInput{ItemCode: "SKU", QtyMissing: qty("1")})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	_, err = svc.Insert(ctx, InsertInput{OrderNo: "SO", QtyMissing: qty("1")})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	_, err = svc.Insert(ctx, InsertInput{OrderNo: "SO", ItemCode: "SKU", QtyMissing: qty("0")})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	_, err = svc.Insert(ctx, InsertInput{OrderNo: "SO", ItemCode: "SKU", QtyMissing: qty("-1")})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

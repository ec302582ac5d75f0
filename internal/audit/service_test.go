package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.AuditEntry{}))
	return gdb
}

func TestRecordAndListByOrderNo(t *testing.T) {
	svc, err := NewService(NewRepository(newTestDB(t)))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, Entry{
		Username: "picker-1",
		Action:   enums.AuditBarcodeScan,
		Details:  "SKU-1 x1",
		OrderNo:  "SO-100",
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		Username: "picker-1",
		Action:   enums.AuditOrderCompleted,
		OrderNo:  "SO-100",
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		Username: "picker-2",
		Action:   enums.AuditBarcodeScan,
		OrderNo:  "SO-200",
	}))

	entries, err := svc.ListByOrderNo(ctx, "SO-100")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.AuditBarcodeScan, entries[0].Action)
	assert.Equal(t, enums.AuditOrderCompleted, entries[1].Action)
}

func TestRecordTxCommitsWithTransaction(t *testing.T) {
	gdb := newTestDB(t)
	svc, err := NewService(NewRepository(gdb))
	require.NoError(t, err)
	ctx := context.Background()

	txErr := gdb.Transaction(func(tx *gorm.DB) error {
		if err := svc.RecordTx(ctx, tx, Entry{
			Username: "loader-1",
			Action:   enums.AuditPackageLoaded,
			OrderNo:  "SO-300",
		}); err != nil {
			return err
		}
		return errors.New(errors.CodeInternal, "force rollback")
	})
	require.Error(t, txErr)

	entries, err := svc.ListByOrderNo(ctx, "SO-300")
	require.NoError(t, err)
	assert.Empty(t, entries, "rolled-back audit writes must not persist")
}

func TestRecordValidation(t *testing.T) {
	svc, err := NewService(NewRepository(newTestDB(t)))
	require.NoError(t, err)
	ctx := context.Background()

	err = svc.Record(ctx, Entry{Action: enums.AuditBarcodeScan})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	err = svc.Record(ctx, Entry{Username: "picker-1", Action: enums.AuditAction("NOPE")})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

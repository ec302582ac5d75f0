package pickqueue

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
)

// Repository manages persistence for pick queue entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, orderID int64, itemCode string, delta int) (int, error)
	Fetch(ctx context.Context, orderID int64) ([]models.PickQueueEntry, error)
	Delete(ctx context.Context, orderID int64) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pick queue repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Increment adds delta to the scanned quantity for the (order, item) key,
// creating the row on first scan. The upsert and the read-back run in one
// transaction so concurrent scanners never lose an increment.
func (r *repository) Increment(ctx context.Context, orderID int64, itemCode string, delta int) (int, error) {
	var newQty int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.PickQueueEntry{
			OrderID:  orderID,
			ItemCode: itemCode,
			QtySent:  delta,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "item_code"}},
			DoUpdates: clause.Assignments(map[string]any{
				"qty_sent":   gorm.Expr("pick_queue_entries.qty_sent + excluded.qty_sent"),
				"updated_at": time.Now(),
			}),
		}).Create(&entry).Error; err != nil {
			return err
		}
		var current models.PickQueueEntry
		if err := tx.
			Where("order_id = ? AND item_code = ?", orderID, itemCode).
			Take(&current).Error; err != nil {
			return err
		}
		newQty = current.QtySent
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

func (r *repository) Fetch(ctx context.Context, orderID int64) ([]models.PickQueueEntry, error) {
	var entries []models.PickQueueEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("item_code ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Delete(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.PickQueueEntry{}).Error
}

// DeleteStale removes queue rows not touched since the cutoff. Completed
// orders clear their rows eagerly; this catches orders abandoned mid-pick.
func (r *repository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", olderThan).
		Delete(&models.PickQueueEntry{})
	return res.RowsAffected, res.Error
}

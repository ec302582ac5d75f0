package backorders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/pkg/db"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
)

// Repository manages persistence for the backorder ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Accumulate(ctx context.Context, row *models.Backorder) (*models.Backorder, error)
	GetByID(ctx context.Context, id int64) (*models.Backorder, error)
	MarkFulfilled(ctx context.Context, id int64, at time.Time) (bool, error)
	ListPending(ctx context.Context) ([]models.Backorder, error)
	ListFulfilled(ctx context.Context, onDate *time.Time) ([]models.Backorder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a backorder repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Accumulate adds the shortfall into the open row for (order_no, item_code),
// creating one when none is open. Fulfilled rows are history and never
// receive further quantity. The update-then-insert pair retries once on a
// unique violation so two concurrent first-writers both land.
func (r *repository) Accumulate(ctx context.Context, row *models.Backorder) (*models.Backorder, error) {
	var out models.Backorder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.addOrCreate(ctx, tx, row); err != nil {
			return err
		}
		return tx.
			Where("order_no = ? AND item_code = ? AND fulfilled = ?", row.OrderNo, row.ItemCode, false).
			Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) addOrCreate(ctx context.Context, tx *gorm.DB, row *models.Backorder) error {
	updates := map[string]any{
		"qty_missing": gorm.Expr("qty_missing + ?", row.QtyMissing),
	}
	if row.ETADate != nil {
		updates["eta_date"] = row.ETADate
	}
	res := tx.Model(&models.Backorder{}).
		Where("order_no = ? AND item_code = ? AND fulfilled = ?", row.OrderNo, row.ItemCode, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if err := tx.Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "uq_backorders_open_line") {
			retry := tx.Model(&models.Backorder{}).
				Where("order_no = ? AND item_code = ? AND fulfilled = ?", row.OrderNo, row.ItemCode, false).
				Updates(updates)
			return retry.Error
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*models.Backorder, error) {
	var row models.Backorder
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkFulfilled flips the row one-way and reports whether this call did the
// flip. A second call is a no-op.
func (r *repository) MarkFulfilled(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Backorder{}).
		Where("id = ? AND fulfilled = ?", id, false).
		Updates(map[string]any{
			"fulfilled":    true,
			"fulfilled_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ListPending(ctx context.Context) ([]models.Backorder, error) {
	var rows []models.Backorder
	if err := r.db.WithContext(ctx).
		Where("fulfilled = ?", false).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListFulfilled returns fulfilled rows, optionally narrowed to one calendar
// day using a half-open [day, day+1) window so the query stays index-friendly
// on both engines.
func (r *repository) ListFulfilled(ctx context.Context, onDate *time.Time) ([]models.Backorder, error) {
	q := r.db.WithContext(ctx).Where("fulfilled = ?", true)
	if onDate != nil {
		y, m, d := onDate.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, onDate.Location())
		q = q.Where("fulfilled_at >= ? AND fulfilled_at < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}
	var rows []models.Backorder
	if err := q.Order("fulfilled_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package shipmentlines

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
)

// Repository manages persistence for the shipment line ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Add(ctx context.Context, line *models.ShipmentLine) (*models.ShipmentLine, error)
	ListByInvoiceNo(ctx context.Context, invoiceNo string) ([]models.ShipmentLine, error)
	MarkLoadedByInvoiceRoot(ctx context.Context, tx *gorm.DB, invoiceRoot string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipment line repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Add upserts the line for (invoice_no, item_code): qty_shipped accumulates
// across pick completions, invoiced_qty keeps the value from the first write.
func (r *repository) Add(ctx context.Context, line *models.ShipmentLine) (*models.ShipmentLine, error) {
	var out models.ShipmentLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "invoice_no"}, {Name: "item_code"}},
			DoUpdates: clause.Assignments(map[string]any{
				"qty_shipped": gorm.Expr("shipment_lines.qty_shipped + excluded.qty_shipped"),
				"last_update": time.Now(),
			}),
		}).Create(line).Error; err != nil {
			return err
		}
		return tx.
			Where("invoice_no = ? AND item_code = ?", line.InvoiceNo, line.ItemCode).
			Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListByInvoiceNo(ctx context.Context, invoiceNo string) ([]models.ShipmentLine, error) {
	var lines []models.ShipmentLine
	if err := r.db.WithContext(ctx).
		Where("invoice_no = ?", invoiceNo).
		Order("item_code ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// MarkLoadedByInvoiceRoot flags every line of the invoice family as loaded.
// Invoice numbers extend the root with a package suffix, so a prefix match
// covers all of them. Runs on the caller's transaction when one is given.
func (r *repository) MarkLoadedByInvoiceRoot(ctx context.Context, tx *gorm.DB, invoiceRoot string) error {
	h := r.db
	if tx != nil {
		h = tx
	}
	return h.WithContext(ctx).
		Model(&models.ShipmentLine{}).
		Where("invoice_no LIKE ?", invoiceRoot+"%").
		Update("loaded", true).Error
}

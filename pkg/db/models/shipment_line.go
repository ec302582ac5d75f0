package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentLine is the invoiced-vs-shipped ledger per order line. qty_shipped
// accumulates monotonically across pick completions; invoiced_qty keeps the
// value from the first write.
type ShipmentLine struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	InvoiceNo   string          `gorm:"column:invoice_no;size:32;not null;uniqueIndex:uq_shipment_lines_invoice_item,priority:1"`
	ItemCode    string          `gorm:"column:item_code;size:64;not null;uniqueIndex:uq_shipment_lines_invoice_item,priority:2"`
	WarehouseID int             `gorm:"column:warehouse_id"`
	InvoicedQty decimal.Decimal `gorm:"column:invoiced_qty;type:numeric(14,3);not null"`
	QtyShipped  decimal.Decimal `gorm:"column:qty_shipped;type:numeric(14,3);not null"`
	Loaded      bool            `gorm:"column:loaded;not null;default:false"`
	LastUpdate  time.Time       `gorm:"column:last_update;autoUpdateTime"`
}

// TableName overrides the default GORM pluralization.
func (ShipmentLine) TableName() string {
	return "shipment_lines"
}

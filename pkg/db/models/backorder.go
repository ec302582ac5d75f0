package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Backorder tracks a shortfall between ordered and shipped quantity. While a
// row is open (fulfilled=false) repeated shortfalls for the same order line
// accumulate into it; fulfillment is a one-way flip with a timestamp.
type Backorder struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNo     string          `gorm:"column:order_no;size:32;not null;index:idx_backorders_order_item,priority:1"`
	LineID      int64           `gorm:"column:line_id"`
	WarehouseID int             `gorm:"column:warehouse_id"`
	ItemCode    string          `gorm:"column:item_code;size:64;not null;index:idx_backorders_order_item,priority:2"`
	QtyMissing  decimal.Decimal `gorm:"column:qty_missing;type:numeric(14,3);not null"`
	ETADate     *time.Time      `gorm:"column:eta_date;type:date"`
	Fulfilled   bool            `gorm:"column:fulfilled;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	FulfilledAt *time.Time      `gorm:"column:fulfilled_at"`
}

// TableName overrides the default GORM pluralization.
func (Backorder) TableName() string {
	return "backorders"
}

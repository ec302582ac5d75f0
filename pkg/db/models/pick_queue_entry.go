package models

import "time"

// PickQueueEntry is the shared counter of units scanned against one order
// line. Every station reads and writes the same row, so qty_sent is only
// ever mutated through atomic increments.
type PickQueueEntry struct {
	OrderID   int64     `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	ItemCode  string    `gorm:"column:item_code;size:64;primaryKey"`
	QtySent   int       `gorm:"column:qty_sent;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM pluralization.
func (PickQueueEntry) TableName() string {
	return "pick_queue_entries"
}

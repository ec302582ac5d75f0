package models

import (
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
)

// AuditEntry is one append-only row in the user-activity ledger.
type AuditEntry struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string            `gorm:"column:username;size:64;not null"`
	Action    enums.AuditAction `gorm:"column:action;size:64;not null;index"`
	Details   string            `gorm:"column:details;size:255"`
	OrderNo   string            `gorm:"column:order_no;size:32;index"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy table name the reporting queries expect.
func (AuditEntry) TableName() string {
	return "user_activity"
}

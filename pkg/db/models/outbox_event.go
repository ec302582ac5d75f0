package models

import (
	"encoding/json"
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/google/uuid"
)

// OutboxEvent stages a domain event for at-least-once publication. Rows are
// written in the same transaction as the state change they describe.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;size:64;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;size:32;not null"`
	AggregateID   string                    `gorm:"column:aggregate_id;size:64;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
	PublishedAt   *time.Time                `gorm:"column:published_at;index"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default GORM pluralization.
func (OutboxEvent) TableName() string {
	return "outbox_events"
}

package enums

import "fmt"

// OutboxEventType identifies a domain event stored in the outbox table.
type OutboxEventType string

const (
	OutboxEventPackageLoaded  OutboxEventType = "package.loaded"
	OutboxEventTripClosed     OutboxEventType = "trip.closed"
	OutboxEventTripReopened   OutboxEventType = "trip.reopened"
	OutboxEventOrderCompleted OutboxEventType = "order.completed"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventPackageLoaded,
	OutboxEventTripClosed,
	OutboxEventTripReopened,
	OutboxEventOrderCompleted,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateTrip  OutboxAggregateType = "trip"
	OutboxAggregateOrder OutboxAggregateType = "order"
)

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

package enums

import "fmt"

// AuditAction names an entry in the user-activity ledger.
type AuditAction string

const (
	AuditBarcodeScan           AuditAction = "BARCODE_SCAN"
	AuditOrderCompleted        AuditAction = "ORDER_COMPLETED"
	AuditPackageLoaded         AuditAction = "PACKAGE_LOADED"
	AuditTripAutoClosed        AuditAction = "TRIP_AUTO_CLOSED"
	AuditTripCompletedLate     AuditAction = "TRIP_COMPLETED_LATE"
	AuditTripClosedIncomplete  AuditAction = "TRIP_MANUAL_CLOSED_INCOMPLETE"
	AuditTripReopened          AuditAction = "TRIP_REOPENED"
	AuditBackorderFulfilled    AuditAction = "BACKORDER_FULFILLED"
)

var validAuditActions = []AuditAction{
	AuditBarcodeScan,
	AuditOrderCompleted,
	AuditPackageLoaded,
	AuditTripAutoClosed,
	AuditTripCompletedLate,
	AuditTripClosedIncomplete,
	AuditTripReopened,
	AuditBackorderFulfilled,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

package enums

// ScanResult is the operator-facing outcome of a scan. Stations map each
// value to a distinct feedback tone, so a duplicate must never be reported
// as a plain error and vice versa.
type ScanResult string

const (
	ScanResultSuccess   ScanResult = "success"
	ScanResultDuplicate ScanResult = "duplicate"
	ScanResultError     ScanResult = "error"
)

// String implements fmt.Stringer.
func (r ScanResult) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ScanResult.
func (r ScanResult) IsValid() bool {
	switch r {
	case ScanResultSuccess, ScanResultDuplicate, ScanResultError:
		return true
	}
	return false
}

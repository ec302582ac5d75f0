package enums

// TripState is the derived lifecycle state of a shipment trip. It is not
// stored; it is computed from the closed flag and the package counters.
type TripState string

const (
	// TripStateOpen means packages are still missing and loading continues.
	TripStateOpen TripState = "open"
	// TripStateFull is the transient moment where every package is loaded but
	// the closing update has not landed yet.
	TripStateFull TripState = "full"
	// TripStateClosedComplete means the trip auto-closed with all packages on board.
	TripStateClosedComplete TripState = "closed_complete"
	// TripStateClosedIncomplete means an operator closed the trip early via
	// manual override while packages were still missing.
	TripStateClosedIncomplete TripState = "closed_incomplete"
)

// String implements fmt.Stringer.
func (s TripState) String() string {
	return string(s)
}

// DeriveTripState computes the lifecycle state from raw trip columns.
func DeriveTripState(pkgsLoaded, pkgsTotal int, closed bool) TripState {
	switch {
	case closed && pkgsLoaded >= pkgsTotal:
		return TripStateClosedComplete
	case closed:
		return TripStateClosedIncomplete
	case pkgsLoaded >= pkgsTotal:
		return TripStateFull
	default:
		return TripStateOpen
	}
}

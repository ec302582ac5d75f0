package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records barcode scan outcomes per flow.
type ScanMetrics struct {
	scans       *prometheus.CounterVec
	tripsClosed *prometheus.CounterVec
}

// NewScanMetrics registers the scan metrics on the provided registerer.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return &ScanMetrics{}
	}
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_total",
		Help: "Barcode scans processed, by flow and result.",
	}, []string{"flow", "result"})
	tripsClosed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trips_closed_total",
		Help: "Trips closed, by closure reason.",
	}, []string{"reason"})
	reg.MustRegister(scans, tripsClosed)
	return &ScanMetrics{
		scans:       scans,
		tripsClosed: tripsClosed,
	}
}

// IncScan increments the scan counter for the flow/result pair.
func (s *ScanMetrics) IncScan(flow, result string) {
	if s == nil || s.scans == nil {
		return
	}
	s.scans.WithLabelValues(normalizeLabel(flow), normalizeLabel(result)).Inc()
}

// IncTripClosed increments the trip closure counter for the given reason.
func (s *ScanMetrics) IncTripClosed(reason string) {
	if s == nil || s.tripsClosed == nil {
		return
	}
	s.tripsClosed.WithLabelValues(normalizeLabel(reason)).Inc()
}

package controllers

import (
	"net/http"
	"time"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
)

type loadScanRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	Username string `json:"username" validate:"required"`
	Day      string `json:"day,omitempty"`
}

type loadScanResponse struct {
	Result  string `json:"result"`
	Outcome string `json:"outcome,omitempty"`
	TripID  int64  `json:"trip_id,omitempty"`
	PkgNo   int    `json:"pkg_no,omitempty"`
	Closed  bool   `json:"closed"`
	Reason  string `json:"reason,omitempty"`
}

// LoadScan records one package barcode scanned at the loading ramp.
func LoadScan(svc scanning.Service, scans *metrics.ScanMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scanning service unavailable"))
			return
		}

		var payload loadScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var day *time.Time
		if payload.Day != "" {
			parsed, err := time.Parse("2006-01-02", payload.Day)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "day must be YYYY-MM-DD"))
				return
			}
			day = &parsed
		}

		result, err := svc.ProcessLoadScan(r.Context(), payload.Barcode, payload.Username, day)
		if err != nil {
			scans.IncScan("load", "failure")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scans.IncScan("load", string(result.Result))
		if result.Closed {
			scans.IncTripClosed("auto")
		}
		responses.WriteSuccess(w, loadScanResponse{
			Result:  string(result.Result),
			Outcome: string(result.Outcome),
			TripID:  result.TripID,
			PkgNo:   result.PkgNo,
			Closed:  result.Closed,
			Reason:  result.Reason,
		})
	}
}

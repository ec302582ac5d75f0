package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	tripsvc "github.com/fulfillmentworks/picksync-backend/internal/trips"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
)

type tripUpsertRequest struct {
	TripDate     string `json:"trip_date" validate:"required"`
	OrderNo      string `json:"order_no" validate:"required"`
	CustomerCode string `json:"customer_code"`
	CustomerName string `json:"customer_name"`
	Region       string `json:"region"`
	Address1     string `json:"address1"`
	PkgsTotal    int    `json:"pkgs_total" validate:"required,min=1"`
	InvoiceRoot  string `json:"invoice_root"`
}

type tripSetClosedRequest struct {
	Closed   *bool  `json:"closed" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type tripResponse struct {
	ID           int64      `json:"id"`
	TripDate     string     `json:"trip_date"`
	OrderNo      string     `json:"order_no"`
	CustomerCode string     `json:"customer_code,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	Region       string     `json:"region,omitempty"`
	Address1     string     `json:"address1,omitempty"`
	PkgsTotal    int        `json:"pkgs_total"`
	PkgsLoaded   int        `json:"pkgs_loaded"`
	State        string     `json:"state"`
	Closed       bool       `json:"closed"`
	EnRoute      bool       `json:"en_route"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
	InvoiceRoot  string     `json:"invoice_root,omitempty"`
}

func newTripResponse(trip *models.ShipmentTrip) tripResponse {
	return tripResponse{
		ID:           trip.ID,
		TripDate:     trip.TripDate.Format("2006-01-02"),
		OrderNo:      trip.OrderNo,
		CustomerCode: trip.CustomerCode,
		CustomerName: trip.CustomerName,
		Region:       trip.Region,
		Address1:     trip.Address1,
		PkgsTotal:    trip.PkgsTotal,
		PkgsLoaded:   trip.PkgsLoaded,
		State:        string(trip.State()),
		Closed:       trip.Closed,
		EnRoute:      trip.EnRoute,
		LoadedAt:     trip.LoadedAt,
		InvoiceRoot:  trip.InvoiceRoot,
	}
}

func newTripListResponse(trips []models.ShipmentTrip) []tripResponse {
	out := make([]tripResponse, 0, len(trips))
	for i := range trips {
		out = append(out, newTripResponse(&trips[i]))
	}
	return out
}

// TripUpsert merges one synced trip header into the registry.
func TripUpsert(svc tripsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trip service unavailable"))
			return
		}

		var payload tripUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tripDate, err := time.Parse("2006-01-02", payload.TripDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "trip_date must be YYYY-MM-DD"))
			return
		}

		trip, err := svc.UpsertHeader(r.Context(), tripsvc.UpsertHeaderInput{
			TripDate:     tripDate,
			OrderNo:      payload.OrderNo,
			CustomerCode: payload.CustomerCode,
			CustomerName: payload.CustomerName,
			Region:       payload.Region,
			Address1:     payload.Address1,
			PkgsTotal:    payload.PkgsTotal,
			InvoiceRoot:  payload.InvoiceRoot,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTripResponse(trip))
	}
}

// TripList returns trip headers for one day, or for a start/end range.
func TripList(svc tripsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trip service unavailable"))
			return
		}

		startRaw := r.URL.Query().Get("start")
		endRaw := r.URL.Query().Get("end")
		if startRaw != "" || endRaw != "" {
			start, err := time.Parse("2006-01-02", startRaw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start must be YYYY-MM-DD"))
				return
			}
			end, err := time.Parse("2006-01-02", endRaw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "end must be YYYY-MM-DD"))
				return
			}
			trips, err := svc.ListHeadersRange(r.Context(), start, end)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, newTripListResponse(trips))
			return
		}

		day := time.Now()
		if raw := r.URL.Query().Get("day"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "day must be YYYY-MM-DD"))
				return
			}
			day = parsed
		}

		trips, err := svc.ListHeaders(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTripListResponse(trips))
	}
}

// TripDetail returns a single trip header by id.
func TripDetail(svc tripsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trip service unavailable"))
			return
		}

		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.GetByID(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTripResponse(trip))
	}
}

// TripSetClosed flips the manual closed flag on a trip.
func TripSetClosed(svc tripsvc.Service, scans *metrics.ScanMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trip service unavailable"))
			return
		}

		tripID, err := parseTripID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tripSetClosedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trip, err := svc.SetClosed(r.Context(), tripID, *payload.Closed, payload.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if *payload.Closed {
			scans.IncTripClosed("manual")
		}
		responses.WriteSuccess(w, newTripResponse(trip))
	}
}

func parseTripID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "tripID")
	tripID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || tripID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "trip id must be a positive integer")
	}
	return tripID, nil
}

package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	backordersvc "github.com/fulfillmentworks/picksync-backend/internal/backorders"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

type backorderInsertRequest struct {
	OrderNo     string          `json:"order_no" validate:"required"`
	ItemCode    string          `json:"item_code" validate:"required"`
	LineID      int64           `json:"line_id"`
	WarehouseID int             `json:"warehouse_id"`
	QtyMissing  decimal.Decimal `json:"qty_missing" validate:"required"`
	ETADate     string          `json:"eta_date,omitempty"`
}

type backorderFulfillRequest struct {
	Username string `json:"username" validate:"required"`
}

type backorderResponse struct {
	ID          int64           `json:"id"`
	OrderNo     string          `json:"order_no"`
	ItemCode    string          `json:"item_code"`
	LineID      int64           `json:"line_id,omitempty"`
	WarehouseID int             `json:"warehouse_id,omitempty"`
	QtyMissing  decimal.Decimal `json:"qty_missing"`
	ETADate     *time.Time      `json:"eta_date,omitempty"`
	Fulfilled   bool            `json:"fulfilled"`
	CreatedAt   time.Time       `json:"created_at"`
	FulfilledAt *time.Time      `json:"fulfilled_at,omitempty"`
}

func newBackorderResponse(row *models.Backorder) backorderResponse {
	return backorderResponse{
		ID:          row.ID,
		OrderNo:     row.OrderNo,
		ItemCode:    row.ItemCode,
		LineID:      row.LineID,
		WarehouseID: row.WarehouseID,
		QtyMissing:  row.QtyMissing,
		ETADate:     row.ETADate,
		Fulfilled:   row.Fulfilled,
		CreatedAt:   row.CreatedAt,
		FulfilledAt: row.FulfilledAt,
	}
}

func newBackorderListResponse(rows []models.Backorder) []backorderResponse {
	out := make([]backorderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newBackorderResponse(&rows[i]))
	}
	return out
}

// BackorderInsert records one shortfall, accumulating into an open row when present.
func BackorderInsert(svc backordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorder service unavailable"))
			return
		}

		var payload backorderInsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var eta *time.Time
		if payload.ETADate != "" {
			parsed, err := time.Parse("2006-01-02", payload.ETADate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "eta_date must be YYYY-MM-DD"))
				return
			}
			eta = &parsed
		}

		row, err := svc.Insert(r.Context(), backordersvc.InsertInput{
			OrderNo:     payload.OrderNo,
			ItemCode:    payload.ItemCode,
			LineID:      payload.LineID,
			WarehouseID: payload.WarehouseID,
			QtyMissing:  payload.QtyMissing,
			ETADate:     eta,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newBackorderResponse(row))
	}
}

// BackorderFulfill flips one backorder to fulfilled.
func BackorderFulfill(svc backordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorder service unavailable"))
			return
		}

		raw := chi.URLParam(r, "backorderID")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "backorder id must be a positive integer"))
			return
		}

		var payload backorderFulfillRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.MarkFulfilled(r.Context(), id, payload.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBackorderResponse(row))
	}
}

// BackorderListPending returns all open backorders.
func BackorderListPending(svc backordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorder service unavailable"))
			return
		}

		rows, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBackorderListResponse(rows))
	}
}

// BackorderListFulfilled returns fulfilled backorders, optionally for one day.
func BackorderListFulfilled(svc backordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backorder service unavailable"))
			return
		}

		var onDate *time.Time
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
				return
			}
			onDate = &parsed
		}

		rows, err := svc.ListFulfilled(r.Context(), onDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBackorderListResponse(rows))
	}
}

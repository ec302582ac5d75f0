package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	"github.com/fulfillmentworks/picksync-backend/internal/pickqueue"
	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
)

type pickScanRequest struct {
	OrderID  int64  `json:"order_id" validate:"required,min=1"`
	OrderNo  string `json:"order_no" validate:"required"`
	Barcode  string `json:"barcode" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type pickScanResponse struct {
	Result   string `json:"result"`
	ItemCode string `json:"item_code,omitempty"`
	QtySent  int    `json:"qty_sent,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// PickScan records one barcode scan at a pick station.
func PickScan(svc scanning.Service, scans *metrics.ScanMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scanning service unavailable"))
			return
		}

		var payload pickScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessPickScan(r.Context(), payload.OrderID, payload.OrderNo, payload.Barcode, payload.Username)
		if err != nil {
			scans.IncScan("pick", "failure")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scans.IncScan("pick", string(result.Result))
		responses.WriteSuccess(w, pickScanResponse{
			Result:   string(result.Result),
			ItemCode: result.ItemCode,
			QtySent:  result.QtySent,
			Reason:   result.Reason,
		})
	}
}

// PickQueueFetch returns the scanned-so-far counts for one order.
func PickQueueFetch(svc pickqueue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pick queue service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counts, err := svc.Fetch(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"order_id": orderID,
			"items":    counts,
		})
	}
}

type completeOrderRequest struct {
	OrderNo  string `json:"order_no" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type completedLineResponse struct {
	ItemCode   string          `json:"item_code"`
	QtyShipped decimal.Decimal `json:"qty_shipped"`
	QtyMissing decimal.Decimal `json:"qty_missing"`
}

// CompleteOrder settles an order's pick queue into shipment lines and backorders.
func CompleteOrder(svc scanning.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scanning service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload completeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.CompleteOrder(r.Context(), orderID, payload.OrderNo, payload.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]completedLineResponse, 0, len(lines))
		for _, line := range lines {
			out = append(out, completedLineResponse{
				ItemCode:   line.ItemCode,
				QtyShipped: line.QtyShipped,
				QtyMissing: line.QtyMissing,
			})
		}
		responses.WriteSuccess(w, map[string]any{
			"order_no": payload.OrderNo,
			"lines":    out,
		})
	}
}

func parseOrderID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a positive integer")
	}
	return orderID, nil
}

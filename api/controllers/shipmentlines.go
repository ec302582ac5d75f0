package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fulfillmentworks/picksync-backend/api/responses"
	"github.com/fulfillmentworks/picksync-backend/api/validators"
	linesvc "github.com/fulfillmentworks/picksync-backend/internal/shipmentlines"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	pkgerrors "github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
)

type shipmentLineAddRequest struct {
	InvoiceNo   string          `json:"invoice_no" validate:"required"`
	ItemCode    string          `json:"item_code" validate:"required"`
	WarehouseID int             `json:"warehouse_id"`
	InvoicedQty decimal.Decimal `json:"invoiced_qty"`
	QtyShipped  decimal.Decimal `json:"qty_shipped"`
}

type shipmentLineResponse struct {
	ID          int64           `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	ItemCode    string          `json:"item_code"`
	WarehouseID int             `json:"warehouse_id,omitempty"`
	InvoicedQty decimal.Decimal `json:"invoiced_qty"`
	QtyShipped  decimal.Decimal `json:"qty_shipped"`
	Loaded      bool            `json:"loaded"`
	LastUpdate  time.Time       `json:"last_update"`
}

func newShipmentLineResponse(row *models.ShipmentLine) shipmentLineResponse {
	return shipmentLineResponse{
		ID:          row.ID,
		InvoiceNo:   row.InvoiceNo,
		ItemCode:    row.ItemCode,
		WarehouseID: row.WarehouseID,
		InvoicedQty: row.InvoicedQty,
		QtyShipped:  row.QtyShipped,
		Loaded:      row.Loaded,
		LastUpdate:  row.LastUpdate,
	}
}

// ShipmentLineAdd upserts one shipped-quantity contribution for an order line.
func ShipmentLineAdd(svc linesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment line service unavailable"))
			return
		}

		var payload shipmentLineAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Add(r.Context(), linesvc.AddInput{
			InvoiceNo:   payload.InvoiceNo,
			ItemCode:    payload.ItemCode,
			WarehouseID: payload.WarehouseID,
			InvoicedQty: payload.InvoicedQty,
			QtyShipped:  payload.QtyShipped,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newShipmentLineResponse(row))
	}
}

// ShipmentLineList returns the invoiced-vs-shipped ledger for one invoice.
func ShipmentLineList(svc linesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipment line service unavailable"))
			return
		}

		invoiceNo := strings.TrimSpace(r.URL.Query().Get("invoice_no"))
		if invoiceNo == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invoice_no query parameter required"))
			return
		}

		rows, err := svc.ListByInvoiceNo(r.Context(), invoiceNo)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]shipmentLineResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newShipmentLineResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

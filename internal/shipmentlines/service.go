package shipmentlines

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

// Service defines shipment line ledger operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.ShipmentLine, error)
	ListByInvoiceNo(ctx context.Context, invoiceNo string) ([]models.ShipmentLine, error)
}

// AddInput carries one shipped-quantity contribution for an order line.
type AddInput struct {
	InvoiceNo   string
	ItemCode    string
	WarehouseID int
	InvoicedQty decimal.Decimal
	QtyShipped  decimal.Decimal
}

type service struct {
	repo Repository
}

// NewService wires a shipment line service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "shipment line repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.ShipmentLine, error) {
	if input.InvoiceNo == "" {
		return nil, errors.New(errors.CodeValidation, "invoice no is required")
	}
	if input.ItemCode == "" {
		return nil, errors.New(errors.CodeValidation, "item code is required")
	}
	if input.QtyShipped.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "qty shipped must not be negative")
	}

	line := &models.ShipmentLine{
		InvoiceNo:   input.InvoiceNo,
		ItemCode:    input.ItemCode,
		WarehouseID: input.WarehouseID,
		InvoicedQty: input.InvoicedQty,
		QtyShipped:  input.QtyShipped,
	}
	out, err := s.repo.Add(ctx, line)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "adding shipment line")
	}
	return out, nil
}

func (s *service) ListByInvoiceNo(ctx context.Context, invoiceNo string) ([]models.ShipmentLine, error) {
	if invoiceNo == "" {
		return nil, errors.New(errors.CodeValidation, "invoice no is required")
	}
	lines, err := s.repo.ListByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing shipment lines")
	}
	return lines, nil
}

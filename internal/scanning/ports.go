package scanning

import (
	"context"

	"github.com/shopspring/decimal"
)

// ItemRef is what a barcode resolves to: the catalog item plus how many
// units one scan of that barcode represents (case and pallet barcodes carry
// multipliers greater than one).
type ItemRef struct {
	ItemCode   string
	Multiplier int
}

// BarcodeResolver maps a raw barcode to an item reference. Backed by the
// upstream catalog; test stubs stand in for it here.
type BarcodeResolver interface {
	Resolve(ctx context.Context, barcode string) (*ItemRef, error)
}

// OrderLine is one orderable line as the upstream system knows it.
type OrderLine struct {
	LineID      int64
	ItemCode    string
	InvoiceNo   string
	WarehouseID int
	QtyOrdered  decimal.Decimal
}

// OrderLineSource exposes the lines of an order. Backed by the upstream
// order system; test stubs stand in for it here.
type OrderLineSource interface {
	Lines(ctx context.Context, orderID int64) ([]OrderLine, error)
}

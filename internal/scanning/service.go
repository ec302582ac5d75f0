package scanning

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/internal/audit"
	"github.com/fulfillmentworks/picksync-backend/internal/backorders"
	"github.com/fulfillmentworks/picksync-backend/internal/pickqueue"
	"github.com/fulfillmentworks/picksync-backend/internal/shipmentlines"
	"github.com/fulfillmentworks/picksync-backend/internal/trips"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/outbox"
)

// pkgSeparator splits an invoice barcode into its root and package suffix,
// e.g. "INV-123-K02" → root "INV-123", package 2.
const pkgSeparator = "-K"

// PickScanResult is what a pick station shows the operator after one scan.
// Result drives the beep: success, duplicate and error sound different.
type PickScanResult struct {
	Result   enums.ScanResult
	ItemCode string
	QtySent  int
	Reason   string
}

// LoadScanResult is the ramp-side counterpart for load scans.
type LoadScanResult struct {
	Result  enums.ScanResult
	Outcome enums.LoadOutcome
	TripID  int64
	PkgNo   int
	Closed  bool
	Reason  string
}

// CompletedLine reports how one order line settled on completion.
type CompletedLine struct {
	ItemCode   string
	QtyShipped decimal.Decimal
	QtyMissing decimal.Decimal
}

// Service orchestrates the station-facing scan flows.
type Service interface {
	ProcessPickScan(ctx context.Context, orderID int64, orderNo, barcode, username string) (*PickScanResult, error)
	ProcessLoadScan(ctx context.Context, rawBarcode, loadedBy string, day *time.Time) (*LoadScanResult, error)
	CompleteOrder(ctx context.Context, orderID int64, orderNo, username string) ([]CompletedLine, error)
}

type service struct {
	db       *gorm.DB
	queue    pickqueue.Repository
	lines    shipmentlines.Repository
	back     backorders.Repository
	trips    trips.Service
	barcodes BarcodeResolver
	orders   OrderLineSource
	trail    audit.Recorder
	events   *outbox.Service
}

// NewService wires the scan orchestrator. trail and events may be nil in tests.
func NewService(
	db *gorm.DB,
	queue pickqueue.Repository,
	lines shipmentlines.Repository,
	back backorders.Repository,
	tripSvc trips.Service,
	barcodes BarcodeResolver,
	orders OrderLineSource,
	trail audit.Recorder,
	events *outbox.Service,
) (Service, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "database handle required")
	}
	if queue == nil || lines == nil || back == nil {
		return nil, errors.New(errors.CodeInternal, "ledger repositories required")
	}
	if tripSvc == nil {
		return nil, errors.New(errors.CodeInternal, "trips service required")
	}
	if barcodes == nil || orders == nil {
		return nil, errors.New(errors.CodeInternal, "barcode resolver and order line source required")
	}
	return &service{
		db:       db,
		queue:    queue,
		lines:    lines,
		back:     back,
		trips:    tripSvc,
		barcodes: barcodes,
		orders:   orders,
		trail:    trail,
		events:   events,
	}, nil
}

// ProcessPickScan resolves the barcode, checks the item belongs to the order
// and is not already fully picked, then bumps the queue counter. Operational
// misses come back as a Result, not an error: the station beeps and moves on.
func (s *service) ProcessPickScan(ctx context.Context, orderID int64, orderNo, barcode, username string) (*PickScanResult, error) {
	if orderID <= 0 {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	if barcode == "" {
		return nil, errors.New(errors.CodeValidation, "barcode is required")
	}
	if username == "" {
		return nil, errors.New(errors.CodeValidation, "username is required")
	}

	ref, err := s.barcodes.Resolve(ctx, barcode)
	if err != nil {
		return &PickScanResult{Result: enums.ScanResultError, Reason: "unknown barcode"}, nil
	}
	multiplier := ref.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	lines, err := s.orders.Lines(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order lines")
	}
	var line *OrderLine
	for i := range lines {
		if lines[i].ItemCode == ref.ItemCode {
			line = &lines[i]
			break
		}
	}
	if line == nil {
		return &PickScanResult{Result: enums.ScanResultError, ItemCode: ref.ItemCode, Reason: "item not on order"}, nil
	}

	queued, err := s.queue.Fetch(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "reading pick queue")
	}
	already := 0
	for _, entry := range queued {
		if entry.ItemCode == ref.ItemCode {
			already = entry.QtySent
			break
		}
	}
	if decimal.NewFromInt(int64(already)).GreaterThanOrEqual(line.QtyOrdered) {
		return &PickScanResult{
			Result:   enums.ScanResultDuplicate,
			ItemCode: ref.ItemCode,
			QtySent:  already,
			Reason:   "line already complete",
		}, nil
	}

	qty, err := s.queue.Increment(ctx, orderID, ref.ItemCode, multiplier)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "incrementing pick queue")
	}
	if s.trail != nil {
		if err := s.trail.Record(ctx, audit.Entry{
			Username: username,
			Action:   enums.AuditBarcodeScan,
			Details:  fmt.Sprintf("%s x%d", ref.ItemCode, multiplier),
			OrderNo:  orderNo,
		}); err != nil {
			return nil, err
		}
	}
	return &PickScanResult{Result: enums.ScanResultSuccess, ItemCode: ref.ItemCode, QtySent: qty}, nil
}

// ProcessLoadScan splits the invoice barcode into root and package number,
// resolves the open trip and marks the package loaded.
func (s *service) ProcessLoadScan(ctx context.Context, rawBarcode, loadedBy string, day *time.Time) (*LoadScanResult, error) {
	if loadedBy == "" {
		return nil, errors.New(errors.CodeValidation, "loaded by is required")
	}
	root, pkgNo, err := splitLoadBarcode(rawBarcode)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.Resolve(ctx, root, day)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return &LoadScanResult{Result: enums.ScanResultError, PkgNo: pkgNo, Reason: "no open trip for invoice"}, nil
		}
		return nil, err
	}

	res, err := s.trips.MarkLoaded(ctx, trip.ID, pkgNo, loadedBy)
	if err != nil {
		if errors.IsCode(err, errors.CodeCapacityExceeded) {
			return &LoadScanResult{
				Result: enums.ScanResultError,
				TripID: trip.ID,
				PkgNo:  pkgNo,
				Reason: fmt.Sprintf("package %d outside capacity %d", pkgNo, trip.PkgsTotal),
			}, nil
		}
		return nil, err
	}
	out := &LoadScanResult{
		Outcome: res.Outcome,
		TripID:  trip.ID,
		PkgNo:   pkgNo,
		Closed:  res.Closed,
	}
	if res.Outcome == enums.LoadOutcomeDuplicate {
		out.Result = enums.ScanResultDuplicate
		out.Reason = "package already loaded"
	} else {
		out.Result = enums.ScanResultSuccess
	}
	return out, nil
}

// CompleteOrder settles every line of the order in one transaction: the
// scanned quantity becomes a shipment line, any shortfall a backorder, and
// the queue rows are cleared.
func (s *service) CompleteOrder(ctx context.Context, orderID int64, orderNo, username string) ([]CompletedLine, error) {
	if orderID <= 0 {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	if orderNo == "" {
		return nil, errors.New(errors.CodeValidation, "order no is required")
	}
	if username == "" {
		return nil, errors.New(errors.CodeValidation, "username is required")
	}

	lines, err := s.orders.Lines(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order lines")
	}

	var settled []CompletedLine
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		queue := s.queue.WithTx(tx)
		lineRepo := s.lines.WithTx(tx)
		backRepo := s.back.WithTx(tx)

		entries, err := queue.Fetch(ctx, orderID)
		if err != nil {
			return err
		}
		scanned := make(map[string]int, len(entries))
		for _, entry := range entries {
			scanned[entry.ItemCode] = entry.QtySent
		}

		settled = settled[:0]
		for _, line := range lines {
			shipped := decimal.NewFromInt(int64(scanned[line.ItemCode]))
			if shipped.GreaterThan(line.QtyOrdered) {
				shipped = line.QtyOrdered
			}
			if shipped.IsPositive() {
				if _, err := lineRepo.Add(ctx, &models.ShipmentLine{
					InvoiceNo:   line.InvoiceNo,
					ItemCode:    line.ItemCode,
					WarehouseID: line.WarehouseID,
					InvoicedQty: line.QtyOrdered,
					QtyShipped:  shipped,
				}); err != nil {
					return err
				}
			}
			missing := line.QtyOrdered.Sub(shipped)
			if missing.IsPositive() {
				if _, err := backRepo.Accumulate(ctx, &models.Backorder{
					OrderNo:     orderNo,
					ItemCode:    line.ItemCode,
					LineID:      line.LineID,
					WarehouseID: line.WarehouseID,
					QtyMissing:  missing,
				}); err != nil {
					return err
				}
			}
			settled = append(settled, CompletedLine{
				ItemCode:   line.ItemCode,
				QtyShipped: shipped,
				QtyMissing: missing,
			})
		}

		if err := queue.Delete(ctx, orderID); err != nil {
			return err
		}
		if s.trail != nil {
			if err := s.trail.RecordTx(ctx, tx, audit.Entry{
				Username: username,
				Action:   enums.AuditOrderCompleted,
				Details:  fmt.Sprintf("%d lines", len(lines)),
				OrderNo:  orderNo,
			}); err != nil {
				return err
			}
		}
		if s.events != nil {
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventOrderCompleted,
				AggregateType: enums.OutboxAggregateOrder,
				AggregateID:   strconv.FormatInt(orderID, 10),
				Actor:         &outbox.ActorRef{Username: username},
				Data:          map[string]any{"orderNo": orderNo, "lines": len(lines)},
				Version:       1,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "completing order")
	}
	return settled, nil
}

func splitLoadBarcode(raw string) (string, int, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, pkgSeparator)
	if idx <= 0 {
		return "", 0, errors.New(errors.CodeValidation, "barcode missing package suffix")
	}
	root := raw[:idx]
	suffix := raw[idx+len(pkgSeparator):]
	pkgNo, err := strconv.Atoi(suffix)
	if err != nil || pkgNo < 1 {
		return "", 0, errors.New(errors.CodeValidation, "package suffix is not a number")
	}
	return root, pkgNo, nil
}

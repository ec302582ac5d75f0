package trips

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/internal/audit"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
	"github.com/fulfillmentworks/picksync-backend/pkg/outbox"
)

// LineMarker flags shipment lines as loaded once their trip departs.
type LineMarker interface {
	MarkLoadedByInvoiceRoot(ctx context.Context, tx *gorm.DB, invoiceRoot string) error
}

// Service defines trip registry and load ledger operations.
type Service interface {
	UpsertHeader(ctx context.Context, input UpsertHeaderInput) (*models.ShipmentTrip, error)
	MarkLoaded(ctx context.Context, tripID int64, pkgNo int, loadedBy string) (*LoadResult, error)
	SetClosed(ctx context.Context, tripID int64, closed bool, user string) (*models.ShipmentTrip, error)
	Resolve(ctx context.Context, invoiceRoot string, day *time.Time) (*models.ShipmentTrip, error)
	GetByID(ctx context.Context, tripID int64) (*models.ShipmentTrip, error)
	ListHeaders(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error)
	ListHeadersRange(ctx context.Context, start, end time.Time) ([]models.ShipmentTrip, error)
	ListOpenBefore(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error)
}

// UpsertHeaderInput carries the header fields delivered by the upstream sync.
type UpsertHeaderInput struct {
	TripDate     time.Time
	OrderNo      string
	CustomerCode string
	CustomerName string
	Region       string
	Address1     string
	PkgsTotal    int
	InvoiceRoot  string
}

// LoadResult reports the outcome of a load scan together with the trip state
// after the scan.
type LoadResult struct {
	Outcome enums.LoadOutcome
	Trip    *models.ShipmentTrip
	// Closed is true when this scan completed the trip.
	Closed bool
}

type service struct {
	db     *gorm.DB
	repo   Repository
	lines  LineMarker
	trail  audit.Recorder
	events *outbox.Service
}

// NewService wires a trips service. lines, trail and events may be nil in
// tests; production wiring passes all of them.
func NewService(db *gorm.DB, repo Repository, lines LineMarker, trail audit.Recorder, events *outbox.Service) (Service, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "database handle required")
	}
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "trips repository required")
	}
	return &service{db: db, repo: repo, lines: lines, trail: trail, events: events}, nil
}

func (s *service) UpsertHeader(ctx context.Context, input UpsertHeaderInput) (*models.ShipmentTrip, error) {
	if input.OrderNo == "" {
		return nil, errors.New(errors.CodeValidation, "order no is required")
	}
	if input.TripDate.IsZero() {
		return nil, errors.New(errors.CodeValidation, "trip date is required")
	}
	if input.PkgsTotal < 1 {
		return nil, errors.New(errors.CodeValidation, "pkgs total must be at least 1")
	}

	header := &models.ShipmentTrip{
		TripDate:     input.TripDate,
		OrderNo:      input.OrderNo,
		CustomerCode: input.CustomerCode,
		CustomerName: input.CustomerName,
		Region:       input.Region,
		Address1:     input.Address1,
		PkgsTotal:    input.PkgsTotal,
		InvoiceRoot:  input.InvoiceRoot,
	}
	trip, err := s.repo.UpsertHeader(ctx, header)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "upserting trip header")
	}
	return trip, nil
}

// MarkLoaded runs the whole load transition in one transaction: the package
// flip, the counter increment, the shipment-line flags and the auto-close all
// commit or roll back together.
func (s *service) MarkLoaded(ctx context.Context, tripID int64, pkgNo int, loadedBy string) (*LoadResult, error) {
	if tripID <= 0 {
		return nil, errors.New(errors.CodeValidation, "trip id is required")
	}
	if loadedBy == "" {
		return nil, errors.New(errors.CodeValidation, "loaded by is required")
	}

	var result LoadResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, err := repo.GetByID(ctx, tripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "trip not found")
			}
			return err
		}
		if pkgNo < 1 || pkgNo > trip.PkgsTotal {
			return errors.New(errors.CodeCapacityExceeded,
				fmt.Sprintf("package %d outside trip capacity %d", pkgNo, trip.PkgsTotal))
		}

		won, err := repo.FlipPackageLoaded(ctx, tripID, pkgNo, loadedBy)
		if err != nil {
			return err
		}
		if !won {
			result = LoadResult{Outcome: enums.LoadOutcomeDuplicate, Trip: trip}
			return nil
		}

		if err := repo.IncrementLoaded(ctx, tripID); err != nil {
			return err
		}
		trip, err = repo.GetByID(ctx, tripID)
		if err != nil {
			return err
		}

		if err := s.recordTx(ctx, tx, audit.Entry{
			Username: loadedBy,
			Action:   enums.AuditPackageLoaded,
			Details:  progress(trip),
			OrderNo:  trip.OrderNo,
		}); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, enums.OutboxEventPackageLoaded, trip, loadedBy, map[string]any{
			"pkgNo":      pkgNo,
			"pkgsLoaded": trip.PkgsLoaded,
			"pkgsTotal":  trip.PkgsTotal,
		}); err != nil {
			return err
		}

		closed := false
		if trip.PkgsLoaded >= trip.PkgsTotal {
			now := time.Now()
			if err := repo.CloseTrip(ctx, tripID, now); err != nil {
				return err
			}
			if s.lines != nil && trip.InvoiceRoot != "" {
				if err := s.lines.MarkLoadedByInvoiceRoot(ctx, tx, trip.InvoiceRoot); err != nil {
					return err
				}
			}
			// The closing scan normally carries the highest package number;
			// anything else means an earlier package arrived last.
			action := enums.AuditTripAutoClosed
			if pkgNo != trip.PkgsTotal {
				action = enums.AuditTripCompletedLate
			}
			if err := s.recordTx(ctx, tx, audit.Entry{
				Username: loadedBy,
				Action:   action,
				Details:  progress(trip),
				OrderNo:  trip.OrderNo,
			}); err != nil {
				return err
			}
			if err := s.emit(ctx, tx, enums.OutboxEventTripClosed, trip, loadedBy, map[string]any{
				"reason":     "auto",
				"pkgsLoaded": trip.PkgsLoaded,
				"pkgsTotal":  trip.PkgsTotal,
			}); err != nil {
				return err
			}
			trip, err = repo.GetByID(ctx, tripID)
			if err != nil {
				return err
			}
			closed = true
		}

		result = LoadResult{Outcome: enums.LoadOutcomeLoaded, Trip: trip, Closed: closed}
		return nil
	})
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "marking package loaded")
	}
	return &result, nil
}

// SetClosed is the operator override: close an incomplete trip early or
// reopen a closed one.
func (s *service) SetClosed(ctx context.Context, tripID int64, closed bool, user string) (*models.ShipmentTrip, error) {
	if tripID <= 0 {
		return nil, errors.New(errors.CodeValidation, "trip id is required")
	}
	if user == "" {
		return nil, errors.New(errors.CodeValidation, "user is required")
	}

	var out *models.ShipmentTrip
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		trip, err := repo.GetByID(ctx, tripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "trip not found")
			}
			return err
		}
		if trip.Closed == closed {
			out = trip
			return nil
		}
		if err := repo.SetClosed(ctx, tripID, closed); err != nil {
			return err
		}
		trip, err = repo.GetByID(ctx, tripID)
		if err != nil {
			return err
		}

		action := enums.AuditTripReopened
		eventType := enums.OutboxEventTripReopened
		if closed {
			action = enums.AuditTripClosedIncomplete
			eventType = enums.OutboxEventTripClosed
		}
		if err := s.recordTx(ctx, tx, audit.Entry{
			Username: user,
			Action:   action,
			Details:  progress(trip),
			OrderNo:  trip.OrderNo,
		}); err != nil {
			return err
		}
		if err := s.emit(ctx, tx, eventType, trip, user, map[string]any{
			"reason":     "manual",
			"pkgsLoaded": trip.PkgsLoaded,
			"pkgsTotal":  trip.PkgsTotal,
		}); err != nil {
			return err
		}
		out = trip
		return nil
	})
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "toggling trip closed")
	}
	return out, nil
}

// Resolve maps an invoice root to the oldest open, not-yet-full trip. A miss
// is a NotFound the scan flow treats as a normal outcome.
func (s *service) Resolve(ctx context.Context, invoiceRoot string, day *time.Time) (*models.ShipmentTrip, error) {
	if invoiceRoot == "" {
		return nil, errors.New(errors.CodeValidation, "invoice root is required")
	}
	trip, err := s.repo.ResolveByInvoiceRoot(ctx, invoiceRoot, day)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "no open trip for invoice root")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "resolving trip")
	}
	return trip, nil
}

func (s *service) GetByID(ctx context.Context, tripID int64) (*models.ShipmentTrip, error) {
	trip, err := s.repo.GetByID(ctx, tripID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "trip not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading trip")
	}
	return trip, nil
}

func (s *service) ListHeaders(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error) {
	trips, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing trips")
	}
	return trips, nil
}

func (s *service) ListHeadersRange(ctx context.Context, start, end time.Time) ([]models.ShipmentTrip, error) {
	if end.Before(start) {
		return nil, errors.New(errors.CodeValidation, "range end before start")
	}
	trips, err := s.repo.ListByRange(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing trips in range")
	}
	return trips, nil
}

func (s *service) ListOpenBefore(ctx context.Context, day time.Time) ([]models.ShipmentTrip, error) {
	trips, err := s.repo.ListOpenBefore(ctx, day)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing open trips")
	}
	return trips, nil
}

func (s *service) recordTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	if s.trail == nil {
		return nil
	}
	return s.trail.RecordTx(ctx, tx, entry)
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, trip *models.ShipmentTrip, actor string, data map[string]any) error {
	if s.events == nil {
		return nil
	}
	data["tripId"] = trip.ID
	data["orderNo"] = trip.OrderNo
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateTrip,
		AggregateID:   fmt.Sprintf("%d", trip.ID),
		Actor:         &outbox.ActorRef{Username: actor},
		Data:          data,
		Version:       1,
	})
}

func progress(trip *models.ShipmentTrip) string {
	return fmt.Sprintf("%d/%d", trip.PkgsLoaded, trip.PkgsTotal)
}

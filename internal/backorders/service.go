package backorders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/internal/audit"
	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

// Service defines backorder ledger operations.
type Service interface {
	Insert(ctx context.Context, input InsertInput) (*models.Backorder, error)
	MarkFulfilled(ctx context.Context, id int64, user string) (*models.Backorder, error)
	ListPending(ctx context.Context) ([]models.Backorder, error)
	ListFulfilled(ctx context.Context, onDate *time.Time) ([]models.Backorder, error)
}

// InsertInput carries one recorded shortfall.
type InsertInput struct {
	OrderNo     string
	ItemCode    string
	LineID      int64
	WarehouseID int
	QtyMissing  decimal.Decimal
	ETADate     *time.Time
}

type service struct {
	repo  Repository
	trail audit.Recorder
}

// NewService wires a backorder service. trail may be nil in tests.
func NewService(repo Repository, trail audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "backorder repository required")
	}
	return &service{repo: repo, trail: trail}, nil
}

func (s *service) Insert(ctx context.Context, input InsertInput) (*models.Backorder, error) {
	if input.OrderNo == "" {
		return nil, errors.New(errors.CodeValidation, "order no is required")
	}
	if input.ItemCode == "" {
		return nil, errors.New(errors.CodeValidation, "item code is required")
	}
	if !input.QtyMissing.IsPositive() {
		return nil, errors.New(errors.CodeValidation, "qty missing must be positive")
	}

	row := &models.Backorder{
		OrderNo:     input.OrderNo,
		ItemCode:    input.ItemCode,
		LineID:      input.LineID,
		WarehouseID: input.WarehouseID,
		QtyMissing:  input.QtyMissing,
		ETADate:     input.ETADate,
	}
	out, err := s.repo.Accumulate(ctx, row)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "accumulating backorder")
	}
	return out, nil
}

func (s *service) MarkFulfilled(ctx context.Context, id int64, user string) (*models.Backorder, error) {
	if id <= 0 {
		return nil, errors.New(errors.CodeValidation, "backorder id is required")
	}
	if user == "" {
		return nil, errors.New(errors.CodeValidation, "user is required")
	}

	flipped, err := s.repo.MarkFulfilled(ctx, id, time.Now())
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "fulfilling backorder")
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "backorder not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading backorder")
	}
	if flipped && s.trail != nil {
		if err := s.trail.Record(ctx, audit.Entry{
			Username: user,
			Action:   enums.AuditBackorderFulfilled,
			Details:  fmt.Sprintf("%s x%s", row.ItemCode, row.QtyMissing.String()),
			OrderNo:  row.OrderNo,
		}); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.Backorder, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing pending backorders")
	}
	return rows, nil
}

func (s *service) ListFulfilled(ctx context.Context, onDate *time.Time) ([]models.Backorder, error) {
	rows, err := s.repo.ListFulfilled(ctx, onDate)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing fulfilled backorders")
	}
	return rows, nil
}

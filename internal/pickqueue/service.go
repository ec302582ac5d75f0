package pickqueue

import (
	"context"
	"time"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

// Service defines the pick queue operations exposed to scan flows.
type Service interface {
	Increment(ctx context.Context, orderID int64, itemCode string, delta int) (int, error)
	Fetch(ctx context.Context, orderID int64) (map[string]int, error)
	Delete(ctx context.Context, orderID int64) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires a pick queue service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "pick queue repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Increment(ctx context.Context, orderID int64, itemCode string, delta int) (int, error) {
	if orderID <= 0 {
		return 0, errors.New(errors.CodeValidation, "order id is required")
	}
	if itemCode == "" {
		return 0, errors.New(errors.CodeValidation, "item code is required")
	}
	if delta <= 0 {
		return 0, errors.New(errors.CodeValidation, "delta must be positive")
	}
	qty, err := s.repo.Increment(ctx, orderID, itemCode, delta)
	if err != nil {
		return 0, errors.Wrap(errors.CodeDependency, err, "incrementing pick queue")
	}
	return qty, nil
}

func (s *service) Fetch(ctx context.Context, orderID int64) (map[string]int, error) {
	if orderID <= 0 {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	entries, err := s.repo.Fetch(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "fetching pick queue")
	}
	return entriesToMap(entries), nil
}

func (s *service) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return errors.New(errors.CodeValidation, "order id is required")
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "deleting pick queue rows")
	}
	return nil
}

func (s *service) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	removed, err := s.repo.DeleteStale(ctx, olderThan)
	if err != nil {
		return 0, errors.Wrap(errors.CodeDependency, err, "deleting stale pick queue rows")
	}
	return removed, nil
}

func entriesToMap(entries []models.PickQueueEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, entry := range entries {
		out[entry.ItemCode] = entry.QtySent
	}
	return out
}

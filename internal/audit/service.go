package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/fulfillmentworks/picksync-backend/pkg/db/models"
	"github.com/fulfillmentworks/picksync-backend/pkg/enums"
	"github.com/fulfillmentworks/picksync-backend/pkg/errors"
)

// Recorder appends user activity entries. Implementations must never make the
// caller's operation fail because of an audit write; use RecordTx inside the
// caller's transaction when the entry must commit with the state change.
type Recorder interface {
	Record(ctx context.Context, input Entry) error
	RecordTx(ctx context.Context, tx *gorm.DB, input Entry) error
}

// Entry captures one user action.
type Entry struct {
	Username string
	Action   enums.AuditAction
	Details  string
	OrderNo  string
}

// Service defines audit trail operations.
type Service interface {
	Recorder
	ListByOrderNo(ctx context.Context, orderNo string) ([]models.AuditEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input Entry) error {
	return s.RecordTx(ctx, nil, input)
}

func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input Entry) error {
	if input.Username == "" {
		return errors.New(errors.CodeValidation, "username is required")
	}
	if !input.Action.IsValid() {
		return errors.New(errors.CodeValidation, "unknown audit action")
	}
	entry := &models.AuditEntry{
		Username: input.Username,
		Action:   input.Action,
		Details:  input.Details,
		OrderNo:  input.OrderNo,
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "recording audit entry")
	}
	return nil
}

func (s *service) ListByOrderNo(ctx context.Context, orderNo string) ([]models.AuditEntry, error) {
	if orderNo == "" {
		return nil, errors.New(errors.CodeValidation, "order no is required")
	}
	entries, err := s.repo.ListByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing audit entries")
	}
	return entries, nil
}

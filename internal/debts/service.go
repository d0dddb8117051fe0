package debts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/db/models"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

// Service defines debt tracking behavior.
type Service interface {
	Get(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) (*models.Debt, error)
	List(ctx context.Context, filters Filters) ([]models.Debt, error)
	Pay(ctx context.Context, warehouseID *uuid.UUID, req PayRequest) (*models.Debt, error)
	OutstandingTotal(ctx context.Context, warehouseID *uuid.UUID) (decimal.Decimal, error)
}

// PayRequest records a repayment against a debt.
type PayRequest struct {
	DebtID uuid.UUID       `json:"debt_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type service struct {
	repo Repository
}

// NewService constructs a debts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debts repository is required")
	}
	return &service{repo: repo}, nil
}

// Get loads a debt, treating out-of-scope rows as absent.
func (s *service) Get(ctx context.Context, warehouseID *uuid.UUID, id uuid.UUID) (*models.Debt, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading debt")
	}
	if warehouseID != nil && debt.WarehouseID != *warehouseID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
	}
	return debt, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.Debt, error) {
	debts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing debts")
	}
	return debts, nil
}

// Pay applies a repayment. Overpayment is rejected outright rather than
// clamped; the caller sees the remaining balance in the error details.
func (s *service) Pay(ctx context.Context, warehouseID *uuid.UUID, req PayRequest) (*models.Debt, error) {
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if _, err := s.Get(ctx, warehouseID, req.DebtID); err != nil {
		return nil, err
	}

	affected, err := s.repo.ApplyPayment(ctx, req.DebtID, req.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying payment")
	}
	if affected == 0 {
		// The guarded UPDATE refused: re-read to report why.
		current, readErr := s.Get(ctx, warehouseID, req.DebtID)
		if readErr != nil {
			return nil, readErr
		}
		if current.Remaining().IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "debt already settled")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds remaining balance").
			WithDetails(map[string]string{"remaining": current.Remaining().String()})
	}

	return s.Get(ctx, warehouseID, req.DebtID)
}

func (s *service) OutstandingTotal(ctx context.Context, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	total, err := s.repo.OutstandingTotal(ctx, warehouseID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing debts")
	}
	return total, nil
}

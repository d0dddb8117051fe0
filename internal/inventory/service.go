package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/debts"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/pagination"
)

// Service defines ledger behavior. Record is the only write path for stock.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Transaction, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*TransactionList, error)
	SummarizeSince(ctx context.Context, warehouseID *uuid.UUID, since time.Time) (*Summary, error)
	TopProducts(ctx context.Context, warehouseID *uuid.UUID, since time.Time, limit int) ([]ProductSales, error)
	SellerStats(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]SellerStat, error)
}

// RecordInput carries a stock movement request. ActorWarehouseID is nil for
// admins; everyone else is pinned to their own warehouse.
type RecordInput struct {
	ProductID        uuid.UUID
	Type             enums.TransactionType
	Quantity         int
	PaymentType      enums.PaymentType
	CustomerName     string
	Description      string
	ActorID          uuid.UUID
	ActorWarehouseID *uuid.UUID
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	debts   debts.Repository
	tx      txRunner
}

// ServiceParams bundles the dependencies required to build an inventory service.
type ServiceParams struct {
	Repo        Repository
	CatalogRepo catalog.Repository
	DebtsRepo   debts.Repository
	TxRunner    txRunner
}

// NewService constructs an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if params.DebtsRepo == nil {
		return nil, fmt.Errorf("debts repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		repo:    params.Repo,
		catalog: params.CatalogRepo,
		debts:   params.DebtsRepo,
		tx:      params.TxRunner,
	}, nil
}

// Record adjusts stock and appends the ledger row in one transaction. A debt
// sale additionally opens a debt for the acting seller. The stock guard lives
// in the UPDATE itself, so concurrent sales cannot oversell: the loser of the
// race sees zero rows affected and the whole transaction rolls back.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Transaction, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown transaction type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	paymentType := input.PaymentType
	if paymentType == "" {
		paymentType = enums.PaymentTypeCash
	}
	if !paymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment type %q", paymentType))
	}
	if paymentType == enums.PaymentTypeDebt && input.Type != enums.TransactionOutSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt payment only applies to sales")
	}

	var transaction *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)

		product, err := catalogRepo.FindProduct(ctx, input.ProductID)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if input.ActorWarehouseID != nil && product.WarehouseID != *input.ActorWarehouseID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		delta := input.Quantity
		if !input.Type.IsInbound() {
			delta = -input.Quantity
		}

		affected, err := catalogRepo.AdjustStock(ctx, product.ID, delta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"available":  product.StockQuantity,
					"requested":  input.Quantity,
				})
		}

		transaction = &models.Transaction{
			ProductID:    product.ID,
			WarehouseID:  product.WarehouseID,
			Type:         input.Type,
			Quantity:     input.Quantity,
			ActorID:      input.ActorID,
			PaymentType:  paymentType,
			CustomerName: input.CustomerName,
			Description:  input.Description,
		}
		if err := s.repo.WithTx(tx).Create(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording transaction")
		}

		if paymentType == enums.PaymentTypeDebt {
			debt := &models.Debt{
				SellerID:    input.ActorID,
				ProductID:   product.ID,
				WarehouseID: product.WarehouseID,
				Quantity:    input.Quantity,
				TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
				Status:      enums.DebtStatusPending,
			}
			if err := s.debts.WithTx(tx).Create(ctx, debt); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening debt")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*TransactionList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}
	return list, nil
}

func (s *service) SummarizeSince(ctx context.Context, warehouseID *uuid.UUID, since time.Time) (*Summary, error) {
	summary, err := s.repo.SummarizeSince(ctx, warehouseID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarizing transactions")
	}
	return summary, nil
}

func (s *service) TopProducts(ctx context.Context, warehouseID *uuid.UUID, since time.Time, limit int) ([]ProductSales, error) {
	rows, err := s.repo.TopProducts(ctx, warehouseID, since, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ranking products")
	}
	return rows, nil
}

func (s *service) SellerStats(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]SellerStat, error) {
	rows, err := s.repo.SellerStats(ctx, warehouseID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating seller sales")
	}
	return rows, nil
}

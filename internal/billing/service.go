package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/notify"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

// Service defines subscription billing behavior, including the payment
// confirmation path that unblocks a manager and their sellers.
type Service interface {
	EnrollManager(ctx context.Context, tx *gorm.DB, userID, warehouseID uuid.UUID) error
	Status(ctx context.Context, userID uuid.UUID) (*StatusDTO, error)
	ListAccounts(ctx context.Context) ([]AccountDTO, error)
	SubmitPayment(ctx context.Context, userID uuid.UUID, req SubmitPaymentRequest) (*models.Payment, error)
	ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID) (*models.Payment, error)
	RejectPayment(ctx context.Context, adminID, paymentID uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error)
	RevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// StatusDTO is the manager-facing snapshot of their subscription. The
// countdown is advisory; the control loop is the authority.
type StatusDTO struct {
	AccountID      uuid.UUID       `json:"account_id"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount"`
	Currency       string          `json:"currency"`
	LastPaymentAt  *time.Time      `json:"last_payment_at,omitempty"`
	IsDue          bool            `json:"is_due"`
	DaysUntilBlock int             `json:"days_until_block"`
	Blocked        bool            `json:"blocked"`
}

// AccountDTO is the admin-facing account listing row.
type AccountDTO struct {
	StatusDTO
	UserID      uuid.UUID `json:"user_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
}

// SubmitPaymentRequest opens a pending subscription payment.
type SubmitPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BlockSetter is the slice of the identity repository the cascade needs.
type BlockSetter interface {
	SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error
	SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	users    func(tx *gorm.DB) BlockSetter
	auditor  *audit.Recorder
	notifier notify.Dispatcher
	policy   Policy
	subCfg   config.SubscriptionConfig
	billCfg  config.BillingConfig
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a billing service.
type ServiceParams struct {
	Repo               Repository
	TxRunner           txRunner
	BlockSetterFactory func(tx *gorm.DB) BlockSetter
	Auditor            *audit.Recorder
	Notifier           notify.Dispatcher
	SubscriptionConfig config.SubscriptionConfig
	BillingConfig      config.BillingConfig
	Now                func() time.Time
}

// NewService constructs a billing service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("billing repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.BlockSetterFactory == nil {
		return nil, fmt.Errorf("block setter factory is required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notify.NoopDispatcher{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		users:    params.BlockSetterFactory,
		auditor:  params.Auditor,
		notifier: notifier,
		policy:   PolicyFromConfig(params.SubscriptionConfig),
		subCfg:   params.SubscriptionConfig,
		billCfg:  params.BillingConfig,
		now:      now,
	}, nil
}

// EnrollManager opens the subscription account for a new manager inside the
// caller's transaction. Satisfies the identity package's enroller contract.
func (s *service) EnrollManager(ctx context.Context, tx *gorm.DB, userID, warehouseID uuid.UUID) error {
	account := &models.SubscriptionAccount{
		UserID:        userID,
		WarehouseID:   warehouseID,
		MonthlyAmount: s.subCfg.DefaultMonthlyAmount(),
	}
	return s.repo.WithTx(tx).CreateAccount(ctx, account)
}

func (s *service) Status(ctx context.Context, userID uuid.UUID) (*StatusDTO, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	dto := s.statusFor(account)
	return &dto, nil
}

func (s *service) statusFor(account *models.SubscriptionAccount) StatusDTO {
	now := s.now()
	return StatusDTO{
		AccountID:      account.ID,
		MonthlyAmount:  account.MonthlyAmount,
		Currency:       s.billCfg.Currency,
		LastPaymentAt:  account.LastPaymentAt,
		IsDue:          s.policy.IsDue(account, now),
		DaysUntilBlock: s.policy.DaysUntilBlock(account, now),
		Blocked:        account.Blocked,
	}
}

func (s *service) ListAccounts(ctx context.Context) ([]AccountDTO, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing accounts")
	}
	dtos := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, AccountDTO{
			StatusDTO:   s.statusFor(&accounts[i]),
			UserID:      accounts[i].UserID,
			WarehouseID: accounts[i].WarehouseID,
		})
	}
	return dtos, nil
}

func (s *service) SubmitPayment(ctx context.Context, userID uuid.UUID, req SubmitPaymentRequest) (*models.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if _, err := s.repo.FindAccountByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	payment := &models.Payment{
		UserID:      userID,
		Amount:      req.Amount,
		Status:      enums.PaymentStatusPending,
		Description: req.Description,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payment")
	}
	return payment, nil
}

// ConfirmPayment is the only path out of BLOCKED. In one transaction it moves
// the payment PENDING -> PAID, resets the account clock, and lifts the block
// from the manager and every seller in their warehouse.
func (s *service) ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	// Confirming an already-confirmed payment is a no-op: the first
	// confirmation applied it, so a repeated admin click must not error.
	if payment.Status == enums.PaymentStatusPaid {
		return payment, nil
	}
	if payment.Status == enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment was rejected")
	}

	account, err := s.repo.FindAccountByUserID(ctx, payment.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	wasBlocked := account.Blocked
	now := s.now()

	raced := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.TransitionPayment(ctx, paymentID, enums.PaymentStatusPending, enums.PaymentStatusPaid)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transitioning payment")
		}
		if affected == 0 {
			// Another admin got there first. If the payment ended up PAID
			// the outcome is the one we wanted; anything else is a conflict.
			current, err := repo.FindPayment(ctx, paymentID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading payment")
			}
			if current.Status == enums.PaymentStatusPaid {
				raced = true
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not pending")
		}

		if err := repo.ApplyPayment(ctx, account.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying payment")
		}

		users := s.users(tx)
		if err := users.SetBlocked(ctx, account.UserID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unblocking manager")
		}
		if _, err := users.SetBlockedForWarehouseSellers(ctx, account.WarehouseID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unblocking sellers")
		}

		s.auditor.RecordTx(ctx, tx, audit.Entry{
			ActorID:     &adminID,
			Action:      fmt.Sprintf("payment %s confirmed for account %s", paymentID, account.ID),
			WarehouseID: &account.WarehouseID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasBlocked && !raced {
		s.notifier.SendUnblockNotice(ctx, account.ID, account.UserID)
	}

	return s.loadPayment(ctx, paymentID)
}

func (s *service) RejectPayment(ctx context.Context, adminID, paymentID uuid.UUID) (*models.Payment, error) {
	affected, err := s.repo.TransitionPayment(ctx, paymentID, enums.PaymentStatusPending, enums.PaymentStatusFailed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transitioning payment")
	}
	if affected == 0 {
		if _, err := s.loadPayment(ctx, paymentID); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not pending")
	}

	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Entry{
		ActorID: &adminID,
		Action:  fmt.Sprintf("payment %s rejected", paymentID),
	})
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error) {
	payments, err := s.repo.ListPayments(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payments")
	}
	return payments, nil
}

// RevenueSince totals confirmed subscription payments for the admin dashboard.
func (s *service) RevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	total, err := s.repo.SumPaidSince(ctx, since)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing payments")
	}
	return total, nil
}

func (s *service) loadPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindPayment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}
	return payment, nil
}

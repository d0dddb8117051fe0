package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
)

type stubBillingRepo struct {
	account  *models.SubscriptionAccount
	payments map[uuid.UUID]*models.Payment
}

func newStubBillingRepo(account *models.SubscriptionAccount) *stubBillingRepo {
	return &stubBillingRepo{account: account, payments: map[uuid.UUID]*models.Payment{}}
}

func (s *stubBillingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBillingRepo) CreateAccount(ctx context.Context, account *models.SubscriptionAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	s.account = account
	return nil
}

func (s *stubBillingRepo) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.SubscriptionAccount, error) {
	if s.account == nil || s.account.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	a := *s.account
	return &a, nil
}

func (s *stubBillingRepo) ListAccounts(ctx context.Context) ([]models.SubscriptionAccount, error) {
	if s.account == nil {
		return nil, nil
	}
	return []models.SubscriptionAccount{*s.account}, nil
}

func (s *stubBillingRepo) ListUnblockedAccounts(ctx context.Context) ([]models.SubscriptionAccount, error) {
	if s.account == nil || s.account.Blocked {
		return nil, nil
	}
	return []models.SubscriptionAccount{*s.account}, nil
}

func (s *stubBillingRepo) MarkWarned(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.account != nil && s.account.ID == id {
		s.account.WarnedAt = &at
	}
	return nil
}

func (s *stubBillingRepo) Block(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.account == nil || s.account.ID != id || s.account.Blocked {
		return 0, nil
	}
	s.account.Blocked = true
	return 1, nil
}

func (s *stubBillingRepo) ApplyPayment(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	if s.account != nil && s.account.ID == id {
		at := paidAt
		s.account.LastPaymentAt = &at
		s.account.Blocked = false
		s.account.WarnedAt = nil
	}
	return nil
}

func (s *stubBillingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.payments[payment.ID] = payment
	return nil
}

func (s *stubBillingRepo) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := *payment
	return &p, nil
}

func (s *stubBillingRepo) ListPayments(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if userID == nil || p.UserID == *userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubBillingRepo) TransitionPayment(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus) (int64, error) {
	payment, ok := s.payments[id]
	if !ok || payment.Status != from {
		return 0, nil
	}
	payment.Status = to
	return 1, nil
}

func (s *stubBillingRepo) SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.payments {
		if p.Status == enums.PaymentStatusPaid {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

type stubBlockSetter struct {
	userBlocks   map[uuid.UUID]bool
	sellerBlocks map[uuid.UUID]bool // warehouseID -> blocked
}

func newStubBlockSetter() *stubBlockSetter {
	return &stubBlockSetter{userBlocks: map[uuid.UUID]bool{}, sellerBlocks: map[uuid.UUID]bool{}}
}

func (s *stubBlockSetter) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	s.userBlocks[userID] = blocked
	return nil
}

func (s *stubBlockSetter) SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error) {
	s.sellerBlocks[warehouseID] = blocked
	return 2, nil
}

type stubNotifier struct {
	warnings  []uuid.UUID
	blocks    []uuid.UUID
	unblocks  []uuid.UUID
	lowStocks []uuid.UUID
}

func (s *stubNotifier) SendPaymentWarning(ctx context.Context, accountID, userID uuid.UUID) {
	s.warnings = append(s.warnings, accountID)
}

func (s *stubNotifier) SendBlockNotice(ctx context.Context, accountID, userID uuid.UUID) {
	s.blocks = append(s.blocks, accountID)
}

func (s *stubNotifier) SendUnblockNotice(ctx context.Context, accountID, userID uuid.UUID) {
	s.unblocks = append(s.unblocks, accountID)
}

func (s *stubNotifier) SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string) {
	s.lowStocks = append(s.lowStocks, productID)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func subscriptionTestConfig() config.SubscriptionConfig {
	return config.SubscriptionConfig{
		DueAfterDays:   31,
		WarnAtDays:     32,
		BlockAfterDays: 33,
		MonthlyAmount:  "300000",
	}
}

func newBillingFixture(t *testing.T, account *models.SubscriptionAccount) (Service, *stubBillingRepo, *stubBlockSetter, *stubNotifier) {
	t.Helper()
	repo := newStubBillingRepo(account)
	setter := newStubBlockSetter()
	notifier := &stubNotifier{}

	svc, err := NewService(ServiceParams{
		Repo:               repo,
		TxRunner:           stubTxRunner{},
		BlockSetterFactory: func(tx *gorm.DB) BlockSetter { return setter },
		Notifier:           notifier,
		SubscriptionConfig: subscriptionTestConfig(),
		BillingConfig:      config.BillingConfig{Currency: "UZS"},
		Now:                func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, setter, notifier
}

func blockedAccount() *models.SubscriptionAccount {
	last := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.SubscriptionAccount{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		WarehouseID:   uuid.New(),
		MonthlyAmount: decimal.NewFromInt(300000),
		LastPaymentAt: &last,
		Blocked:       true,
	}
}

func TestConfirmPaymentUnblocksManagerAndSellers(t *testing.T) {
	account := blockedAccount()
	previousPayment := *account.LastPaymentAt
	svc, repo, setter, notifier := newBillingFixture(t, account)

	payment, err := svc.SubmitPayment(context.Background(), account.UserID, SubmitPaymentRequest{
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("submit payment: %v", err)
	}

	confirmed, err := svc.ConfirmPayment(context.Background(), uuid.New(), payment.ID)
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	if confirmed.Status != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", confirmed.Status)
	}
	if repo.account.Blocked {
		t.Fatal("account must be unblocked")
	}
	if repo.account.LastPaymentAt == nil || !repo.account.LastPaymentAt.After(previousPayment) {
		t.Fatal("payment clock must reset")
	}
	if repo.account.WarnedAt != nil {
		t.Fatal("warning marker must clear on payment")
	}
	if blocked, ok := setter.userBlocks[account.UserID]; !ok || blocked {
		t.Fatal("manager must be unblocked")
	}
	if blocked, ok := setter.sellerBlocks[account.WarehouseID]; !ok || blocked {
		t.Fatal("sellers must be unblocked in the same transaction")
	}
	if len(notifier.unblocks) != 1 {
		t.Fatal("expected unblock notice")
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	account := blockedAccount()
	svc, _, _, notifier := newBillingFixture(t, account)

	payment, err := svc.SubmitPayment(context.Background(), account.UserID, SubmitPaymentRequest{
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("submit payment: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), uuid.New(), payment.ID); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	again, err := svc.ConfirmPayment(context.Background(), uuid.New(), payment.ID)
	if err != nil {
		t.Fatalf("second confirm must be a no-op, got %v", err)
	}
	if again.Status != enums.PaymentStatusPaid {
		t.Fatalf("expected PAID, got %s", again.Status)
	}
	if len(notifier.unblocks) != 1 {
		t.Fatalf("expected a single unblock notice, got %d", len(notifier.unblocks))
	}
}

func TestRejectPaymentTerminal(t *testing.T) {
	account := blockedAccount()
	svc, repo, _, _ := newBillingFixture(t, account)

	payment, err := svc.SubmitPayment(context.Background(), account.UserID, SubmitPaymentRequest{
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("submit payment: %v", err)
	}

	rejected, err := svc.RejectPayment(context.Background(), uuid.New(), payment.ID)
	if err != nil {
		t.Fatalf("reject payment: %v", err)
	}
	if rejected.Status != enums.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", rejected.Status)
	}
	if !repo.account.Blocked {
		t.Fatal("rejected payment must not unblock the account")
	}

	_, err = svc.ConfirmPayment(context.Background(), uuid.New(), payment.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict confirming a failed payment, got %v", err)
	}
}

func TestRevenueSinceCountsOnlyConfirmedPayments(t *testing.T) {
	account := blockedAccount()
	svc, _, _, _ := newBillingFixture(t, account)

	pending, err := svc.SubmitPayment(context.Background(), account.UserID, SubmitPaymentRequest{
		Amount: decimal.NewFromInt(300000),
	})
	if err != nil {
		t.Fatalf("submit payment: %v", err)
	}

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	total, err := svc.RevenueSince(context.Background(), since)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("pending payments must not count, got %s", total)
	}

	if _, err := svc.ConfirmPayment(context.Background(), uuid.New(), pending.ID); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	total, err = svc.RevenueSince(context.Background(), since)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("expected 300000, got %s", total)
	}
}

func TestSubmitPaymentValidation(t *testing.T) {
	account := blockedAccount()
	svc, _, _, _ := newBillingFixture(t, account)

	_, err := svc.SubmitPayment(context.Background(), account.UserID, SubmitPaymentRequest{Amount: decimal.Zero})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.SubmitPayment(context.Background(), uuid.New(), SubmitPaymentRequest{Amount: decimal.NewFromInt(1)})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
}

func TestStatusCountdown(t *testing.T) {
	last := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC) // 30 days before "now"
	account := &models.SubscriptionAccount{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		WarehouseID:   uuid.New(),
		MonthlyAmount: decimal.NewFromInt(300000),
		LastPaymentAt: &last,
	}
	svc, _, _, _ := newBillingFixture(t, account)

	status, err := svc.Status(context.Background(), account.UserID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.DaysUntilBlock != 3 {
		t.Fatalf("expected 3 days until block, got %d", status.DaysUntilBlock)
	}
	if status.IsDue {
		t.Fatal("account at day 30 is not yet due")
	}
	if status.Currency != "UZS" {
		t.Fatalf("expected UZS, got %s", status.Currency)
	}
}

package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

type stubAccountRepo struct {
	billing.Repository
	accounts      []*models.SubscriptionAccount
	markWarnedErr error
	warnedIDs     []uuid.UUID
	// paidDuringScan simulates a payment confirmation landing between the
	// scan and the guarded block update.
	paidDuringScan bool
}

func (s *stubAccountRepo) WithTx(tx *gorm.DB) billing.Repository { return s }

func (s *stubAccountRepo) ListUnblockedAccounts(ctx context.Context) ([]models.SubscriptionAccount, error) {
	var out []models.SubscriptionAccount
	for _, a := range s.accounts {
		if !a.Blocked {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAccountRepo) MarkWarned(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.markWarnedErr != nil {
		return s.markWarnedErr
	}
	for _, a := range s.accounts {
		if a.ID == id {
			warnedAt := at
			a.WarnedAt = &warnedAt
		}
	}
	s.warnedIDs = append(s.warnedIDs, id)
	return nil
}

func (s *stubAccountRepo) Block(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.paidDuringScan {
		return 0, nil
	}
	for _, a := range s.accounts {
		if a.ID == id && !a.Blocked {
			a.Blocked = true
			return 1, nil
		}
	}
	return 0, nil
}

type stubCascade struct {
	userBlocks   map[uuid.UUID]bool
	sellerBlocks map[uuid.UUID]bool
}

func newStubCascade() *stubCascade {
	return &stubCascade{userBlocks: map[uuid.UUID]bool{}, sellerBlocks: map[uuid.UUID]bool{}}
}

func (s *stubCascade) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	s.userBlocks[userID] = blocked
	return nil
}

func (s *stubCascade) SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error) {
	s.sellerBlocks[warehouseID] = blocked
	return 2, nil
}

type stubAlerts struct {
	warnings []uuid.UUID
	blocks   []uuid.UUID
}

func (s *stubAlerts) SendPaymentWarning(ctx context.Context, accountID, userID uuid.UUID) {
	s.warnings = append(s.warnings, accountID)
}

func (s *stubAlerts) SendBlockNotice(ctx context.Context, accountID, userID uuid.UUID) {
	s.blocks = append(s.blocks, accountID)
}

func (s *stubAlerts) SendUnblockNotice(ctx context.Context, accountID, userID uuid.UUID) {}

func (s *stubAlerts) SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string) {
}

type jobTxRunner struct{}

func (jobTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func testSubscriptionConfig() config.SubscriptionConfig {
	return config.SubscriptionConfig{DueAfterDays: 31, WarnAtDays: 32, BlockAfterDays: 33, MonthlyAmount: "300000"}
}

func accountPaidDaysAgo(days int, now time.Time) *models.SubscriptionAccount {
	paidAt := now.AddDate(0, 0, -days)
	return &models.SubscriptionAccount{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		WarehouseID:   uuid.New(),
		LastPaymentAt: &paidAt,
	}
}

func newAutoBlockFixture(t *testing.T, repo *stubAccountRepo, now time.Time) (Job, *stubCascade, *stubAlerts) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	cascade := newStubCascade()
	alerts := &stubAlerts{}
	job, err := NewPaymentAutoBlockJob(PaymentAutoBlockJobParams{
		Logger:             logg,
		DB:                 jobTxRunner{},
		BillingRepo:        repo,
		BlockSetterFactory: func(tx *gorm.DB) billing.BlockSetter { return cascade },
		Auditor:            audit.NewRecorder(nil, logg),
		Notifier:           alerts,
		SubscriptionConfig: testSubscriptionConfig(),
		Now:                func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("building job: %v", err)
	}
	return job, cascade, alerts
}

func TestAutoBlockWarnsOneDayBeforeBlock(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	account := accountPaidDaysAgo(32, now)
	repo := &stubAccountRepo{accounts: []*models.SubscriptionAccount{account}}
	job, cascade, alerts := newAutoBlockFixture(t, repo, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(alerts.warnings) != 1 || alerts.warnings[0] != account.ID {
		t.Fatalf("expected one warning for %s, got %v", account.ID, alerts.warnings)
	}
	if account.WarnedAt == nil || !account.WarnedAt.Equal(now) {
		t.Fatalf("expected warned_at set to now, got %v", account.WarnedAt)
	}
	if account.Blocked {
		t.Fatal("account must not be blocked on the warning day")
	}
	if len(cascade.userBlocks) != 0 {
		t.Fatalf("no cascade expected on warning, got %v", cascade.userBlocks)
	}
}

func TestAutoBlockWarnsOncePerCycle(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	account := accountPaidDaysAgo(32, now)
	repo := &stubAccountRepo{accounts: []*models.SubscriptionAccount{account}}
	job, _, alerts := newAutoBlockFixture(t, repo, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(alerts.warnings) != 1 {
		t.Fatalf("expected a single warning across two runs, got %d", len(alerts.warnings))
	}
}

func TestAutoBlockBlocksAccountAndCascades(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	account := accountPaidDaysAgo(33, now)
	repo := &stubAccountRepo{accounts: []*models.SubscriptionAccount{account}}
	job, cascade, alerts := newAutoBlockFixture(t, repo, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !account.Blocked {
		t.Fatal("expected account blocked")
	}
	if !cascade.userBlocks[account.UserID] {
		t.Fatal("expected manager blocked")
	}
	if !cascade.sellerBlocks[account.WarehouseID] {
		t.Fatal("expected warehouse sellers blocked")
	}
	if len(alerts.blocks) != 1 || alerts.blocks[0] != account.ID {
		t.Fatalf("expected one block notice for %s, got %v", account.ID, alerts.blocks)
	}
	if len(alerts.warnings) != 0 {
		t.Fatalf("no warning expected past the window, got %v", alerts.warnings)
	}
}

func TestAutoBlockNeverPaidAccountIsBlocked(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	account := &models.SubscriptionAccount{ID: uuid.New(), UserID: uuid.New(), WarehouseID: uuid.New()}
	repo := &stubAccountRepo{accounts: []*models.SubscriptionAccount{account}}
	job, _, alerts := newAutoBlockFixture(t, repo, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !account.Blocked {
		t.Fatal("expected never-paid account blocked")
	}
	if len(alerts.blocks) != 1 {
		t.Fatalf("expected one block notice, got %d", len(alerts.blocks))
	}
}

func TestAutoBlockPaymentRaceSkipsCascade(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	account := accountPaidDaysAgo(33, now)
	repo := &stubAccountRepo{accounts: []*models.SubscriptionAccount{account}, paidDuringScan: true}
	job, cascade, alerts := newAutoBlockFixture(t, repo, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(cascade.userBlocks) != 0 {
		t.Fatalf("cascade must not run after losing the race, got %v", cascade.userBlocks)
	}
	if len(alerts.blocks) != 0 {
		t.Fatalf("no block notice after losing the race, got %v", alerts.blocks)
	}
}

func TestAutoBlockOneFailureDoesNotHaltTheScan(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	warnable := accountPaidDaysAgo(32, now)
	blockable := accountPaidDaysAgo(33, now)
	repo := &stubAccountRepo{
		accounts:      []*models.SubscriptionAccount{warnable, blockable},
		markWarnedErr: errors.New("connection reset"),
	}
	job, cascade, _ := newAutoBlockFixture(t, repo, now)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error from the failed warning")
	}

	if !blockable.Blocked {
		t.Fatal("second account must still be processed")
	}
	if !cascade.userBlocks[blockable.UserID] {
		t.Fatal("cascade must still run for the second account")
	}
}

package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/olimjonn/warehub-backend/internal/audit"
	"github.com/olimjonn/warehub-backend/internal/billing"
	"github.com/olimjonn/warehub-backend/internal/notify"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/logger"
	"github.com/olimjonn/warehub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentAutoBlockJobParams configures the subscription enforcement job.
type PaymentAutoBlockJobParams struct {
	Logger             *logger.Logger
	DB                 txRunner
	BillingRepo        billing.Repository
	BlockSetterFactory func(tx *gorm.DB) billing.BlockSetter
	Auditor            *audit.Recorder
	Notifier           notify.Dispatcher
	Metrics            *metrics.CronJobMetrics
	SubscriptionConfig config.SubscriptionConfig
	Now                func() time.Time
}

// NewPaymentAutoBlockJob builds the daily job that warns accounts one day
// before their grace window closes and blocks the ones past it.
func NewPaymentAutoBlockJob(params PaymentAutoBlockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.BillingRepo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if params.BlockSetterFactory == nil {
		return nil, fmt.Errorf("block setter factory required")
	}
	if params.Auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notify.NoopDispatcher{}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &paymentAutoBlockJob{
		logg:     params.Logger,
		db:       params.DB,
		billing:  params.BillingRepo,
		users:    params.BlockSetterFactory,
		auditor:  params.Auditor,
		notifier: notifier,
		metrics:  params.Metrics,
		policy:   billing.PolicyFromConfig(params.SubscriptionConfig),
		now:      now,
	}, nil
}

type paymentAutoBlockJob struct {
	logg     *logger.Logger
	db       txRunner
	billing  billing.Repository
	users    func(tx *gorm.DB) billing.BlockSetter
	auditor  *audit.Recorder
	notifier notify.Dispatcher
	metrics  *metrics.CronJobMetrics
	policy   billing.Policy
	now      func() time.Time
}

func (j *paymentAutoBlockJob) Name() string { return "payment-autoblock" }

// Run evaluates every non-blocked account independently. One account failing
// never stops the scan, and the run is re-entrant: a repeated run on the same
// day reaches the same end state.
func (j *paymentAutoBlockJob) Run(ctx context.Context) error {
	now := j.now()
	accounts, err := j.billing.ListUnblockedAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list subscription accounts: %w", err)
	}

	var errs error
	scanned := len(accounts)
	warned := 0
	blocked := 0
	for i := range accounts {
		account := &accounts[i]
		switch {
		case j.policy.ShouldBlock(account, now):
			if err := j.blockAccount(ctx, account); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("block account %s: %w", account.ID, err))
				continue
			}
			blocked++
		case j.policy.ShouldWarn(account, now):
			if err := j.warnAccount(ctx, account, now); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("warn account %s: %w", account.ID, err))
				continue
			}
			warned++
		}
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": scanned,
		"warned":  warned,
		"blocked": blocked,
	})
	j.logg.Info(reportCtx, "subscription scan complete")
	return errs
}

func (j *paymentAutoBlockJob) warnAccount(ctx context.Context, account *models.SubscriptionAccount, now time.Time) error {
	if err := j.billing.MarkWarned(ctx, account.ID, now); err != nil {
		return fmt.Errorf("mark warned: %w", err)
	}
	// Fire-and-forget: the marker above is what makes the warning one-shot.
	j.notifier.SendPaymentWarning(ctx, account.ID, account.UserID)
	if j.metrics != nil {
		j.metrics.IncWarned()
	}
	j.auditor.Record(ctx, audit.Entry{
		Action:      fmt.Sprintf("payment warning sent for account %s", account.ID),
		WarehouseID: &account.WarehouseID,
	})
	return nil
}

// blockAccount applies the manager block and the seller cascade in a single
// transaction, so a crash mid-cascade cannot strand the warehouse half
// blocked. Notification dispatch happens after commit and stays best-effort.
func (j *paymentAutoBlockJob) blockAccount(ctx context.Context, account *models.SubscriptionAccount) error {
	raced := false
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := j.billing.WithTx(tx).Block(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("block: %w", err)
		}
		if affected == 0 {
			// A payment confirmation got here first; nothing to do.
			raced = true
			return nil
		}

		users := j.users(tx)
		if err := users.SetBlocked(ctx, account.UserID, true); err != nil {
			return fmt.Errorf("block manager: %w", err)
		}
		if _, err := users.SetBlockedForWarehouseSellers(ctx, account.WarehouseID, true); err != nil {
			return fmt.Errorf("block sellers: %w", err)
		}

		j.auditor.RecordTx(ctx, tx, audit.Entry{
			Action:      fmt.Sprintf("account %s auto-blocked for non-payment", account.ID),
			WarehouseID: &account.WarehouseID,
		})
		return nil
	})
	if err != nil {
		return err
	}
	if raced {
		return nil
	}

	j.notifier.SendBlockNotice(ctx, account.ID, account.UserID)
	if j.metrics != nil {
		j.metrics.IncBlocked()
	}
	return nil
}

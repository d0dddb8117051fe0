package billing

import (
	"time"

	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
)

// Policy holds the subscription grace-window thresholds. Values come from
// configuration; nothing below hardcodes a day count.
type Policy struct {
	DueAfterDays   int
	WarnAtDays     int
	BlockAfterDays int
}

// PolicyFromConfig lifts the configured thresholds into a Policy.
func PolicyFromConfig(cfg config.SubscriptionConfig) Policy {
	return Policy{
		DueAfterDays:   cfg.DueAfterDays,
		WarnAtDays:     cfg.WarnAtDays,
		BlockAfterDays: cfg.BlockAfterDays,
	}
}

// DaysElapsedSince counts whole days between the last payment and now. A nil
// last payment reads as the block boundary: a never-paid account is
// immediately blockable.
func (p Policy) DaysElapsedSince(lastPaymentAt *time.Time, now time.Time) int {
	if lastPaymentAt == nil {
		return p.BlockAfterDays
	}
	elapsed := now.Sub(*lastPaymentAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours() / 24)
}

// IsDue reports whether the account owes a payment.
func (p Policy) IsDue(account *models.SubscriptionAccount, now time.Time) bool {
	if account.LastPaymentAt == nil {
		return true
	}
	return now.After(account.LastPaymentAt.AddDate(0, 0, p.DueAfterDays))
}

// DaysUntilBlock counts down to the hard block. Never negative.
func (p Policy) DaysUntilBlock(account *models.SubscriptionAccount, now time.Time) int {
	d := p.BlockAfterDays - p.DaysElapsedSince(account.LastPaymentAt, now)
	if d < 0 {
		return 0
	}
	return d
}

// ShouldWarn reports whether the account is inside the configured warning
// window and has not been warned this cycle. WarnedAt from before the current
// cycle's last payment does not count.
func (p Policy) ShouldWarn(account *models.SubscriptionAccount, now time.Time) bool {
	if account.Blocked {
		return false
	}
	elapsed := p.DaysElapsedSince(account.LastPaymentAt, now)
	if elapsed < p.WarnAtDays || elapsed >= p.BlockAfterDays {
		return false
	}
	if account.WarnedAt == nil {
		return true
	}
	if account.LastPaymentAt != nil && account.WarnedAt.Before(*account.LastPaymentAt) {
		return true
	}
	return false
}

// ShouldBlock reports whether the account has exhausted the grace window.
func (p Policy) ShouldBlock(account *models.SubscriptionAccount, now time.Time) bool {
	if account.Blocked {
		return false
	}
	return p.DaysUntilBlock(account, now) <= 0
}

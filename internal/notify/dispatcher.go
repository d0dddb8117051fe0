// Package notify pushes subscription and stock events to the notification
// topic. Dispatch is fire-and-forget: delivery retries belong to the broker,
// not the caller.
package notify

import (
	"context"
	"encoding/json"
	"time"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/pkg/logger"
)

// Event kinds carried on the notification topic.
const (
	EventPaymentWarning  = "subscription.payment_warning"
	EventAccountBlocked  = "subscription.account_blocked"
	EventAccountRestored = "subscription.account_restored"
	EventLowStock        = "inventory.low_stock"
)

// Event is the wire shape published for every notification.
type Event struct {
	Kind        string     `json:"kind"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Message     string     `json:"message,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// Dispatcher sends notification events.
type Dispatcher interface {
	SendPaymentWarning(ctx context.Context, accountID, userID uuid.UUID)
	SendBlockNotice(ctx context.Context, accountID, userID uuid.UUID)
	SendUnblockNotice(ctx context.Context, accountID, userID uuid.UUID)
	SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string)
}

// PubSubDispatcher publishes events to the configured notification topic.
type PubSubDispatcher struct {
	publisher *pubsubv2.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewPubSubDispatcher builds a dispatcher over a Pub/Sub publisher handle.
func NewPubSubDispatcher(publisher *pubsubv2.Publisher, logg *logger.Logger) *PubSubDispatcher {
	return &PubSubDispatcher{publisher: publisher, logg: logg, now: time.Now}
}

func (d *PubSubDispatcher) SendPaymentWarning(ctx context.Context, accountID, userID uuid.UUID) {
	d.publish(ctx, Event{Kind: EventPaymentWarning, AccountID: &accountID, UserID: &userID})
}

func (d *PubSubDispatcher) SendBlockNotice(ctx context.Context, accountID, userID uuid.UUID) {
	d.publish(ctx, Event{Kind: EventAccountBlocked, AccountID: &accountID, UserID: &userID})
}

func (d *PubSubDispatcher) SendUnblockNotice(ctx context.Context, accountID, userID uuid.UUID) {
	d.publish(ctx, Event{Kind: EventAccountRestored, AccountID: &accountID, UserID: &userID})
}

func (d *PubSubDispatcher) SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string) {
	d.publish(ctx, Event{Kind: EventLowStock, ProductID: &productID, WarehouseID: &warehouseID, Message: message})
}

func (d *PubSubDispatcher) publish(ctx context.Context, event Event) {
	if d == nil || d.publisher == nil {
		return
	}
	event.OccurredAt = d.now()

	data, err := json.Marshal(event)
	if err != nil {
		if d.logg != nil {
			d.logg.Error(ctx, "marshaling notification event", err)
		}
		return
	}

	result := d.publisher.Publish(ctx, &pubsubv2.Message{
		Data:       data,
		Attributes: map[string]string{"kind": event.Kind},
	})
	if _, err := result.Get(ctx); err != nil && d.logg != nil {
		d.logg.Error(d.logg.WithField(ctx, "kind", event.Kind), "publishing notification event", err)
	}
}

// NoopDispatcher drops every event. Used when no broker is configured.
type NoopDispatcher struct{}

func (NoopDispatcher) SendPaymentWarning(ctx context.Context, accountID, userID uuid.UUID) {}
func (NoopDispatcher) SendBlockNotice(ctx context.Context, accountID, userID uuid.UUID)    {}
func (NoopDispatcher) SendUnblockNotice(ctx context.Context, accountID, userID uuid.UUID)  {}
func (NoopDispatcher) SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string) {
}

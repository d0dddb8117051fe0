package cron

import (
	"context"
	"fmt"

	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/internal/notify"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

// LowStockJobParams configures the low-stock sweep.
type LowStockJobParams struct {
	Logger      *logger.Logger
	CatalogRepo catalog.Repository
	Notifier    notify.Dispatcher
}

// NewLowStockJob builds the job that publishes an alert for every product at
// or below its minimum stock level.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notify.NoopDispatcher{}
	}
	return &lowStockJob{
		logg:     params.Logger,
		catalog:  params.CatalogRepo,
		notifier: notifier,
	}, nil
}

type lowStockJob struct {
	logg     *logger.Logger
	catalog  catalog.Repository
	notifier notify.Dispatcher
}

func (j *lowStockJob) Name() string { return "low-stock-sweep" }

func (j *lowStockJob) Run(ctx context.Context) error {
	products, err := j.catalog.ListLowStock(ctx, nil)
	if err != nil {
		return fmt.Errorf("list low stock products: %w", err)
	}
	for i := range products {
		p := &products[i]
		msg := fmt.Sprintf("%s is low on stock: %d left, minimum %d", p.Name, p.StockQuantity, p.MinStock)
		j.notifier.SendLowStockAlert(ctx, p.ID, p.WarehouseID, msg)
	}
	if len(products) > 0 {
		j.logg.Info(j.logg.WithField(ctx, "alerts", len(products)), "low stock sweep complete")
	}
	return nil
}

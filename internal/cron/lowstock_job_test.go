package cron

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/olimjonn/warehub-backend/internal/catalog"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/logger"
)

type stubLowStockCatalog struct {
	catalog.Repository
	low []models.Product
}

func (s *stubLowStockCatalog) ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]models.Product, error) {
	return s.low, nil
}

type lowStockAlerts struct {
	stubAlerts
	messages []string
}

func (s *lowStockAlerts) SendLowStockAlert(ctx context.Context, productID, warehouseID uuid.UUID, message string) {
	s.messages = append(s.messages, message)
}

func TestLowStockJobAlertsEachDepletedProduct(t *testing.T) {
	repo := &stubLowStockCatalog{low: []models.Product{
		{ID: uuid.New(), WarehouseID: uuid.New(), Name: "Rice 25kg", StockQuantity: 2, MinStock: 10},
		{ID: uuid.New(), WarehouseID: uuid.New(), Name: "Flour 50kg", StockQuantity: 0, MinStock: 5},
	}}
	alerts := &lowStockAlerts{}
	job, err := NewLowStockJob(LowStockJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "cron-test"}),
		CatalogRepo: repo,
		Notifier:    alerts,
	})
	if err != nil {
		t.Fatalf("building job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(alerts.messages) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts.messages))
	}
	if alerts.messages[0] != "Rice 25kg is low on stock: 2 left, minimum 10" {
		t.Fatalf("unexpected message %q", alerts.messages[0])
	}
}

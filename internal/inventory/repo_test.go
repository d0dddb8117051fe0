package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range []string{
		`CREATE TABLE products (
			id text PRIMARY KEY,
			name text NOT NULL,
			price numeric NOT NULL,
			warehouse_id text NOT NULL
		)`,
		`CREATE TABLE users (
			id text PRIMARY KEY,
			first_name text NOT NULL,
			last_name text NOT NULL
		)`,
		`CREATE TABLE transactions (
			id text PRIMARY KEY,
			product_id text NOT NULL,
			warehouse_id text NOT NULL,
			type text NOT NULL,
			quantity integer NOT NULL,
			actor_id text NOT NULL,
			payment_type text NOT NULL DEFAULT 'CASH',
			customer_name text,
			description text,
			created_at datetime NOT NULL
		)`,
	} {
		if err := conn.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return conn
}

type ledgerSeed struct {
	warehouseID uuid.UUID
	cheapID     uuid.UUID
	pricyID     uuid.UUID
	sellerID    uuid.UUID
	otherSeller uuid.UUID
}

func seedLedger(t *testing.T, db *gorm.DB, now time.Time) ledgerSeed {
	t.Helper()
	seed := ledgerSeed{
		warehouseID: uuid.New(),
		cheapID:     uuid.New(),
		pricyID:     uuid.New(),
		sellerID:    uuid.New(),
		otherSeller: uuid.New(),
	}

	mustExec := func(sql string, args ...any) {
		t.Helper()
		if err := db.Exec(sql, args...).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	mustExec(`INSERT INTO products (id, name, price, warehouse_id) VALUES (?, ?, ?, ?)`,
		seed.cheapID, "rice 1kg", 10, seed.warehouseID)
	mustExec(`INSERT INTO products (id, name, price, warehouse_id) VALUES (?, ?, ?, ?)`,
		seed.pricyID, "olive oil 5l", 100, seed.warehouseID)
	mustExec(`INSERT INTO users (id, first_name, last_name) VALUES (?, ?, ?)`,
		seed.sellerID, "Aziza", "Tosheva")
	mustExec(`INSERT INTO users (id, first_name, last_name) VALUES (?, ?, ?)`,
		seed.otherSeller, "Bobur", "Aliyev")

	sale := func(productID, actorID uuid.UUID, qty int, at time.Time) {
		mustExec(`INSERT INTO transactions (id, product_id, warehouse_id, type, quantity, actor_id, created_at)
			VALUES (?, ?, ?, 'OUT_SALE', ?, ?, ?)`,
			uuid.New(), productID, seed.warehouseID, qty, actorID, at)
	}

	sale(seed.cheapID, seed.sellerID, 7, now.Add(-time.Hour))
	sale(seed.cheapID, seed.otherSeller, 5, now.Add(-2*time.Hour))
	sale(seed.pricyID, seed.sellerID, 2, now.Add(-3*time.Hour))
	// Inbound restock and an old sale stay out of the period aggregates.
	mustExec(`INSERT INTO transactions (id, product_id, warehouse_id, type, quantity, actor_id, created_at)
		VALUES (?, ?, ?, 'IN', 50, ?, ?)`,
		uuid.New(), seed.cheapID, seed.warehouseID, seed.sellerID, now.Add(-time.Hour))
	sale(seed.pricyID, seed.sellerID, 9, now.AddDate(0, -2, 0))

	return seed
}

func TestTopProductsRanksBySoldQuantity(t *testing.T) {
	db := newLedgerDB(t)
	repo := NewRepository(db)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	seed := seedLedger(t, db, now)

	rows, err := repo.TopProducts(context.Background(), &seed.warehouseID, now.AddDate(0, 0, -30), 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 products, got %d", len(rows))
	}
	if rows[0].ProductID != seed.cheapID || rows[0].QuantitySold != 12 {
		t.Fatalf("expected rice first with 12 sold, got %s qty=%d", rows[0].Name, rows[0].QuantitySold)
	}
	if rows[1].ProductID != seed.pricyID || rows[1].QuantitySold != 2 {
		t.Fatalf("expected oil second with 2 sold, got %s qty=%d", rows[1].Name, rows[1].QuantitySold)
	}
	if !rows[1].Revenue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected oil revenue 200, got %s", rows[1].Revenue)
	}
}

func TestSellerStatsAggregatesPerSeller(t *testing.T) {
	db := newLedgerDB(t)
	repo := NewRepository(db)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	seed := seedLedger(t, db, now)

	rows, err := repo.SellerStats(context.Background(), &seed.warehouseID, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("seller stats: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 sellers, got %d", len(rows))
	}
	if rows[0].SellerID != seed.sellerID {
		t.Fatalf("expected top seller first, got %s %s", rows[0].FirstName, rows[0].LastName)
	}
	if rows[0].SalesCount != 2 || rows[0].QuantitySold != 9 {
		t.Fatalf("unexpected top seller figures: count=%d qty=%d", rows[0].SalesCount, rows[0].QuantitySold)
	}
	if !rows[0].Revenue.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("expected revenue 270, got %s", rows[0].Revenue)
	}
}

func TestSummarizeSinceSplitsMovementByType(t *testing.T) {
	db := newLedgerDB(t)
	repo := NewRepository(db)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	seed := seedLedger(t, db, now)

	summary, err := repo.SummarizeSince(context.Background(), &seed.warehouseID, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.SoldQuantity != 14 {
		t.Fatalf("expected 14 sold, got %d", summary.SoldQuantity)
	}
	if summary.InboundQuantity != 50 {
		t.Fatalf("expected 50 inbound, got %d", summary.InboundQuantity)
	}
	if summary.TransactionCount != 4 {
		t.Fatalf("expected 4 transactions in period, got %d", summary.TransactionCount)
	}
}

package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olimjonn/warehub-backend/pkg/migrate"
)

func TestInitMigrationCarriesDomainConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CHECK (kind IN ('ADMIN', 'WAREHOUSE_MANAGER', 'SELLER'))",
		"CHECK ((kind = 'ADMIN' AND warehouse_id IS NULL) OR (kind <> 'ADMIN' AND warehouse_id IS NOT NULL))",
		"CHECK (stock_quantity >= 0)",
		"CHECK (type IN ('IN', 'OUT_SALE', 'OUT_DAMAGED', 'OUT_EXPIRED'))",
		"CHECK (paid_amount >= 0 AND paid_amount <= total_amount)",
		"CHECK (status IN ('PENDING', 'PAID', 'FAILED'))",
		"CREATE TABLE subscription_accounts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationFilenamesValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

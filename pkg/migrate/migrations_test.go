package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/greenbasket/greenbasket-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitSchemaMigrationContainsCoreTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE orders",
		"CREATE TABLE delivery_agents",
		"CREATE TABLE agent_areas",
		"active_order_count INT NOT NULL DEFAULT 0",
		"CREATE INDEX idx_orders_unassigned ON orders(created_at) WHERE assigned_agent_id IS NULL",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSeedSettingsMigrationDefaultsShippingToZero(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_seed_settings.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no seed settings migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "('shipping_charge', '0')") {
		t.Error("shipping_charge seed missing or not zero")
	}
}

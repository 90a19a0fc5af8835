package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStockMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_fertilizer_stocks.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no stock migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS fertilizer_stocks",
		"CHECK (quantity >= 0)",
		"CREATE TABLE IF NOT EXISTS stock_history_entries",
		"FOREIGN KEY (stock_id) REFERENCES fertilizer_stocks(id) ON DELETE CASCADE",
		"CHECK (type IN ('increase', 'decrease'))",
		"DROP TABLE IF EXISTS stock_history_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/migrate"
)

func TestRequestMigrationContainsWorkflowConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_fertilizer_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no request migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS fertilizer_requests",
		"CHECK (requested_qty > 0)",
		"CHECK (approved_qty IS NULL OR approved_qty > 0)",
		"'pending', 'verified', 'scheduled', 'shipped', 'completed', 'rejected', 'cancelled'",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_distribution_schedules_request",
		"DROP TABLE IF EXISTS distribution_schedules",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

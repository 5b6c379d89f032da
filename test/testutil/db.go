package testutil

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/noteagent/internal/config"
	"github.com/xxxsen/noteagent/internal/db"
)

// OpenTestDB connects to the postgres instance named by TEST_DB_HOST and
// applies migrations. Tests that need a real database skip without it.
func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	raw, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "noteagent",
		Password: "noteagent_pass",
		DBName:   "noteagent_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(raw); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	conn := sqlx.NewDb(raw, "postgres")
	return conn, func() {
		_ = conn.Close()
	}
}

// ResetTables truncates the mutable tables between tests.
func ResetTables(t *testing.T, conn *sqlx.DB) {
	t.Helper()
	for _, table := range []string{"chat_messages", "chat", "notes", "embedding_cache"} {
		if _, err := conn.Exec("TRUNCATE TABLE " + table + " CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}

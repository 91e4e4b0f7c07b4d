package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

const insertCampaign = `INSERT INTO campaigns (id, name, content_type, markup, modified_at) VALUES (?, ?, ?, ?, ?)`

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(MemoryPath)

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Expected closing an unopened database to succeed, got %v", err)
	}
}

func TestSQLiteBasicOperations(t *testing.T) {
	SetLogger(zerolog.Nop())

	db := NewSQLite(MemoryPath)
	defer db.Close()

	t.Run("InitDB creates tables", func(t *testing.T) {
		if err := db.InitDB(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
		if db.Get() == nil {
			t.Fatal("Expected database connection to be established")
		}
		if err := db.Get().Ping(); err != nil {
			t.Errorf("Failed to ping database: %v", err)
		}
	})

	t.Run("InitDB is idempotent", func(t *testing.T) {
		if _, err := db.Get().Exec(schema); err != nil {
			t.Errorf("Expected schema to apply twice, got %v", err)
		}
	})

	t.Run("Verify table schema", func(t *testing.T) {
		rows, err := db.Query(context.Background(), "PRAGMA table_info(campaigns)")
		if err != nil {
			t.Fatalf("Failed to get campaigns table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Errorf("Failed to scan column info: %v", err)
				continue
			}
			columns[name] = true
		}

		expected := []string{"id", "name", "content_type", "markup", "design", "preview_image", "content_hash", "created_at", "modified_at"}
		for _, col := range expected {
			if !columns[col] {
				t.Errorf("Expected campaigns table to have column %s", col)
			}
		}
	})
}

func TestSQLiteQueryAndExec(t *testing.T) {
	SetLogger(zerolog.Nop())
	ctx := context.Background()

	db := NewSQLite(MemoryPath)
	defer db.Close()

	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Exec inserts data", func(t *testing.T) {
		result, err := db.Exec(ctx, insertCampaign, "c-1", "Spring sale", "html", []byte("<p>a</p>"), modified)
		if err != nil {
			t.Fatalf("Failed to insert campaign: %v", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			t.Errorf("Failed to get rows affected: %v", err)
		}
		if rowsAffected != 1 {
			t.Errorf("Expected 1 row affected, got %d", rowsAffected)
		}
	})

	t.Run("QueryRow retrieves data", func(t *testing.T) {
		var name string
		var markup []byte
		var modifiedAt time.Time

		err := db.QueryRow(ctx, "SELECT name, markup, modified_at FROM campaigns WHERE id = ?", "c-1").
			Scan(&name, &markup, &modifiedAt)
		if err != nil {
			t.Fatalf("Failed to query campaign: %v", err)
		}

		if name != "Spring sale" {
			t.Errorf("Expected name 'Spring sale', got %q", name)
		}
		if string(markup) != "<p>a</p>" {
			t.Errorf("Expected markup '<p>a</p>', got %q", markup)
		}
		if !modifiedAt.Equal(modified) {
			t.Errorf("Expected modified_at %v, got %v", modified, modifiedAt)
		}
	})

	t.Run("Primary key is enforced", func(t *testing.T) {
		_, err := db.Exec(ctx, insertCampaign, "c-1", "Duplicate", "html", nil, modified)
		if err == nil {
			t.Error("Expected duplicate id to be rejected")
		}
	})

	t.Run("Content type is required", func(t *testing.T) {
		_, err := db.Exec(ctx, insertCampaign, "c-2", "No type", nil, nil, modified)
		if err == nil {
			t.Error("Expected NULL content_type to be rejected")
		}
	})

	t.Run("Canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := db.Query(canceled, "SELECT id FROM campaigns"); err == nil {
			t.Error("Expected query on a canceled context to fail")
		}
	})
}

func TestSQLiteFileDatabase(t *testing.T) {
	SetLogger(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "campaigns.db")

	first := NewSQLite(path)
	if err := first.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	if _, err := first.Exec(context.Background(), insertCampaign, "c-1", "Kept", "html", nil, time.Now()); err != nil {
		t.Fatalf("Failed to insert campaign: %v", err)
	}
	first.Close()

	second := NewSQLite(path)
	defer second.Close()
	if err := second.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	var name string
	if err := second.QueryRow(context.Background(), "SELECT name FROM campaigns WHERE id = ?", "c-1").Scan(&name); err != nil {
		t.Fatalf("Expected campaign to survive reopening, got %v", err)
	}
	if name != "Kept" {
		t.Errorf("Expected name 'Kept', got %q", name)
	}
}

// Package sqlite persists the medicine collection in a SQLite database.
// It keeps the same whole-collection contract as the flat-file backend:
// Save rewrites the entire table inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Backend struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at dbPath and applies any
// pending migrations.
func Open(dbPath string) (*Backend, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// Load reads the full collection in insertion order.
func (b *Backend) Load(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT name, strength, form, batch, expiry, location, created_at
		FROM medicines ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var col []domain.Medicine
	for rows.Next() {
		var m domain.Medicine
		if err := rows.Scan(&m.Name, &m.Strength, &m.Form, &m.Batch, &m.Expiry, &m.Location, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		col = append(col, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medicines: %w", err)
	}
	return col, nil
}

// Save replaces the stored collection with col in a single transaction, so a
// failure part-way leaves the previous contents in place.
func (b *Backend) Save(ctx context.Context, col []domain.Medicine) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM medicines`); err != nil {
		return fmt.Errorf("failed to clear medicines: %w", err)
	}
	for _, m := range col {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO medicines (name, strength, form, batch, expiry, location, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.Name, m.Strength, m.Form, m.Batch, m.Expiry, m.Location, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert medicine %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	ups := make(map[int]string)
	var versions []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version := 0
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		ups[version] = name
		versions = append(versions, version)
	}
	sort.Ints(versions)

	for _, version := range versions {
		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied > 0 {
			continue
		}

		data, err := fs.ReadFile(migrationsFS, "migrations/"+ups[version])
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", ups[version], err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	return nil
}

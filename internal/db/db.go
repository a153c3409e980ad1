package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"tagmaker/internal/keywords"
	"tagmaker/migrations"
)

// defaultRulesSeed names the one-time seed of the default blocked list.
const defaultRulesSeed = "default_keyword_rules"

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func newMigrator(connString string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// DropSchema runs every down migration, removing all tagmaker tables.
func (d *DB) DropSchema(connString string) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDefaultRules inserts the default blocked keywords and substitutions
// the first time it runs against a database. Later calls are no-ops, so an
// admin who clears the lists does not get them back on restart.
// Returns true when the seed was applied by this call.
func (d *DB) SeedDefaultRules(ctx context.Context, blocked []string, subs []keywords.Substitution) (bool, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO schema_seeds (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, defaultRulesSeed)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, keyword := range blocked {
		if _, err := tx.Exec(ctx, `
			INSERT INTO blocked_keywords (keyword) VALUES ($1)
			ON CONFLICT ((lower(keyword))) DO NOTHING
		`, keyword); err != nil {
			return false, fmt.Errorf("failed to seed blocked keyword %q: %w", keyword, err)
		}
	}

	for _, s := range subs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO keyword_substitutions (original_keyword, replacement_keyword) VALUES ($1, $2)
			ON CONFLICT ((lower(original_keyword))) DO NOTHING
		`, s.Original, s.Replacement); err != nil {
			return false, fmt.Errorf("failed to seed substitution %q: %w", s.Original, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

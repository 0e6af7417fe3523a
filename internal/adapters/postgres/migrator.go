package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/port"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version     TEXT PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrator применяет SQL-файлы из fs.FS, каждый в своей транзакции.
// Примененные версии хранятся в schema_migrations.
type Migrator struct {
	pool  *pgxpool.Pool
	files fs.FS
}

func NewMigrator(pool *pgxpool.Pool, files fs.FS) (*Migrator, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if files == nil {
		return nil, fmt.Errorf("migrations fs cannot be nil")
	}
	return &Migrator{pool: pool, files: files}, nil
}

// Pending возвращает имена файлов, которые еще не применены.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if _, err := m.pool.Exec(ctx, migrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	all, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(all)

	rows, err := m.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	var pending []string
	for _, name := range all {
		if _, ok := done[strings.TrimSuffix(name, ".sql")]; !ok {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// Up применяет все непримененные миграции и возвращает их имена.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "Migrator",
		"method":    "Up",
	})

	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range pending {
		body, err := fs.ReadFile(m.files, name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, strings.TrimSuffix(name, ".sql"))
			return err
		})
		if err != nil {
			logger.Error("Migration failed", err, port.Fields{"migration": name})
			return applied, fmt.Errorf("migration %s failed: %w", name, err)
		}
		logger.Info("Migration applied", port.Fields{"migration": name})
		applied = append(applied, name)
	}
	return applied, nil
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/wanderbook/internal/pkg/config"
	"github.com/samirrijal/wanderbook/internal/pkg/logging"
)

var migrations = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_core_tables.sql",
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	cfg, err := config.Load("wanderbook-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool)
	case "status":
		printStatus(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func applied(ctx context.Context, pool *pgxpool.Pool, name string) bool {
	var at string
	err := pool.QueryRow(ctx, `SELECT applied_at::text FROM schema_migrations WHERE name = $1`, name).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if err != nil {
		log.Fatalf("read schema_migrations: %v", err)
	}
	return true
}

// runMigrations applies each pending file in its own transaction.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	for _, f := range migrations {
		name := filepath.Base(f)
		if applied(ctx, pool, name) {
			slog.Info("skip", "migration", name)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		slog.Info("applied", "migration", name)
	}

	slog.Info("all migrations applied")
}

func printStatus(ctx context.Context, pool *pgxpool.Pool) {
	for _, f := range migrations {
		name := filepath.Base(f)
		state := "pending"
		if applied(ctx, pool, name) {
			state = "applied"
		}
		slog.Info("migration", "name", name, "state", state)
	}
}

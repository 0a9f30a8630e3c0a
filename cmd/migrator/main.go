package main

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"bankledger/internal/infra/logging"
	"bankledger/pkg/envconf"
)

//go:embed migrations/accounts/*.sql migrations/transactions/*.sql
var migrationsFS embed.FS

//go:embed seed/accounts/*.sql
var seedFS embed.FS

type migratorConfig struct {
	DSN       string     `env:"PG_DSN"`
	LogLevel  slog.Level `env:"APP_LOG_LEVEL" default:"INFO"`
	Component string     `env:"MIGRATE_COMPONENT" default:"all"`
	AppEnv    string     `env:"APP_ENV" default:""`
}

func main() {
	err := migrateAll()
	if err != nil {
		slog.Error("migration run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migration run finished successfully")
}

func migrateAll() error {
	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup("migrator", cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	err = db.Ping()
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	components := []string{"accounts", "transactions"}
	if cfg.Component != "all" {
		components = []string{cfg.Component}
	}

	for _, component := range components {
		err = runMigrations(db, migrationsFS, "migrations/"+component, component)
		if err != nil {
			return fmt.Errorf("%s migrations failed: %w", component, err)
		}

		slog.Info("migrations applied", "component", component)
	}

	if cfg.AppEnv == "DEV" && hasComponent(components, "accounts") {
		err = runMigrations(db, seedFS, "seed/accounts", "accounts_seed")
		if err != nil {
			return fmt.Errorf("dev seed failed: %w", err)
		}

		slog.Info("dev seed applied")
	}

	return nil
}

// runMigrations applies one embedded migration set. Each component keeps
// its own version table so the sets can share a database in local setups.
func runMigrations(db *sql.DB, fsys embed.FS, dir, component string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations_" + component,
	})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}

func hasComponent(components []string, name string) bool {
	for _, c := range components {
		if c == name {
			return true
		}
	}

	return false
}

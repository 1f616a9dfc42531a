package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	migrationsPath = "db/migrations"
	seedsPath      = "db/seeds"
)

// Overridable in tests, where a minute-long retry loop is unaffordable.
var (
	maxRetries    = 30
	retryInterval = 2 * time.Second
)

// MigrationRunner applies schema migrations and optional seed data through
// the raw sql.DB handle, outside gorm.
type MigrationRunner struct {
	db             *sql.DB
	migrationsPath string
	seedsPath      string
}

// NewMigrationRunner returns a runner bound to the default db/ directories.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:             db,
		migrationsPath: migrationsPath,
		seedsPath:      seedsPath,
	}
}

// WaitForDatabase pings until the database answers or the retry budget runs
// out.
func (mr *MigrationRunner) WaitForDatabase() error {
	for i := 0; i < maxRetries; i++ {
		err := mr.db.Ping()
		if err == nil {
			slog.Info("Database reachable")
			return nil
		}
		slog.Warn("Database not reachable yet",
			"attempt", i+1, "max_attempts", maxRetries, "error", err)
		time.Sleep(retryInterval)
	}

	return fmt.Errorf("database not ready after %d attempts", maxRetries)
}

func (mr *MigrationRunner) openMigrate() (*migrate.Migrate, error) {
	absPath, err := filepath.Abs(mr.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	return migrate.NewWithDatabaseInstance("file://"+absPath, "postgres", driver)
}

// RunMigrations applies every pending migration. A dirty version left behind
// by an interrupted run is forced clean first.
func (mr *MigrationRunner) RunMigrations() error {
	if _, err := os.Stat(mr.migrationsPath); os.IsNotExist(err) {
		slog.Warn("Migrations directory missing, skipping", "path", mr.migrationsPath)
		return nil
	}

	m, err := mr.openMigrate()
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		slog.Warn("Database left dirty by an interrupted migration, forcing version",
			"version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			slog.Info("Schema already current", "version", version)
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	slog.Info("Migrations applied", "from_version", version, "to_version", newVersion)

	return nil
}

// LoadSeeds executes the *.sql files under the seeds directory when
// SEED_DATABASE=true. A failing statement is logged and skipped so one bad
// seed file cannot block the rest.
func (mr *MigrationRunner) LoadSeeds() error {
	if os.Getenv("SEED_DATABASE") != "true" {
		slog.Info("Seed loading disabled, set SEED_DATABASE=true to enable")
		return nil
	}
	if _, err := os.Stat(mr.seedsPath); os.IsNotExist(err) {
		slog.Warn("Seeds directory missing, skipping", "path", mr.seedsPath)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.seedsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list seed files: %w", err)
	}
	if len(files) == 0 {
		slog.Info("No seed files found", "path", mr.seedsPath)
		return nil
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.Exec(string(content)); err != nil {
			slog.Warn("Seed file failed, continuing",
				"file", filepath.Base(file), "error", err)
			continue
		}
		slog.Info("Seed file applied", "file", filepath.Base(file))
	}

	return nil
}

// GetMigrationStatus reports the current schema version and dirty flag.
func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	if _, statErr := os.Stat(mr.migrationsPath); os.IsNotExist(statErr) {
		return 0, false, fmt.Errorf("migrations directory not found")
	}

	m, err := mr.openMigrate()
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m.Version()
}

// RunMigrationsIfEnabled is the startup entry point: with AUTO_MIGRATE=true
// it waits for the database, applies migrations and loads seeds. Seed and
// status problems are logged, not fatal.
func RunMigrationsIfEnabled(db *sql.DB) error {
	if os.Getenv("AUTO_MIGRATE") != "true" {
		slog.Info("Auto-migration disabled, set AUTO_MIGRATE=true to enable")
		return nil
	}

	runner := NewMigrationRunner(db)

	if err := runner.WaitForDatabase(); err != nil {
		return fmt.Errorf("database readiness check failed: %w", err)
	}
	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("migration execution failed: %w", err)
	}
	if err := runner.LoadSeeds(); err != nil {
		slog.Warn("Seed loading failed", "error", err)
	}

	if version, dirty, err := runner.GetMigrationStatus(); err != nil {
		slog.Warn("Could not read migration status", "error", err)
	} else {
		slog.Info("Migration status", "version", version, "dirty", dirty)
	}

	return nil
}

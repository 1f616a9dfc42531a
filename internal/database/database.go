package database

import (
	"fmt"
	"log"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.ScheduledTransaction{},
		&models.AuditLog{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_holder_name ON accounts(holder_name)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_account_type ON accounts(account_type)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_active ON accounts(active)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_deleted_at ON accounts(deleted_at)",
		// Ledger entry indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_no ON ledger_entries(account_no)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_entry_type ON ledger_entries(entry_type)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_timestamp ON ledger_entries(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_no_id ON ledger_entries(account_no, id)",
		// Scheduled transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_scheduled_transactions_from_account ON scheduled_transactions(from_account)",
		"CREATE INDEX IF NOT EXISTS idx_scheduled_transactions_executed ON scheduled_transactions(executed)",
		"CREATE INDEX IF NOT EXISTS idx_scheduled_transactions_scheduled_date ON scheduled_transactions(scheduled_date)",
		// Audit log indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_account_no ON audit_logs(account_no)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// SQL-based migrations only apply to the postgres driver; sqlite
	// deployments rely on AutoMigrate.
	if cfg.Database.Driver == "postgres" {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}

		if err := RunMigrationsIfEnabled(sqlDB); err != nil {
			log.Printf("Warning: migration runner failed: %v", err)
			log.Println("Falling back to GORM AutoMigrate...")

			if err := db.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
	} else {
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	log.Println("Database initialized successfully")

	return db.DB, nil
}

package database

import (
	"fmt"
	"testing"

	"bankledger/internal/config"
	"bankledger/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			Driver:         "sqlite",
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

// CreateTestAccount inserts an account with the given number and a randomized
// holder, plus its opening ledger entry when balance is non-zero.
func CreateTestAccount(t *testing.T, db *DB, accountNo int64, accountType string, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		AccountNo:      accountNo,
		HolderName:     gofakeit.Name(),
		AccountType:    accountType,
		Balance:        balance,
		Active:         true,
		DailyLimit:     decimal.NewFromInt(20000),
		DailyWithdrawn: decimal.Zero,
	}
	if accountType == models.AccountTypeBusiness {
		account.DailyLimit = decimal.NewFromInt(50000)
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	entry := &models.LedgerEntry{
		AccountNo: accountNo,
		EntryType: models.EntryTypeOpen,
		Amount:    balance,
		Memo:      "Account opened",
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create opening entry: %v", err)
	}

	return account
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"scheduled_transactions",
		"ledger_entries",
		"accounts",
		"audit_logs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}

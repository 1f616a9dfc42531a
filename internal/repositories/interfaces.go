package repositories

import (
	"time"

	"bankledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	CreateWithOpeningEntry(account *models.Account, memo string) (*models.LedgerEntry, error)
	GetByAccountNo(accountNo int64) (*models.Account, error)
	GetByAccountNoForUpdate(tx *gorm.DB, accountNo int64) (*models.Account, error)
	GetAll(offset, limit int) ([]models.Account, int64, error)
	GetAllWithFilters(filters models.AccountFilters, offset, limit int) ([]models.Account, int64, error)
	SearchByHolderName(name string, offset, limit int) ([]models.Account, int64, error)
	Update(account *models.Account) error
	UpdateTx(tx *gorm.DB, account *models.Account) error
	Delete(accountNo int64) error
	NextAccountNumber() (int64, error)
	GetStats() (*models.LedgerStats, error)
	ValidateStoredAccounts() error
}

// LedgerEntryRepositoryInterface defines the contract for ledger entry repository operations
type LedgerEntryRepositoryInterface interface {
	Create(entry *models.LedgerEntry) error
	CreateTx(tx *gorm.DB, entry *models.LedgerEntry) error
	GetByID(id int64) (*models.LedgerEntry, error)
	GetByAccountNo(accountNo int64) ([]models.LedgerEntry, error)
	GetLastByAccountNo(tx *gorm.DB, accountNo int64) (*models.LedgerEntry, error)
	GetRecentByAccountNo(accountNo int64, limit int) ([]models.LedgerEntry, error)
	GetWithFilters(filters models.EntryFilters) ([]models.LedgerEntry, int64, error)
	GetTotalsByAccountNo(accountNo int64) (*models.AccountTotals, error)
}

// ScheduledTransactionRepositoryInterface defines the contract for scheduled transaction operations
type ScheduledTransactionRepositoryInterface interface {
	Create(sched *models.ScheduledTransaction) error
	GetByID(id int64) (*models.ScheduledTransaction, error)
	FetchDue(today time.Time, accountNo int64) ([]*models.ScheduledTransaction, error)
	ListPending(accountNo int64) ([]*models.ScheduledTransaction, error)
	MarkExecuted(id int64, at time.Time) error
	MarkExecutedTx(tx *gorm.DB, id int64, at time.Time) error
	CancelPending(id int64) error
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByID(id uuid.UUID) (*models.AuditLog, error)
	GetByAccountNo(accountNo int64, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByAction(action string, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByTimeRange(startTime, endTime time.Time, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteOlderThan(duration time.Duration) (int64, error)
}

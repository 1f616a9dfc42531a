package services

import (
	"context"
	"time"

	"bankledger/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerServiceInterface defines the engine operations over accounts and
// their append-only transaction logs
type LedgerServiceInterface interface {
	CreateAccount(holderName, accountType string, openingBalance decimal.Decimal) (*models.Account, error)
	GetAccount(accountNo int64) (*models.Account, error)
	GetAccounts(filters models.AccountFilters, offset, limit int) ([]models.Account, int64, error)
	SearchAccounts(holderName string, offset, limit int) ([]models.Account, int64, error)
	CloseAccount(accountNo int64) error

	Deposit(accountNo int64, amount decimal.Decimal, memo string) (*models.LedgerEntry, error)
	Withdraw(accountNo int64, amount decimal.Decimal, memo string) (*models.LedgerEntry, error)
	Transfer(fromAccount, toAccount int64, amount decimal.Decimal) (*models.LedgerEntry, *models.LedgerEntry, error)
	ApplyInterestIfDue(accountNo int64) (*models.LedgerEntry, error)
	ApplyInterestToAll() (int, error)
	ReverseLast(accountNo int64) (*models.LedgerEntry, error)
	RunScheduled(sched *models.ScheduledTransaction) (*models.LedgerEntry, error)

	SetActive(accountNo int64, active bool) (*models.Account, error)
	SetLocked(accountNo int64, locked bool) (*models.Account, error)
	SetDailyLimit(accountNo int64, limit decimal.Decimal) (*models.Account, error)
	AdjustBalance(accountNo int64, newBalance decimal.Decimal, reason string) (*models.Account, error)

	GetEntries(filters models.EntryFilters) ([]models.LedgerEntry, int64, error)
	GetRecentEntries(accountNo int64, limit int) ([]models.LedgerEntry, error)
	GetTotals(accountNo int64) (*models.AccountTotals, error)
	GetStats() (*models.LedgerStats, error)
}

// SchedulerServiceInterface defines the contract for deferred ledger operations
type SchedulerServiceInterface interface {
	Schedule(sched *models.ScheduledTransaction) error
	Get(id int64) (*models.ScheduledTransaction, error)
	ListPending(accountNo int64) ([]*models.ScheduledTransaction, error)
	Cancel(id int64) error
	RunDue(today time.Time, accountNo int64) (executed, failed int, err error)
	Start(ctx context.Context)
}

// PinServiceInterface defines the contract for account PIN operations
type PinServiceInterface interface {
	ValidatePinFormat(pin string) error
	SetPin(accountNo int64, pin string) error
	VerifyPin(accountNo int64, pin string) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuditLoggerInterface interface {
	LogOperationStarted(ctx context.Context, operation string, accountNo int64)
	LogOperationCompleted(ctx context.Context, operation string, accountNo int64, entryID int64, durationMs int64)
	LogOperationFailed(ctx context.Context, operation string, accountNo int64, errorMsg string)
	LogBalanceChange(ctx context.Context, accountNo int64, oldBalance, newBalance string, entryID int64)
	LogReversal(ctx context.Context, accountNo, originalEntryID, reversalEntryID int64)
	LogScheduleExecuted(ctx context.Context, scheduleID, accountNo int64, kind string)
	LogScheduleFailed(ctx context.Context, scheduleID, accountNo int64, kind string, errorMsg string, willRetry bool)
	LogAccountLocked(ctx context.Context, accountNo int64, failedAttempts int)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/events"
	"bankledger/internal/models"
	"bankledger/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSameAccountTransfer         = errors.New("cannot transfer to the same account")
	ErrDailyLimitExceeded          = errors.New("daily withdrawal limit exceeded")
	ErrInvalidDailyLimit           = errors.New("daily limit cannot be negative")
	ErrNothingToReverse            = errors.New("no entry to reverse")
	ErrReverseOpeningEntry         = errors.New("opening entry cannot be reversed")
	ErrAlreadyReversed             = errors.New("entry already reversed")
	ErrReversalWindowExpired       = errors.New("reversal window has expired")
	ErrReversalInsufficientBalance = errors.New("insufficient balance to undo a credit")
	ErrUnsupportedReversalType     = errors.New("entry type does not support reversal")
	ErrReverseAdjustment           = errors.New("administrative adjustments cannot be reversed")
)

// interestSweepBatchSize bounds how many accounts one sweep page loads.
const interestSweepBatchSize = 500

// LedgerService is the engine behind every balance-changing operation.
// Each operation commits its ledger entry and the updated account state in
// one database transaction, guarded by a per-account mutex so concurrent
// calls against the same account serialize. Transfers take both account
// locks in ascending number order to stay deadlock free.
type LedgerService struct {
	db          *gorm.DB
	accountRepo repositories.AccountRepositoryInterface
	entryRepo   repositories.LedgerEntryRepositoryInterface
	schedRepo   repositories.ScheduledTransactionRepositoryInterface
	auditRepo   repositories.AuditLogRepositoryInterface
	ledgerCfg   *config.LedgerConfig
	auditLogger AuditLoggerInterface
	metrics     MetricsRecorderInterface
	publisher   events.PublisherInterface
	logger      *slog.Logger

	// now is the engine's clock; tests substitute it to pin calendar-day
	// boundaries and the reversal window.
	now func() time.Time

	mu           sync.Mutex
	accountLocks map[int64]*sync.Mutex
}

func NewLedgerService(
	db *gorm.DB,
	accountRepo repositories.AccountRepositoryInterface,
	entryRepo repositories.LedgerEntryRepositoryInterface,
	schedRepo repositories.ScheduledTransactionRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	ledgerCfg *config.LedgerConfig,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	publisher events.PublisherInterface,
) LedgerServiceInterface {
	return &LedgerService{
		db:           db,
		accountRepo:  accountRepo,
		entryRepo:    entryRepo,
		schedRepo:    schedRepo,
		auditRepo:    auditRepo,
		ledgerCfg:    ledgerCfg,
		auditLogger:  auditLogger,
		metrics:      metrics,
		publisher:    publisher,
		logger:       slog.Default(),
		now:          time.Now,
		accountLocks: make(map[int64]*sync.Mutex),
	}
}

// CreateAccount opens a new account under the next free account number and
// records the opening balance as the first log entry.
func (s *LedgerService) CreateAccount(holderName, accountType string, openingBalance decimal.Decimal) (*models.Account, error) {
	start := s.now()

	if holderName == "" {
		return nil, errors.New("holder name is required")
	}
	if !models.IsValidAccountType(accountType) {
		return nil, models.ErrInvalidAccountType
	}
	if openingBalance.LessThan(decimal.Zero) {
		return nil, models.ErrInvalidBalance
	}

	accountNo, err := s.accountRepo.NextAccountNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate account number: %w", err)
	}

	account := &models.Account{
		AccountNo:        accountNo,
		HolderName:       holderName,
		AccountType:      accountType,
		Balance:          openingBalance,
		Active:           true,
		DailyLimit:       s.ledgerCfg.DailyLimitFor(accountType),
		DailyWithdrawn:   decimal.Zero,
		LastDailyReset:   models.CalendarDay(start),
		LastInterestDate: models.CalendarDay(start),
	}

	entry, err := s.accountRepo.CreateWithOpeningEntry(account, "Account opened")
	if err != nil {
		return nil, err
	}

	s.audit(models.AuditActionAccountCreated, accountNo, map[string]interface{}{
		"account_type":    accountType,
		"opening_balance": openingBalance.StringFixed(2),
	})
	s.metrics.IncrementCounter("ledger.accounts_created", map[string]string{
		"account_type": accountType,
	})
	s.metrics.RecordProcessingTime("ledger.create_account", time.Since(start))
	s.publish(events.Event{
		Type:      events.EventAccountCreated,
		AccountNo: accountNo,
		EntryID:   entry.ID,
		Amount:    openingBalance.StringFixed(2),
	})

	s.logger.Info("account created",
		slog.Int64("account_no", accountNo),
		slog.String("account_type", accountType),
		slog.String("opening_balance", openingBalance.StringFixed(2)),
	)

	return account, nil
}

func (s *LedgerService) GetAccount(accountNo int64) (*models.Account, error) {
	return s.accountRepo.GetByAccountNo(accountNo)
}

func (s *LedgerService) GetAccounts(filters models.AccountFilters, offset, limit int) ([]models.Account, int64, error) {
	return s.accountRepo.GetAllWithFilters(filters, offset, limit)
}

func (s *LedgerService) SearchAccounts(holderName string, offset, limit int) ([]models.Account, int64, error) {
	return s.accountRepo.SearchByHolderName(holderName, offset, limit)
}

// CloseAccount soft deletes the account. Its number stays reserved and its
// log survives for audit purposes.
func (s *LedgerService) CloseAccount(accountNo int64) error {
	if _, err := s.accountRepo.GetByAccountNo(accountNo); err != nil {
		return err
	}

	if err := s.accountRepo.Delete(accountNo); err != nil {
		return err
	}

	s.audit(models.AuditActionAccountClosed, accountNo, nil)
	s.publish(events.Event{Type: events.EventAccountClosed, AccountNo: accountNo})

	s.logger.Info("account closed", slog.Int64("account_no", accountNo))
	return nil
}

// Deposit credits the account and appends a DEPOSIT entry.
func (s *LedgerService) Deposit(accountNo int64, amount decimal.Decimal, memo string) (*models.LedgerEntry, error) {
	start := s.now()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	unlock := s.lockAccounts(accountNo)
	defer unlock()

	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.depositTx(tx, accountNo, amount, memo, 0, start)
		return err
	})
	if err != nil {
		s.recordFailure("deposit", accountNo, err)
		return nil, err
	}

	s.afterCommit("deposit", models.AuditActionDeposit, entry, start)
	return entry, nil
}

// depositTx performs the credit inside an existing transaction. scheduleID
// tags the entry when a scheduled transaction drove the deposit.
func (s *LedgerService) depositTx(tx *gorm.DB, accountNo int64, amount decimal.Decimal, memo string, scheduleID int64, at time.Time) (*models.LedgerEntry, error) {
	account, err := s.accountRepo.GetByAccountNoForUpdate(tx, accountNo)
	if err != nil {
		return nil, err
	}
	if err := account.CanTransact(); err != nil {
		return nil, err
	}

	account.ResetDailyWindowIfNewDay(at)
	if err := account.Credit(amount); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		AccountNo:  accountNo,
		EntryType:  models.EntryTypeDeposit,
		Amount:     amount,
		Memo:       memo,
		Timestamp:  at,
		ScheduleID: scheduleID,
	}
	if err := s.entryRepo.CreateTx(tx, entry); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateTx(tx, account); err != nil {
		return nil, err
	}
	return entry, nil
}

// Withdraw debits the account and appends a WITHDRAW entry. Balance is
// checked before the daily ceiling, so an account that is both short on
// funds and over its limit reports insufficient balance.
func (s *LedgerService) Withdraw(accountNo int64, amount decimal.Decimal, memo string) (*models.LedgerEntry, error) {
	start := s.now()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	unlock := s.lockAccounts(accountNo)
	defer unlock()

	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.withdrawTx(tx, accountNo, amount, memo, 0, start)
		return err
	})
	if err != nil {
		s.recordFailure("withdraw", accountNo, err)
		return nil, err
	}

	s.afterCommit("withdraw", models.AuditActionWithdraw, entry, start)
	return entry, nil
}

// withdrawTx performs the debit inside an existing transaction, enforcing
// balance first, then the daily ceiling.
func (s *LedgerService) withdrawTx(tx *gorm.DB, accountNo int64, amount decimal.Decimal, memo string, scheduleID int64, at time.Time) (*models.LedgerEntry, error) {
	account, err := s.accountRepo.GetByAccountNoForUpdate(tx, accountNo)
	if err != nil {
		return nil, err
	}
	if err := account.CanTransact(); err != nil {
		return nil, err
	}

	account.ResetDailyWindowIfNewDay(at)
	if account.Balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}
	if !account.WithinDailyLimit(amount) {
		return nil, ErrDailyLimitExceeded
	}

	if err := account.Debit(amount); err != nil {
		return nil, err
	}
	account.RegisterDebitForDay(amount)

	entry := &models.LedgerEntry{
		AccountNo:  accountNo,
		EntryType:  models.EntryTypeWithdraw,
		Amount:     amount,
		Memo:       memo,
		Timestamp:  at,
		ScheduleID: scheduleID,
	}
	if err := s.entryRepo.CreateTx(tx, entry); err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateTx(tx, account); err != nil {
		return nil, err
	}
	return entry, nil
}

// Transfer atomically moves amount between two accounts, appending a
// TRANSFER_OUT entry on the source and a TRANSFER_IN entry on the
// destination. Either both entries commit or neither does.
func (s *LedgerService) Transfer(fromAccount, toAccount int64, amount decimal.Decimal) (*models.LedgerEntry, *models.LedgerEntry, error) {
	start := s.now()

	if fromAccount == toAccount {
		return nil, nil, ErrSameAccountTransfer
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, models.ErrInvalidAmount
	}

	unlock := s.lockAccounts(fromAccount, toAccount)
	defer unlock()

	var debit, credit *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		debit, credit, err = s.transferTx(tx, fromAccount, toAccount, amount, 0, start)
		return err
	})
	if err != nil {
		s.recordFailure("transfer", fromAccount, err)
		return nil, nil, err
	}

	s.audit(models.AuditActionTransfer, fromAccount, map[string]interface{}{
		"to_account": toAccount,
		"amount":     amount.StringFixed(2),
		"debit_id":   debit.ID,
		"credit_id":  credit.ID,
	})
	s.metrics.IncrementCounter("ledger.operations", map[string]string{
		"operation": "transfer",
		"status":    "success",
	})
	s.metrics.RecordProcessingTime("ledger.transfer", time.Since(start))
	s.auditLogger.LogOperationCompleted(context.Background(), "transfer", fromAccount, debit.ID, time.Since(start).Milliseconds())
	s.publish(events.Event{
		Type:      events.EventEntryRecorded,
		AccountNo: fromAccount,
		EntryID:   debit.ID,
		Amount:    amount.StringFixed(2),
		Metadata: map[string]string{
			"entry_type": models.EntryTypeTransferOut,
			"to_account": fmt.Sprintf("%d", toAccount),
		},
	})

	s.logger.Info("transfer completed",
		slog.Int64("from_account", fromAccount),
		slog.Int64("to_account", toAccount),
		slog.String("amount", amount.StringFixed(2)),
	)

	return debit, credit, nil
}

// transferTx moves amount between both accounts inside an existing
// transaction, appending the TRANSFER_OUT and TRANSFER_IN entries.
func (s *LedgerService) transferTx(tx *gorm.DB, fromAccount, toAccount int64, amount decimal.Decimal, scheduleID int64, at time.Time) (*models.LedgerEntry, *models.LedgerEntry, error) {
	from, err := s.accountRepo.GetByAccountNoForUpdate(tx, fromAccount)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.accountRepo.GetByAccountNoForUpdate(tx, toAccount)
	if err != nil {
		return nil, nil, err
	}
	if err := from.CanTransact(); err != nil {
		return nil, nil, err
	}
	if err := to.CanTransact(); err != nil {
		return nil, nil, err
	}

	from.ResetDailyWindowIfNewDay(at)
	if from.Balance.LessThan(amount) {
		return nil, nil, models.ErrInsufficientFunds
	}
	if !from.WithinDailyLimit(amount) {
		return nil, nil, ErrDailyLimitExceeded
	}

	if err := from.Debit(amount); err != nil {
		return nil, nil, err
	}
	from.RegisterDebitForDay(amount)
	if err := to.Credit(amount); err != nil {
		return nil, nil, err
	}

	debit := &models.LedgerEntry{
		AccountNo:  fromAccount,
		EntryType:  models.EntryTypeTransferOut,
		Amount:     amount,
		Memo:       fmt.Sprintf("Transfer to %d", toAccount),
		Timestamp:  at,
		ScheduleID: scheduleID,
	}
	if err := s.entryRepo.CreateTx(tx, debit); err != nil {
		return nil, nil, err
	}

	credit := &models.LedgerEntry{
		AccountNo:  toAccount,
		EntryType:  models.EntryTypeTransferIn,
		Amount:     amount,
		Memo:       fmt.Sprintf("Transfer from %d", fromAccount),
		Timestamp:  at,
		ScheduleID: scheduleID,
	}
	if err := s.entryRepo.CreateTx(tx, credit); err != nil {
		return nil, nil, err
	}

	if err := s.accountRepo.UpdateTx(tx, from); err != nil {
		return nil, nil, err
	}
	if err := s.accountRepo.UpdateTx(tx, to); err != nil {
		return nil, nil, err
	}
	return debit, credit, nil
}

// RunScheduled applies a due scheduled transaction through the engine and
// flips its executed flag inside the same database transaction, so the
// money movement and the flag commit or roll back together and a schedule
// is never applied twice. Returns ErrScheduleAlreadyDone when another run
// got there first.
func (s *LedgerService) RunScheduled(sched *models.ScheduledTransaction) (*models.LedgerEntry, error) {
	start := s.now()

	if sched == nil {
		return nil, errors.New("scheduled transaction cannot be nil")
	}
	if sched.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	accountNos := []int64{sched.FromAccount}
	if sched.Kind == models.ScheduleKindTransfer {
		if sched.FromAccount == sched.ToAccount {
			return nil, ErrSameAccountTransfer
		}
		accountNos = append(accountNos, sched.ToAccount)
	}
	unlock := s.lockAccounts(accountNos...)
	defer unlock()

	memo := scheduleMemo(sched)

	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.schedRepo.MarkExecutedTx(tx, sched.ID, start); err != nil {
			return err
		}

		var err error
		switch sched.Kind {
		case models.ScheduleKindDeposit:
			entry, err = s.depositTx(tx, sched.FromAccount, sched.Amount, memo, sched.ID, start)
		case models.ScheduleKindWithdraw:
			entry, err = s.withdrawTx(tx, sched.FromAccount, sched.Amount, memo, sched.ID, start)
		case models.ScheduleKindTransfer:
			entry, _, err = s.transferTx(tx, sched.FromAccount, sched.ToAccount, sched.Amount, sched.ID, start)
		default:
			err = models.ErrInvalidScheduleKind
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, repositories.ErrScheduleAlreadyDone) {
			s.recordFailure("scheduled_"+strings.ToLower(sched.Kind), sched.FromAccount, err)
		}
		return nil, err
	}

	operation, auditAction := "deposit", models.AuditActionDeposit
	switch sched.Kind {
	case models.ScheduleKindWithdraw:
		operation, auditAction = "withdraw", models.AuditActionWithdraw
	case models.ScheduleKindTransfer:
		operation, auditAction = "transfer", models.AuditActionTransfer
	}
	s.afterCommit(operation, auditAction, entry, start)
	return entry, nil
}

// ApplyInterestIfDue posts simple interest for the whole days elapsed since
// the account's last accrual date. Returns a nil entry when no full day has
// passed or the rounded amount is zero; the accrual date still advances in
// the latter case so the same days are never counted twice.
func (s *LedgerService) ApplyInterestIfDue(accountNo int64) (*models.LedgerEntry, error) {
	start := s.now()

	unlock := s.lockAccounts(accountNo)
	defer unlock()

	var entry *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.GetByAccountNoForUpdate(tx, accountNo)
		if err != nil {
			return err
		}
		if err := account.CanTransact(); err != nil {
			return err
		}

		days := models.DaysBetween(account.LastInterestDate, start)
		if days <= 0 {
			return nil
		}

		rate := s.ledgerCfg.AnnualInterestRate(account.AccountType)
		interest := account.Balance.
			Mul(rate).
			Div(decimal.NewFromInt(100)).
			Mul(decimal.NewFromInt(days)).
			Div(decimal.NewFromInt(365)).
			Round(2)

		account.LastInterestDate = models.CalendarDay(start)

		if interest.GreaterThan(decimal.Zero) {
			if err := account.Credit(interest); err != nil {
				return err
			}
			entry = &models.LedgerEntry{
				AccountNo: accountNo,
				EntryType: models.EntryTypeInterest,
				Amount:    interest,
				Memo:      fmt.Sprintf("Interest for %d day(s)", days),
				Timestamp: start,
			}
			if err := s.entryRepo.CreateTx(tx, entry); err != nil {
				return err
			}
		}

		return s.accountRepo.UpdateTx(tx, account)
	})
	if err != nil {
		s.recordFailure("interest", accountNo, err)
		return nil, err
	}

	if entry == nil {
		return nil, nil
	}

	s.afterCommit("interest", models.AuditActionInterest, entry, start)
	return entry, nil
}

// ApplyInterestToAll sweeps every account and posts due interest. Inactive
// and locked accounts are skipped, not failed. Returns the number of
// accounts that received an interest entry.
func (s *LedgerService) ApplyInterestToAll() (int, error) {
	applied := 0

	for offset := 0; ; offset += interestSweepBatchSize {
		accounts, _, err := s.accountRepo.GetAll(offset, interestSweepBatchSize)
		if err != nil {
			return applied, fmt.Errorf("interest sweep failed to list accounts: %w", err)
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			entry, err := s.ApplyInterestIfDue(account.AccountNo)
			if err != nil {
				if errors.Is(err, models.ErrAccountInactive) || errors.Is(err, models.ErrAccountLocked) {
					continue
				}
				s.logger.Error("interest sweep failed for account",
					slog.Int64("account_no", account.AccountNo),
					slog.String("error", err.Error()),
				)
				continue
			}
			if entry != nil {
				applied++
			}
		}

		if len(accounts) < interestSweepBatchSize {
			break
		}
	}

	s.logger.Info("interest sweep completed", slog.Int("accounts_credited", applied))
	return applied, nil
}

// ReverseLast undoes the most recent entry on the account by appending a
// REVERSAL entry carrying the negated amount. Only the last entry is ever
// reversible, and only within the configured window of its timestamp.
func (s *LedgerService) ReverseLast(accountNo int64) (*models.LedgerEntry, error) {
	start := s.now()

	unlock := s.lockAccounts(accountNo)
	defer unlock()

	var reversal *models.LedgerEntry
	var original *models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.GetByAccountNoForUpdate(tx, accountNo)
		if err != nil {
			return err
		}
		if err := account.CanTransact(); err != nil {
			return err
		}

		last, err := s.entryRepo.GetLastByAccountNo(tx, accountNo)
		if err != nil {
			if errors.Is(err, repositories.ErrEntryNotFound) {
				return ErrNothingToReverse
			}
			return err
		}
		original = last

		if last.EntryType == models.EntryTypeOpen {
			return ErrReverseOpeningEntry
		}
		if last.IsReversal() {
			return ErrAlreadyReversed
		}
		if last.Adjustment {
			return ErrReverseAdjustment
		}
		// Only customer deposits, withdrawals and transfers can be undone.
		// Interest stays posted; over-accruals are corrected by an admin
		// adjustment.
		switch last.EntryType {
		case models.EntryTypeDeposit, models.EntryTypeWithdraw,
			models.EntryTypeTransferIn, models.EntryTypeTransferOut:
		default:
			return ErrUnsupportedReversalType
		}
		if start.Sub(last.Timestamp) > s.ledgerCfg.ReversalWindow {
			return ErrReversalWindowExpired
		}

		account.ResetDailyWindowIfNewDay(start)

		if last.IsCredit() {
			if account.Balance.LessThan(last.Amount) {
				return ErrReversalInsufficientBalance
			}
			account.Balance = account.Balance.Sub(last.Amount)
		} else {
			account.Balance = account.Balance.Add(last.Amount)
			// A reversed debit no longer counts against the day's ceiling.
			if models.SameCalendarDay(last.Timestamp, start) {
				account.DailyWithdrawn = account.DailyWithdrawn.Sub(last.Amount)
				if account.DailyWithdrawn.LessThan(decimal.Zero) {
					account.DailyWithdrawn = decimal.Zero
				}
			}
		}

		reversal = &models.LedgerEntry{
			AccountNo: accountNo,
			EntryType: models.EntryTypeReversal,
			Amount:    last.Amount.Neg(),
			Memo:      fmt.Sprintf("Reversal of entry %d (%s)", last.ID, last.EntryType),
			Timestamp: start,
			ReverseOf: last.ID,
		}
		if err := s.entryRepo.CreateTx(tx, reversal); err != nil {
			return err
		}

		return s.accountRepo.UpdateTx(tx, account)
	})
	if err != nil {
		s.recordFailure("reversal", accountNo, err)
		return nil, err
	}

	s.audit(models.AuditActionReversal, accountNo, map[string]interface{}{
		"reversed_entry": original.ID,
		"entry_type":     original.EntryType,
		"amount":         original.Amount.StringFixed(2),
	})
	s.metrics.IncrementCounter("ledger.operations", map[string]string{
		"operation": "reversal",
		"status":    "success",
	})
	s.metrics.RecordProcessingTime("ledger.reversal", time.Since(start))
	s.auditLogger.LogReversal(context.Background(), accountNo, original.ID, reversal.ID)
	s.publish(events.Event{
		Type:      events.EventEntryReversed,
		AccountNo: accountNo,
		EntryID:   reversal.ID,
		Amount:    reversal.Amount.StringFixed(2),
		Metadata: map[string]string{
			"reversed_entry": fmt.Sprintf("%d", original.ID),
		},
	})

	s.logger.Info("entry reversed",
		slog.Int64("account_no", accountNo),
		slog.Int64("reversed_entry", original.ID),
		slog.Int64("reversal_entry", reversal.ID),
	)

	return reversal, nil
}

// SetActive freezes or unfreezes the account. A frozen account stays
// visible to lookups but rejects all money movement.
func (s *LedgerService) SetActive(accountNo int64, active bool) (*models.Account, error) {
	account, err := s.accountRepo.GetByAccountNo(accountNo)
	if err != nil {
		return nil, err
	}
	if account.Active == active {
		return account, nil
	}

	account.Active = active
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	s.audit(models.AuditActionStatusChanged, accountNo, map[string]interface{}{
		"active": active,
	})
	s.logger.Info("account status changed",
		slog.Int64("account_no", accountNo),
		slog.Bool("active", active),
	)

	return account, nil
}

// SetLocked locks or unlocks the account. Unlocking clears the failed PIN
// counter so the holder starts with a clean slate.
func (s *LedgerService) SetLocked(accountNo int64, locked bool) (*models.Account, error) {
	account, err := s.accountRepo.GetByAccountNo(accountNo)
	if err != nil {
		return nil, err
	}
	if account.Locked == locked {
		return account, nil
	}

	account.Locked = locked
	if !locked {
		account.FailedPinAttempts = 0
	}
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	s.audit(models.AuditActionLockChanged, accountNo, map[string]interface{}{
		"locked": locked,
	})
	s.logger.Info("account lock changed",
		slog.Int64("account_no", accountNo),
		slog.Bool("locked", locked),
	)

	return account, nil
}

func (s *LedgerService) SetDailyLimit(accountNo int64, limit decimal.Decimal) (*models.Account, error) {
	if limit.LessThan(decimal.Zero) {
		return nil, ErrInvalidDailyLimit
	}

	account, err := s.accountRepo.GetByAccountNo(accountNo)
	if err != nil {
		return nil, err
	}

	previous := account.DailyLimit
	account.DailyLimit = limit
	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}

	s.audit(models.AuditActionLimitChanged, accountNo, map[string]interface{}{
		"previous_limit": previous.StringFixed(2),
		"new_limit":      limit.StringFixed(2),
	})

	return account, nil
}

// AdjustBalance is the administrative correction path. It sets the balance
// to an explicit value and records the delta as a DEPOSIT or WITHDRAW entry
// flagged as an adjustment, so the log still explains the balance without
// the correction counting as customer volume or becoming reversible. It
// bypasses the transact and daily-limit checks.
func (s *LedgerService) AdjustBalance(accountNo int64, newBalance decimal.Decimal, reason string) (*models.Account, error) {
	start := s.now()

	if newBalance.LessThan(decimal.Zero) {
		return nil, models.ErrInvalidBalance
	}

	unlock := s.lockAccounts(accountNo)
	defer unlock()

	var account *models.Account
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = s.accountRepo.GetByAccountNoForUpdate(tx, accountNo)
		if err != nil {
			return err
		}

		delta := newBalance.Sub(account.Balance)
		if delta.IsZero() {
			return nil
		}

		entryType := models.EntryTypeDeposit
		if delta.IsNegative() {
			entryType = models.EntryTypeWithdraw
		}

		entry := &models.LedgerEntry{
			AccountNo:  accountNo,
			EntryType:  entryType,
			Amount:     delta.Abs(),
			Memo:       "Balance adjustment: " + reason,
			Timestamp:  start,
			Adjustment: true,
		}
		if err := s.entryRepo.CreateTx(tx, entry); err != nil {
			return err
		}

		account.Balance = newBalance
		return s.accountRepo.UpdateTx(tx, account)
	})
	if err != nil {
		s.recordFailure("adjust_balance", accountNo, err)
		return nil, err
	}

	s.audit(models.AuditActionBalanceAdjusted, accountNo, map[string]interface{}{
		"new_balance": newBalance.StringFixed(2),
		"reason":      reason,
	})
	s.logger.Info("balance adjusted",
		slog.Int64("account_no", accountNo),
		slog.String("new_balance", newBalance.StringFixed(2)),
		slog.String("reason", reason),
	)

	return account, nil
}

func (s *LedgerService) GetEntries(filters models.EntryFilters) ([]models.LedgerEntry, int64, error) {
	return s.entryRepo.GetWithFilters(filters)
}

func (s *LedgerService) GetRecentEntries(accountNo int64, limit int) ([]models.LedgerEntry, error) {
	if _, err := s.accountRepo.GetByAccountNo(accountNo); err != nil {
		return nil, err
	}
	return s.entryRepo.GetRecentByAccountNo(accountNo, limit)
}

func (s *LedgerService) GetTotals(accountNo int64) (*models.AccountTotals, error) {
	if _, err := s.accountRepo.GetByAccountNo(accountNo); err != nil {
		return nil, err
	}
	return s.entryRepo.GetTotalsByAccountNo(accountNo)
}

func (s *LedgerService) GetStats() (*models.LedgerStats, error) {
	return s.accountRepo.GetStats()
}

// accountLock returns the mutex guarding one account, creating it on first
// use.
func (s *LedgerService) accountLock(accountNo int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.accountLocks[accountNo]
	if !ok {
		lock = &sync.Mutex{}
		s.accountLocks[accountNo] = lock
	}
	return lock
}

// lockAccounts acquires the per-account mutexes in ascending account-number
// order and returns the matching unlock.
func (s *LedgerService) lockAccounts(accountNos ...int64) func() {
	sorted := append([]int64(nil), accountNos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, no := range sorted {
		locks = append(locks, s.accountLock(no))
	}
	for _, lock := range locks {
		lock.Lock()
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// audit persists an audit record; failures are logged, never surfaced,
// because the underlying operation has already committed.
func (s *LedgerService) audit(action string, accountNo int64, metadata map[string]interface{}) {
	log := &models.AuditLog{
		AccountNo: &accountNo,
		Action:    action,
		Resource:  "ledger",
	}
	for key, value := range metadata {
		log.SetMetadata(key, value)
	}

	if err := s.auditRepo.Create(log); err != nil {
		s.logger.Error("failed to create audit log",
			slog.String("action", action),
			slog.Int64("account_no", accountNo),
			slog.String("error", err.Error()),
		)
	}
}

func (s *LedgerService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}

	event.OccurredAt = s.now()
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish ledger event",
			slog.String("type", event.Type),
			slog.Int64("account_no", event.AccountNo),
			slog.String("error", err.Error()),
		)
	}
}

func (s *LedgerService) recordFailure(operation string, accountNo int64, err error) {
	s.metrics.IncrementCounter("ledger.operations", map[string]string{
		"operation": operation,
		"status":    "failed",
	})
	s.auditLogger.LogOperationFailed(context.Background(), operation, accountNo, err.Error())
}

func (s *LedgerService) afterCommit(operation, auditAction string, entry *models.LedgerEntry, start time.Time) {
	s.audit(auditAction, entry.AccountNo, map[string]interface{}{
		"entry_id": entry.ID,
		"amount":   entry.Amount.StringFixed(2),
	})
	s.metrics.IncrementCounter("ledger.operations", map[string]string{
		"operation": operation,
		"status":    "success",
	})
	s.metrics.RecordProcessingTime("ledger."+operation, time.Since(start))
	s.auditLogger.LogOperationCompleted(context.Background(), operation, entry.AccountNo, entry.ID, time.Since(start).Milliseconds())

	eventType := events.EventEntryRecorded
	if entry.EntryType == models.EntryTypeInterest {
		eventType = events.EventInterestApplied
	}
	s.publish(events.Event{
		Type:      eventType,
		AccountNo: entry.AccountNo,
		EntryID:   entry.ID,
		Amount:    entry.Amount.StringFixed(2),
		Metadata: map[string]string{
			"entry_type": entry.EntryType,
		},
	})

	s.logger.Info("ledger entry recorded",
		slog.String("operation", operation),
		slog.Int64("account_no", entry.AccountNo),
		slog.Int64("entry_id", entry.ID),
		slog.String("amount", entry.Amount.StringFixed(2)),
	)
}

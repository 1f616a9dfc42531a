package repositories

import (
	"errors"
	"fmt"
	"sync"

	"bankledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCorruptRecord   = errors.New("stored record failed validation")
)

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
	mu sync.Mutex // For account number assignment
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

// NextAccountNumber returns the next free account number. Numbers start at
// models.FirstAccountNo and grow monotonically; soft-deleted accounts are
// included in the scan so a number is never handed out twice.
func (r *accountRepository) NextAccountNumber() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result struct {
		Max int64
	}

	if err := r.db.Unscoped().Model(&models.Account{}).
		Select("COALESCE(MAX(account_no), 0) as max").
		Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("failed to determine next account number: %w", err)
	}

	if result.Max < models.FirstAccountNo {
		return models.FirstAccountNo, nil
	}
	return result.Max + 1, nil
}

// CreateWithOpeningEntry inserts the account together with its OPEN ledger
// entry in one transaction, so no account ever exists without a log.
func (r *accountRepository) CreateWithOpeningEntry(account *models.Account, memo string) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		AccountNo: account.AccountNo,
		EntryType: models.EntryTypeOpen,
		Amount:    account.Balance,
		Memo:      memo,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create opening entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByAccountNo retrieves an account by its number
func (r *accountRepository) GetByAccountNo(accountNo int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("account_no = ?", accountNo).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByAccountNoForUpdate retrieves an account inside tx with a row lock on
// drivers that support it.
func (r *accountRepository) GetByAccountNoForUpdate(tx *gorm.DB, accountNo int64) (*models.Account, error) {
	var account models.Account
	if err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where("account_no = ?", accountNo).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

// GetAll retrieves all accounts with pagination
func (r *accountRepository) GetAll(offset, limit int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	if err := r.db.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	if err := r.db.Offset(offset).Limit(limit).
		Order("account_no ASC").Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get accounts: %w", err)
	}

	return accounts, total, nil
}

// GetAllWithFilters retrieves accounts with filters and pagination
func (r *accountRepository) GetAllWithFilters(filters models.AccountFilters, offset, limit int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	query := r.db.Model(&models.Account{})

	if filters.HolderName != "" {
		query = query.Where("LOWER(holder_name) LIKE LOWER(?)", "%"+filters.HolderName+"%")
	}
	if filters.AccountType != "" {
		query = query.Where("account_type = ?", filters.AccountType)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}
	if filters.Locked != nil {
		query = query.Where("locked = ?", *filters.Locked)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered accounts: %w", err)
	}

	if err := query.Offset(offset).Limit(limit).
		Order("account_no ASC").Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered accounts: %w", err)
	}

	return accounts, total, nil
}

// SearchByHolderName retrieves accounts whose holder name contains the query
func (r *accountRepository) SearchByHolderName(name string, offset, limit int) ([]models.Account, int64, error) {
	return r.GetAllWithFilters(models.AccountFilters{HolderName: name}, offset, limit)
}

// Update persists an account
func (r *accountRepository) Update(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// UpdateTx persists an account inside an existing transaction
func (r *accountRepository) UpdateTx(tx *gorm.DB, account *models.Account) error {
	if err := tx.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// Delete soft deletes an account. Its number stays reserved and its ledger
// entries are kept.
func (r *accountRepository) Delete(accountNo int64) error {
	result := r.db.Where("account_no = ?", accountNo).Delete(&models.Account{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// GetStats aggregates system-wide account figures
func (r *accountRepository) GetStats() (*models.LedgerStats, error) {
	stats := &models.LedgerStats{}

	if err := r.db.Model(&models.Account{}).Count(&stats.TotalAccounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	if err := r.db.Model(&models.Account{}).Where("active = ?", true).
		Count(&stats.ActiveAccounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count active accounts: %w", err)
	}

	if err := r.db.Model(&models.Account{}).Where("locked = ?", true).
		Count(&stats.LockedAccounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count locked accounts: %w", err)
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.Model(&models.Account{}).
		Select("COALESCE(SUM(balance), 0) as total").
		Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	stats.TotalBalance = result.Total

	return stats, nil
}

// ValidateStoredAccounts re-validates every stored account and its ledger
// entries. A record that no longer passes validation marks the store corrupt
// and the whole check fails rather than silently skipping the row.
func (r *accountRepository) ValidateStoredAccounts() error {
	var accounts []models.Account
	if err := r.db.Find(&accounts).Error; err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	for i := range accounts {
		if err := accounts[i].Validate(); err != nil {
			return fmt.Errorf("%w: account %d: %v", ErrCorruptRecord, accounts[i].AccountNo, err)
		}

		var entries []models.LedgerEntry
		if err := r.db.Where("account_no = ?", accounts[i].AccountNo).
			Order("id ASC").Find(&entries).Error; err != nil {
			return fmt.Errorf("failed to load entries for account %d: %w", accounts[i].AccountNo, err)
		}

		for j := range entries {
			if err := entries[j].Validate(); err != nil {
				return fmt.Errorf("%w: entry %d on account %d: %v",
					ErrCorruptRecord, entries[j].ID, accounts[i].AccountNo, err)
			}
		}
	}

	return nil
}

package repositories

import (
	"errors"
	"fmt"

	"bankledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

// ledgerEntryRepository implements LedgerEntryRepositoryInterface. The log is
// append-only: there is no update or delete path.
type ledgerEntryRepository struct {
	db *gorm.DB
}

// NewLedgerEntryRepository creates a new ledger entry repository
func NewLedgerEntryRepository(db *gorm.DB) LedgerEntryRepositoryInterface {
	return &ledgerEntryRepository{
		db: db,
	}
}

// Create appends an entry to the log
func (r *ledgerEntryRepository) Create(entry *models.LedgerEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// CreateTx appends an entry inside an existing transaction
func (r *ledgerEntryRepository) CreateTx(tx *gorm.DB, entry *models.LedgerEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its id
func (r *ledgerEntryRepository) GetByID(id int64) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

// GetByAccountNo retrieves the full log for an account, oldest first
func (r *ledgerEntryRepository) GetByAccountNo(accountNo int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.Where("account_no = ?", accountNo).
		Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}

// GetLastByAccountNo retrieves the most recent entry for an account. Returns
// ErrEntryNotFound when the log is empty. Pass nil to query outside a
// transaction.
func (r *ledgerEntryRepository) GetLastByAccountNo(tx *gorm.DB, accountNo int64) (*models.LedgerEntry, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var entry models.LedgerEntry
	if err := db.Where("account_no = ?", accountNo).
		Order("id DESC").First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get last ledger entry: %w", err)
	}
	return &entry, nil
}

// GetRecentByAccountNo retrieves the last limit entries, oldest of them first
func (r *ledgerEntryRepository) GetRecentByAccountNo(accountNo int64, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.Where("account_no = ?", accountNo).
		Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent ledger entries: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetWithFilters retrieves entries matching the filters, oldest first
func (r *ledgerEntryRepository) GetWithFilters(filters models.EntryFilters) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	query := r.db.Model(&models.LedgerEntry{}).Where("account_no = ?", filters.AccountNo)

	if filters.StartDate != nil {
		query = query.Where("timestamp >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("timestamp <= ?", *filters.EndDate)
	}
	if filters.EntryType != "" {
		query = query.Where("entry_type = ?", filters.EntryType)
	}
	if filters.MinAmount != nil {
		query = query.Where("amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("amount <= ?", *filters.MaxAmount)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered entries: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered entries: %w", err)
	}

	return entries, total, nil
}

// GetTotalsByAccountNo aggregates lifetime credit and debit volume. Reversal
// entries and administrative adjustments count toward neither side.
func (r *ledgerEntryRepository) GetTotalsByAccountNo(accountNo int64) (*models.AccountTotals, error) {
	totals := &models.AccountTotals{}

	creditTypes := []string{
		models.EntryTypeOpen, models.EntryTypeDeposit,
		models.EntryTypeTransferIn, models.EntryTypeInterest,
	}
	debitTypes := []string{models.EntryTypeWithdraw, models.EntryTypeTransferOut}

	var row struct {
		Count int64
		Total string
	}

	if err := r.db.Model(&models.LedgerEntry{}).
		Select("COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("account_no = ? AND entry_type IN ? AND adjustment = ?", accountNo, creditTypes, false).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to total credits: %w", err)
	}
	totals.Credits = row.Count
	creditAmount, err := parseDecimalTotal(row.Total)
	if err != nil {
		return nil, err
	}
	totals.CreditAmount = creditAmount

	if err := r.db.Model(&models.LedgerEntry{}).
		Select("COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("account_no = ? AND entry_type IN ? AND adjustment = ?", accountNo, debitTypes, false).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to total debits: %w", err)
	}
	totals.Debits = row.Count
	debitAmount, err := parseDecimalTotal(row.Total)
	if err != nil {
		return nil, err
	}
	totals.DebitAmount = debitAmount

	return totals, nil
}

// parseDecimalTotal converts a SUM() result scanned as text. SQLite reports
// aggregate sums of decimal columns as plain numbers.
func parseDecimalTotal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse aggregate amount %q: %w", raw, err)
	}
	return dec, nil
}

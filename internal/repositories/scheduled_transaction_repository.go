package repositories

import (
	"errors"
	"fmt"
	"time"

	"bankledger/internal/models"

	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound    = errors.New("scheduled transaction not found")
	ErrScheduleNotPending  = errors.New("scheduled transaction is not pending")
	ErrScheduleAlreadyDone = errors.New("scheduled transaction already executed")
)

// scheduledTransactionRepository implements ScheduledTransactionRepositoryInterface
type scheduledTransactionRepository struct {
	db *gorm.DB
}

// NewScheduledTransactionRepository creates a new scheduled transaction repository
func NewScheduledTransactionRepository(db *gorm.DB) ScheduledTransactionRepositoryInterface {
	return &scheduledTransactionRepository{
		db: db,
	}
}

// Create records a new scheduled transaction
func (r *scheduledTransactionRepository) Create(sched *models.ScheduledTransaction) error {
	if err := r.db.Create(sched).Error; err != nil {
		return fmt.Errorf("failed to create scheduled transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a scheduled transaction by id
func (r *scheduledTransactionRepository) GetByID(id int64) (*models.ScheduledTransaction, error) {
	var sched models.ScheduledTransaction
	if err := r.db.Where("id = ?", id).First(&sched).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled transaction: %w", err)
	}
	return &sched, nil
}

// FetchDue returns unexecuted entries whose scheduled date is on or before
// today, in creation order. Pass accountNo 0 to fetch for all accounts.
func (r *scheduledTransactionRepository) FetchDue(today time.Time, accountNo int64) ([]*models.ScheduledTransaction, error) {
	cutoff := models.CalendarDay(today).AddDate(0, 0, 1)

	query := r.db.Where("executed = ? AND scheduled_date < ?", false, cutoff)
	if accountNo > 0 {
		query = query.Where("from_account = ?", accountNo)
	}

	var due []*models.ScheduledTransaction
	if err := query.Order("id ASC").Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch due scheduled transactions: %w", err)
	}
	return due, nil
}

// ListPending returns unexecuted entries, soonest first. Pass accountNo 0 to
// list for all accounts.
func (r *scheduledTransactionRepository) ListPending(accountNo int64) ([]*models.ScheduledTransaction, error) {
	query := r.db.Where("executed = ?", false)
	if accountNo > 0 {
		query = query.Where("from_account = ?", accountNo)
	}

	var pending []*models.ScheduledTransaction
	if err := query.Order("scheduled_date ASC, id ASC").Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending scheduled transactions: %w", err)
	}
	return pending, nil
}

// MarkExecuted flips the executed flag exactly once
func (r *scheduledTransactionRepository) MarkExecuted(id int64, at time.Time) error {
	return r.markExecuted(r.db, id, at)
}

// MarkExecutedTx flips the executed flag inside an existing transaction, so
// callers can commit the flag together with the ledger mutation it covers.
func (r *scheduledTransactionRepository) MarkExecutedTx(tx *gorm.DB, id int64, at time.Time) error {
	return r.markExecuted(tx, id, at)
}

func (r *scheduledTransactionRepository) markExecuted(db *gorm.DB, id int64, at time.Time) error {
	result := db.Model(&models.ScheduledTransaction{}).
		Where("id = ? AND executed = ?", id, false).
		Updates(map[string]interface{}{
			"executed":    true,
			"executed_at": at,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark scheduled transaction executed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrScheduleAlreadyDone
	}
	return nil
}

// CancelPending removes a scheduled transaction that has not executed yet.
// Executed entries stay in the table as history.
func (r *scheduledTransactionRepository) CancelPending(id int64) error {
	var sched models.ScheduledTransaction
	if err := r.db.Where("id = ?", id).First(&sched).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to get scheduled transaction: %w", err)
	}

	if sched.Executed {
		return ErrScheduleNotPending
	}

	if err := r.db.Delete(&sched).Error; err != nil {
		return fmt.Errorf("failed to cancel scheduled transaction: %w", err)
	}
	return nil
}

package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ScheduleKindDeposit  = "DEPOSIT"
	ScheduleKindWithdraw = "WITHDRAW"
	ScheduleKindTransfer = "TRANSFER"
)

var (
	ErrInvalidScheduleKind = errors.New("invalid scheduled transaction kind")
	ErrScheduleDateInPast  = errors.New("scheduled date cannot be in the past")
	ErrScheduleExecuted    = errors.New("scheduled transaction already executed")
)

// ScheduledTransaction is a deferred ledger operation recorded now and
// executed through the engine once its date arrives. A failed due entry
// stays pending and is retried on the next trigger; it transitions to
// executed exactly once, when the underlying operation succeeds.
type ScheduledTransaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	FromAccount   int64           `gorm:"not null;index" json:"from_account"`
	ToAccount     int64           `gorm:"not null;default:0" json:"to_account,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	ScheduledDate time.Time       `gorm:"not null;index" json:"scheduled_date"`
	Kind          string          `gorm:"type:varchar(20);not null" json:"kind"`
	Memo          string          `gorm:"type:text" json:"memo"`
	Executed      bool            `gorm:"not null;default:false;index" json:"executed"`
	ExecutedAt    *time.Time      `json:"executed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for ScheduledTransaction
func (s *ScheduledTransaction) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return s.Validate()
}

// BeforeUpdate hook for ScheduledTransaction
func (s *ScheduledTransaction) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// Validate validates the scheduled transaction fields
func (s *ScheduledTransaction) Validate() error {
	if s.FromAccount <= 0 {
		return errors.New("source account is required")
	}

	if !IsValidScheduleKind(s.Kind) {
		return ErrInvalidScheduleKind
	}

	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("scheduled amount must be positive")
	}

	if s.Kind == ScheduleKindTransfer {
		if s.ToAccount <= 0 {
			return errors.New("transfer requires a destination account")
		}
		if s.ToAccount == s.FromAccount {
			return errors.New("cannot schedule a transfer to the same account")
		}
	} else if s.ToAccount != 0 {
		return errors.New("destination account is only valid for transfers")
	}

	if s.ScheduledDate.IsZero() {
		return errors.New("scheduled date is required")
	}

	return nil
}

// IsDue reports whether the entry should run on the given day
func (s *ScheduledTransaction) IsDue(today time.Time) bool {
	return !s.Executed && !CalendarDay(s.ScheduledDate).After(CalendarDay(today))
}

// MarkExecuted transitions the entry to executed; valid exactly once.
func (s *ScheduledTransaction) MarkExecuted(at time.Time) error {
	if s.Executed {
		return ErrScheduleExecuted
	}
	s.Executed = true
	s.ExecutedAt = &at
	return nil
}

// TableName returns the table name for ScheduledTransaction
func (s *ScheduledTransaction) TableName() string {
	return "scheduled_transactions"
}

// IsValidScheduleKind checks if the kind is in the unified kind set
func IsValidScheduleKind(kind string) bool {
	switch kind {
	case ScheduleKindDeposit, ScheduleKindWithdraw, ScheduleKindTransfer:
		return true
	default:
		return false
	}
}

package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountTypeSavings  = "savings"
	AccountTypeChecking = "checking"
	AccountTypeFixed    = "fixed"
	AccountTypeBusiness = "business"

	// FirstAccountNo is the number assigned to the first account ever
	// created; subsequent numbers increase monotonically and are never
	// reused, even after an account is deleted.
	FirstAccountNo int64 = 1001
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidBalance     = errors.New("balance cannot be negative")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountLocked      = errors.New("account is locked")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// Account represents one ledger account and the mutable state governed by
// the engine's invariants. Balance never goes negative after a committed
// operation; DailyWithdrawn tracks debits for the current calendar day.
type Account struct {
	AccountNo         int64           `gorm:"primaryKey;autoIncrement:false" json:"account_no"`
	HolderName        string          `gorm:"type:varchar(255);not null;index" json:"holder_name"`
	AccountType       string          `gorm:"type:varchar(20);not null;index" json:"account_type"`
	Balance           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	// No tag-level default: gorm drops zero-valued fields that carry one,
	// so an account created inactive would be stored active.
	Active            bool            `gorm:"not null;index" json:"active"`
	Locked            bool            `gorm:"not null;default:false" json:"locked"`
	PinHash           string          `gorm:"type:varchar(100)" json:"-"`
	FailedPinAttempts int             `gorm:"not null;default:0" json:"-"`
	DailyLimit        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"daily_limit"`
	DailyWithdrawn    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"daily_withdrawn"`
	LastDailyReset    time.Time       `gorm:"not null" json:"last_daily_reset"`
	LastInterestDate  time.Time       `gorm:"not null" json:"last_interest_date"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	// Associations
	Entries []LedgerEntry `gorm:"foreignKey:AccountNo;references:AccountNo" json:"-"`
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	today := CalendarDay(now)
	if a.LastDailyReset.IsZero() {
		a.LastDailyReset = today
	}
	if a.LastInterestDate.IsZero() {
		a.LastInterestDate = today
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

// Validate validates the account fields
func (a *Account) Validate() error {
	if a.AccountNo <= 0 {
		return errors.New("account number must be positive")
	}

	if a.HolderName == "" {
		return errors.New("holder name is required")
	}

	if !IsValidAccountType(a.AccountType) {
		return ErrInvalidAccountType
	}

	if a.Balance.LessThan(decimal.Zero) {
		return ErrInvalidBalance
	}

	if a.DailyLimit.LessThan(decimal.Zero) {
		return errors.New("daily limit cannot be negative")
	}

	if a.DailyWithdrawn.LessThan(decimal.Zero) {
		return errors.New("daily withdrawn total cannot be negative")
	}

	return nil
}

// CanTransact reports whether financial operations are permitted. Inactive
// and locked accounts stay visible to lookups but reject all money movement.
func (a *Account) CanTransact() error {
	if !a.Active {
		return ErrAccountInactive
	}
	if a.Locked {
		return ErrAccountLocked
	}
	return nil
}

// Credit credits the account
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("credit amount must be positive")
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

// Debit debits the account
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("debit amount must be positive")
	}

	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// ResetDailyWindowIfNewDay zeroes the running debit total the first time an
// operation observes a calendar-day change. Returns true if a reset happened.
func (a *Account) ResetDailyWindowIfNewDay(today time.Time) bool {
	if SameCalendarDay(a.LastDailyReset, today) {
		return false
	}

	a.DailyWithdrawn = decimal.Zero
	a.LastDailyReset = CalendarDay(today)
	return true
}

// WithinDailyLimit reports whether a further debit of amount would keep the
// account inside its daily withdrawal+transfer-out ceiling.
func (a *Account) WithinDailyLimit(amount decimal.Decimal) bool {
	return a.DailyWithdrawn.Add(amount).LessThanOrEqual(a.DailyLimit)
}

// RegisterDebitForDay adds a committed debit to the current day's total.
func (a *Account) RegisterDebitForDay(amount decimal.Decimal) {
	a.DailyWithdrawn = a.DailyWithdrawn.Add(amount)
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// Helper functions

// IsValidAccountType checks if the account type is valid
func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeFixed, AccountTypeBusiness:
		return true
	default:
		return false
	}
}

// CalendarDay truncates a timestamp to midnight UTC, the granularity used
// for daily-limit resets and interest accrual.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameCalendarDay reports whether two timestamps fall on the same UTC date.
func SameCalendarDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}

// DaysBetween returns the number of whole days from a to b, negative when b
// precedes a.
func DaysBetween(a, b time.Time) int64 {
	return int64(CalendarDay(b).Sub(CalendarDay(a)).Hours() / 24)
}

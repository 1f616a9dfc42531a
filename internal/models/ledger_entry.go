package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EntryTypeOpen        = "OPEN"
	EntryTypeDeposit     = "DEPOSIT"
	EntryTypeWithdraw    = "WITHDRAW"
	EntryTypeTransferIn  = "TRANSFER_IN"
	EntryTypeTransferOut = "TRANSFER_OUT"
	EntryTypeInterest    = "INTEREST"
	EntryTypeReversal    = "REVERSAL"
)

var (
	ErrInvalidEntryType = errors.New("invalid ledger entry type")
	ErrInvalidAmount    = errors.New("entry amount must be positive")
)

// LedgerEntry is one immutable record in an account's append-only
// transaction log. Ids come from a single monotonically increasing sequence
// and are never reused; the log for an account is strictly id- and
// timestamp-increasing. Amounts are positive except for REVERSAL entries,
// which carry the negated amount of the entry they undo.
type LedgerEntry struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountNo int64           `gorm:"not null;index" json:"account_no"`
	EntryType string          `gorm:"type:varchar(20);not null;index" json:"entry_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Memo      string          `gorm:"type:text" json:"memo"`
	Timestamp time.Time       `gorm:"not null;index" json:"timestamp"`
	ReverseOf int64           `gorm:"not null;default:0" json:"reverse_of,omitempty"`

	// ScheduleID links an entry produced by a scheduled transaction back to
	// its schedule; 0 for entries recorded directly.
	ScheduleID int64 `gorm:"not null;default:0;index" json:"schedule_id,omitempty"`

	// Adjustment marks administrative balance corrections. They share the
	// DEPOSIT/WITHDRAW entry types but are excluded from customer volume
	// totals and cannot be reversed.
	Adjustment bool `gorm:"not null" json:"adjustment,omitempty"`
}

// BeforeCreate hook for LedgerEntry
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e.Validate()
}

// Validate validates the entry fields
func (e *LedgerEntry) Validate() error {
	if e.AccountNo <= 0 {
		return errors.New("account number is required")
	}

	if !IsValidEntryType(e.EntryType) {
		return ErrInvalidEntryType
	}

	if e.EntryType == EntryTypeReversal {
		if e.ReverseOf <= 0 {
			return errors.New("reversal entry must reference the entry it undoes")
		}
		return nil
	}

	if e.ReverseOf != 0 {
		return fmt.Errorf("%s entry cannot carry a reversal reference", e.EntryType)
	}

	// OPEN records the initial deposit, which may legitimately be zero.
	if e.EntryType == EntryTypeOpen {
		if e.Amount.LessThan(decimal.Zero) {
			return ErrInvalidAmount
		}
		return nil
	}

	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// IsCredit returns true for entry types that increased the balance
func (e *LedgerEntry) IsCredit() bool {
	switch e.EntryType {
	case EntryTypeOpen, EntryTypeDeposit, EntryTypeTransferIn, EntryTypeInterest:
		return true
	default:
		return false
	}
}

// IsDebit returns true for entry types that decreased the balance
func (e *LedgerEntry) IsDebit() bool {
	switch e.EntryType {
	case EntryTypeWithdraw, EntryTypeTransferOut:
		return true
	default:
		return false
	}
}

// IsReversal returns true if the entry itself undoes another entry
func (e *LedgerEntry) IsReversal() bool {
	return e.EntryType == EntryTypeReversal || e.ReverseOf != 0
}

// String renders the entry the way statements display it
func (e *LedgerEntry) String() string {
	return fmt.Sprintf("[%s] %s %s - %s (entry:%d)",
		e.Timestamp.Format("2006-01-02 15:04"), e.EntryType, e.Amount.StringFixed(2), e.Memo, e.ID)
}

// TableName returns the table name for LedgerEntry
func (e *LedgerEntry) TableName() string {
	return "ledger_entries"
}

// IsValidEntryType checks if the entry type is valid
func IsValidEntryType(entryType string) bool {
	switch entryType {
	case EntryTypeOpen, EntryTypeDeposit, EntryTypeWithdraw, EntryTypeTransferIn,
		EntryTypeTransferOut, EntryTypeInterest, EntryTypeReversal:
		return true
	default:
		return false
	}
}

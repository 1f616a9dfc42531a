package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryFilters contains filtering options for ledger entry queries. Results
// are always returned oldest first, as stored.
type EntryFilters struct {
	AccountNo int64
	StartDate *time.Time
	EndDate   *time.Time
	EntryType string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Limit     int
	Offset    int
}

// AccountFilters contains filtering options for admin account queries
type AccountFilters struct {
	HolderName  string
	AccountType string
	Active      *bool
	Locked      *bool
}

// LedgerStats aggregates system-wide account figures for the admin surface
type LedgerStats struct {
	TotalAccounts  int64           `json:"total_accounts"`
	ActiveAccounts int64           `json:"active_accounts"`
	LockedAccounts int64           `json:"locked_accounts"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
}

// AccountTotals aggregates an account's lifetime credit and debit volume
type AccountTotals struct {
	Credits      int64           `json:"credits"`
	Debits       int64           `json:"debits"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
}

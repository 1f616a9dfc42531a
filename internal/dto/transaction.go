package dto

import (
	"bankledger/internal/models"
)

// Transaction Request DTOs

// AmountRequest represents the request payload for deposits and withdrawals
type AmountRequest struct {
	Amount string `json:"amount" validate:"required"`
	Memo   string `json:"memo" validate:"max=255"`
}

// TransferRequest represents the request payload for transferring funds
// between two accounts
type TransferRequest struct {
	ToAccount int64  `json:"to_account" validate:"required,gt=0"`
	Amount    string `json:"amount" validate:"required"`
}

// EntryFiltersQuery contains filtering options for log queries
type EntryFiltersQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	EntryType string `query:"entry_type" validate:"omitempty,entry_type"`
	MinAmount string `query:"min_amount"`
	MaxAmount string `query:"max_amount"`
	Offset    int    `query:"offset"`
	Limit     int    `query:"limit"`
}

// Transaction Response DTOs

// EntryResponse represents the response after a balance-changing operation
type EntryResponse struct {
	Entry   *models.LedgerEntry `json:"entry"`
	Balance string              `json:"balance"`
	Message string              `json:"message"`
}

// TransferResponse represents the response after a successful transfer
type TransferResponse struct {
	DebitEntry  *models.LedgerEntry `json:"debit_entry"`
	CreditEntry *models.LedgerEntry `json:"credit_entry"`
	Message     string              `json:"message"`
}

// EntryListResponse represents a paginated list of ledger entries
type EntryListResponse struct {
	Entries []models.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
}

// TotalsResponse represents lifetime credit and debit totals for an account
type TotalsResponse struct {
	AccountNo int64                 `json:"account_no"`
	Totals    *models.AccountTotals `json:"totals"`
}

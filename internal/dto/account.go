package dto

import (
	"bankledger/internal/models"
)

// Account Request DTOs

// CreateAccountRequest represents the request payload for opening a new account
type CreateAccountRequest struct {
	HolderName     string `json:"holder_name" validate:"required,min=1,max=255"`
	AccountType    string `json:"account_type" validate:"required,account_type"`
	OpeningBalance string `json:"opening_balance" validate:"omitempty"`
}

// SetPinRequest represents the request payload for setting an account PIN
type SetPinRequest struct {
	Pin string `json:"pin" validate:"required,numeric,len=4"`
}

// VerifyPinRequest represents the request payload for verifying an account PIN
type VerifyPinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// Account Response DTOs

// CreateAccountResponse represents the response after opening an account
type CreateAccountResponse struct {
	Account *models.Account `json:"account"`
	Message string          `json:"message"`
}

// AccountResponse represents a single account in API responses
type AccountResponse struct {
	*models.Account
}

// AccountListResponse represents a paginated list of accounts
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int64            `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// StatementResponse represents an account with its full transaction log and
// running totals
type StatementResponse struct {
	Account *models.Account       `json:"account"`
	Entries []models.LedgerEntry  `json:"entries"`
	Totals  *models.AccountTotals `json:"totals"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

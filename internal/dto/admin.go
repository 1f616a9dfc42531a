package dto

import (
	"bankledger/internal/models"
)

// Admin Request DTOs

// AdjustBalanceRequest represents the administrative balance correction payload
type AdjustBalanceRequest struct {
	NewBalance string `json:"new_balance" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=1,max=255"`
}

// SetDailyLimitRequest represents the payload for changing a daily ceiling
type SetDailyLimitRequest struct {
	DailyLimit string `json:"daily_limit" validate:"required"`
}

// SetActiveRequest represents the payload for freezing or unfreezing an account
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetLockedRequest represents the payload for locking or unlocking an account
type SetLockedRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// Admin Response DTOs

// StatsResponse represents store-wide ledger statistics
type StatsResponse struct {
	Stats *models.LedgerStats `json:"stats"`
}

// InterestSweepResponse represents the outcome of an interest sweep
type InterestSweepResponse struct {
	AccountsCredited int    `json:"accounts_credited"`
	Message          string `json:"message"`
}

// AuditLogListResponse represents a paginated list of audit records
type AuditLogListResponse struct {
	Logs   []*models.AuditLog `json:"logs"`
	Total  int64              `json:"total"`
	Offset int                `json:"offset"`
	Limit  int                `json:"limit"`
}

package dto

import (
	"bankledger/internal/models"
)

// Schedule Request DTOs

// ScheduleRequest represents the request payload for scheduling a future
// transaction. The scheduled date uses the 2006-01-02 layout.
type ScheduleRequest struct {
	Kind          string `json:"kind" validate:"required,schedule_kind"`
	ToAccount     int64  `json:"to_account" validate:"omitempty,gt=0"`
	Amount        string `json:"amount" validate:"required"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
	Memo          string `json:"memo" validate:"max=255"`
}

// Schedule Response DTOs

// ScheduleResponse represents a single scheduled transaction
type ScheduleResponse struct {
	Schedule *models.ScheduledTransaction `json:"schedule"`
	Message  string                       `json:"message,omitempty"`
}

// ScheduleListResponse represents the pending schedules for an account
type ScheduleListResponse struct {
	Schedules []*models.ScheduledTransaction `json:"schedules"`
	Total     int                            `json:"total"`
}

// RunDueResponse represents the outcome of a scheduler sweep
type RunDueResponse struct {
	Executed int    `json:"executed"`
	Failed   int    `json:"failed"`
	Message  string `json:"message"`
}

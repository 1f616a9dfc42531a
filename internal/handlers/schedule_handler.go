package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/models"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
)

// ScheduleHandler handles scheduled transaction HTTP requests
type ScheduleHandler struct {
	schedulerService services.SchedulerServiceInterface
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedulerService services.SchedulerServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{
		schedulerService: schedulerService,
	}
}

// CreateSchedule records a future transaction for the account.
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount, errors.WithDetails("Invalid amount format"))
	}

	scheduledDate, err := time.ParseInLocation(scheduleDateLayout, req.ScheduledDate, time.UTC)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("Expected scheduled_date as YYYY-MM-DD"))
	}

	sched := &models.ScheduledTransaction{
		FromAccount:   accountNo,
		ToAccount:     req.ToAccount,
		Amount:        amount,
		ScheduledDate: scheduledDate,
		Kind:          req.Kind,
		Memo:          req.Memo,
	}

	if err := h.schedulerService.Schedule(sched); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ScheduleResponse{
		Schedule: sched,
		Message:  "Transaction scheduled",
	})
}

// ListSchedules returns the account's pending schedules, soonest first.
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	schedules, err := h.schedulerService.ListPending(accountNo)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ScheduleListResponse{
		Schedules: schedules,
		Total:     len(schedules),
	})
}

// GetSchedule retrieves one scheduled transaction, pending or executed.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("scheduleId"), 10, 64)
	if err != nil || id <= 0 {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid schedule id"))
	}

	sched, err := h.schedulerService.Get(id)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ScheduleResponse{Schedule: sched})
}

// CancelSchedule removes a pending schedule. Executed entries are history.
func (h *ScheduleHandler) CancelSchedule(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("scheduleId"), 10, 64)
	if err != nil || id <= 0 {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid schedule id"))
	}

	if err := h.schedulerService.Cancel(id); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Schedule cancelled"})
}

// RunDue triggers an immediate sweep of due schedules.
func (h *ScheduleHandler) RunDue(c echo.Context) error {
	var accountNo int64
	if raw := c.QueryParam("account_no"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return SendError(c, errors.AccountInvalidNumber)
		}
		accountNo = parsed
	}

	executed, failed, err := h.schedulerService.RunDue(time.Now(), accountNo)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.RunDueResponse{
		Executed: executed,
		Failed:   failed,
		Message:  "Scheduler sweep completed",
	})
}

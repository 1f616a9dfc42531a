package handlers

import (
	"net/http"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandler handles administrative HTTP requests
type AdminHandler struct {
	ledgerService services.LedgerServiceInterface
	accountRepo   repositories.AccountRepositoryInterface
	auditRepo     repositories.AuditLogRepositoryInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	ledgerService services.LedgerServiceInterface,
	accountRepo repositories.AccountRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
		accountRepo:   accountRepo,
		auditRepo:     auditRepo,
	}
}

// GetStats returns store-wide ledger statistics.
func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.ledgerService.GetStats()
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.StatsResponse{Stats: stats})
}

// AdjustBalance sets an account balance to an explicit value, recording the
// delta in the log.
func (h *AdminHandler) AdjustBalance(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.AdjustBalanceRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	newBalance, err := parseAmount(req.NewBalance)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount, errors.WithDetails("Invalid balance format"))
	}

	account, err := h.ledgerService.AdjustBalance(accountNo, newBalance, req.Reason)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// SetDailyLimit changes an account's daily withdrawal ceiling.
func (h *AdminHandler) SetDailyLimit(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.SetDailyLimitRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	limit, err := parseAmount(req.DailyLimit)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid limit format"))
	}

	account, err := h.ledgerService.SetDailyLimit(accountNo, limit)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// SetActive freezes or unfreezes an account.
func (h *AdminHandler) SetActive(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	account, err := h.ledgerService.SetActive(accountNo, *req.Active)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// SetLocked locks or unlocks an account.
func (h *AdminHandler) SetLocked(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.SetLockedRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	account, err := h.ledgerService.SetLocked(accountNo, *req.Locked)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// RunInterestSweep posts due interest across all accounts.
func (h *AdminHandler) RunInterestSweep(c echo.Context) error {
	applied, err := h.ledgerService.ApplyInterestToAll()
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.InterestSweepResponse{
		AccountsCredited: applied,
		Message:          "Interest sweep completed",
	})
}

// ValidateStore re-validates every stored account and log entry, surfacing
// corrupt records.
func (h *AdminHandler) ValidateStore(c echo.Context) error {
	if err := h.accountRepo.ValidateStoredAccounts(); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Store validated"})
}

// GetAuditLogs returns the audit trail for one account.
func (h *AdminHandler) GetAuditLogs(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	offset, limit := parsePagination(c)
	logs, total, err := h.auditRepo.GetByAccountNo(accountNo, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AuditLogListResponse{
		Logs:   logs,
		Total:  total,
		Offset: offset,
		Limit:  limit,
	})
}

package handlers

import (
	"net/http"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/models"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	ledgerService services.LedgerServiceInterface
	pinService    services.PinServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledgerService services.LedgerServiceInterface, pinService services.PinServiceInterface) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
		pinService:    pinService,
	}
}

// CreateAccount opens a new account with an optional opening balance.
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	openingBalance := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		openingBalance, err = parseAmount(req.OpeningBalance)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid opening balance"))
		}
	}

	account, err := h.ledgerService.CreateAccount(req.HolderName, req.AccountType, openingBalance)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.CreateAccountResponse{
		Account: account,
		Message: "Account created successfully",
	})
}

// GetAccount retrieves one account by its number.
func (h *AccountHandler) GetAccount(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.ledgerService.GetAccount(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// ListAccounts retrieves accounts with optional filters and pagination.
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	offset, limit := parsePagination(c)

	filters := models.AccountFilters{
		HolderName:  c.QueryParam("holder_name"),
		AccountType: c.QueryParam("account_type"),
	}
	if raw := c.QueryParam("active"); raw != "" {
		active := raw == "true"
		filters.Active = &active
	}
	if raw := c.QueryParam("locked"); raw != "" {
		locked := raw == "true"
		filters.Locked = &locked
	}

	accounts, total, err := h.ledgerService.GetAccounts(filters, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	})
}

// SearchAccounts searches accounts by holder name.
func (h *AccountHandler) SearchAccounts(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails("Query parameter 'q' is required"))
	}

	offset, limit := parsePagination(c)
	accounts, total, err := h.ledgerService.SearchAccounts(query, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	})
}

// CloseAccount soft deletes an account; its number stays reserved.
func (h *AccountHandler) CloseAccount(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	if err := h.ledgerService.CloseAccount(accountNo); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account closed"})
}

// GetStatement returns the account with its full log and totals.
func (h *AccountHandler) GetStatement(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.ledgerService.GetAccount(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	entries, _, err := h.ledgerService.GetEntries(models.EntryFilters{AccountNo: accountNo, Limit: maxPageLimit * 10})
	if err != nil {
		return SendSystemError(c, err)
	}

	totals, err := h.ledgerService.GetTotals(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.StatementResponse{
		Account: account,
		Entries: entries,
		Totals:  totals,
	})
}

// GetTotals returns lifetime credit and debit totals for an account.
func (h *AccountHandler) GetTotals(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	totals, err := h.ledgerService.GetTotals(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TotalsResponse{
		AccountNo: accountNo,
		Totals:    totals,
	})
}

// SetPin sets or replaces the account PIN.
func (h *AccountHandler) SetPin(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.SetPinRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if err := h.pinService.SetPin(accountNo, req.Pin); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "PIN updated"})
}

// VerifyPin checks the supplied PIN. Repeated failures lock the account.
func (h *AccountHandler) VerifyPin(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.VerifyPinRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if err := h.pinService.VerifyPin(accountNo, req.Pin); err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "PIN verified"})
}

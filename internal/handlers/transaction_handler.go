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

// TransactionHandler handles balance-changing HTTP requests
type TransactionHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService services.LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// amountReject carries the taxonomy code for a request bindAmount refused.
// The caller sends it and returns; bindAmount never writes the response
// itself, so a rejected request gets exactly one error body.
type amountReject struct {
	code errors.ErrorCode
	opts []errors.ErrorOption
}

func (h *TransactionHandler) bindAmount(c echo.Context) (int64, decimal.Decimal, string, *amountReject) {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return 0, decimal.Zero, "", &amountReject{code: errors.AccountInvalidNumber}
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return 0, decimal.Zero, "", &amountReject{
			code: errors.ValidationGeneral,
			opts: []errors.ErrorOption{errors.WithDetails("Invalid request body")},
		}
	}
	if err := c.Validate(req); err != nil {
		return 0, decimal.Zero, "", &amountReject{
			code: errors.ValidationGeneral,
			opts: []errors.ErrorOption{errors.WithDetails(err.Error())},
		}
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return 0, decimal.Zero, "", &amountReject{
			code: errors.TransactionInvalidAmount,
			opts: []errors.ErrorOption{errors.WithDetails("Invalid amount format")},
		}
	}

	return accountNo, amount, req.Memo, nil
}

// Deposit credits an account.
func (h *TransactionHandler) Deposit(c echo.Context) error {
	accountNo, amount, memo, reject := h.bindAmount(c)
	if reject != nil {
		return SendError(c, reject.code, reject.opts...)
	}

	entry, err := h.ledgerService.Deposit(accountNo, amount, memo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return h.entryResponse(c, entry, "Deposit recorded")
}

// Withdraw debits an account within its balance and daily ceiling.
func (h *TransactionHandler) Withdraw(c echo.Context) error {
	accountNo, amount, memo, reject := h.bindAmount(c)
	if reject != nil {
		return SendError(c, reject.code, reject.opts...)
	}

	entry, err := h.ledgerService.Withdraw(accountNo, amount, memo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return h.entryResponse(c, entry, "Withdrawal recorded")
}

// Transfer atomically moves funds between two accounts.
func (h *TransactionHandler) Transfer(c echo.Context) error {
	fromAccount, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.TransferRequest
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

	debit, credit, err := h.ledgerService.Transfer(fromAccount, req.ToAccount, amount)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransferResponse{
		DebitEntry:  debit,
		CreditEntry: credit,
		Message:     "Transfer completed",
	})
}

// ReverseLast undoes the most recent entry on the account.
func (h *TransactionHandler) ReverseLast(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	entry, err := h.ledgerService.ReverseLast(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return h.entryResponse(c, entry, "Entry reversed")
}

// ApplyInterest posts any due interest to one account.
func (h *TransactionHandler) ApplyInterest(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	entry, err := h.ledgerService.ApplyInterestIfDue(accountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}
	if entry == nil {
		return c.JSON(http.StatusOK, dto.MessageResponse{Message: "No interest due"})
	}

	return h.entryResponse(c, entry, "Interest applied")
}

// ListEntries returns the account's log, filtered and paginated.
func (h *TransactionHandler) ListEntries(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	if _, err := h.ledgerService.GetAccount(accountNo); err != nil {
		return sendLedgerError(c, err)
	}

	var query dto.EntryFiltersQuery
	if err := c.Bind(&query); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}
	if err := c.Validate(query); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	filters, err := buildEntryFilters(accountNo, query)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails(err.Error()))
	}

	entries, total, err := h.ledgerService.GetEntries(filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.EntryListResponse{
		Entries: entries,
		Total:   total,
		Offset:  filters.Offset,
		Limit:   filters.Limit,
	})
}

// RecentEntries returns the chronological tail of the account's log.
func (h *TransactionHandler) RecentEntries(c echo.Context) error {
	accountNo, err := parseAccountNo(c)
	if err != nil {
		return SendError(c, errors.AccountInvalidNumber)
	}

	_, limit := parsePagination(c)
	entries, err := h.ledgerService.GetRecentEntries(accountNo, limit)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.EntryListResponse{
		Entries: entries,
		Total:   int64(len(entries)),
		Limit:   limit,
	})
}

// entryResponse re-reads the balance so the response reflects the committed
// state.
func (h *TransactionHandler) entryResponse(c echo.Context, entry *models.LedgerEntry, message string) error {
	account, err := h.ledgerService.GetAccount(entry.AccountNo)
	if err != nil {
		return sendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.EntryResponse{
		Entry:   entry,
		Balance: account.Balance.StringFixed(2),
		Message: message,
	})
}

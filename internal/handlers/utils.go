package handlers

import (
	goerrors "errors"
	"strconv"
	"time"

	"bankledger/internal/dto"
	"bankledger/internal/errors"
	"bankledger/internal/models"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	scheduleDateLayout = "2006-01-02"
)

// parseAccountNo reads and validates the accountNo path parameter
func parseAccountNo(c echo.Context) (int64, error) {
	accountNo, err := strconv.ParseInt(c.Param("accountNo"), 10, 64)
	if err != nil || accountNo <= 0 {
		return 0, goerrors.New("invalid account number")
	}
	return accountNo, nil
}

// parseAmount parses a positive fixed-point amount from its string form
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, goerrors.New("invalid amount format")
	}
	return amount, nil
}

// parsePagination reads offset/limit query parameters with sane bounds
func parsePagination(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return offset, limit
}

// buildEntryFilters converts the query DTO into repository filters
func buildEntryFilters(accountNo int64, query dto.EntryFiltersQuery) (models.EntryFilters, error) {
	filters := models.EntryFilters{
		AccountNo: accountNo,
		EntryType: query.EntryType,
		Offset:    query.Offset,
		Limit:     query.Limit,
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultPageLimit
	}
	if filters.Limit > maxPageLimit {
		filters.Limit = maxPageLimit
	}

	if query.StartDate != "" {
		start, err := time.Parse(time.RFC3339, query.StartDate)
		if err != nil {
			return filters, goerrors.New("invalid start_date, expected RFC3339")
		}
		filters.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse(time.RFC3339, query.EndDate)
		if err != nil {
			return filters, goerrors.New("invalid end_date, expected RFC3339")
		}
		filters.EndDate = &end
	}
	if query.MinAmount != "" {
		min, err := parseAmount(query.MinAmount)
		if err != nil {
			return filters, goerrors.New("invalid min_amount")
		}
		filters.MinAmount = &min
	}
	if query.MaxAmount != "" {
		max, err := parseAmount(query.MaxAmount)
		if err != nil {
			return filters, goerrors.New("invalid max_amount")
		}
		filters.MaxAmount = &max
	}

	return filters, nil
}

// sendLedgerError translates service and repository sentinels into the
// error taxonomy; anything unrecognized becomes a system error.
func sendLedgerError(c echo.Context, err error) error {
	switch {
	case goerrors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	case goerrors.Is(err, models.ErrAccountInactive):
		return SendError(c, errors.AccountInactive)
	case goerrors.Is(err, models.ErrAccountLocked):
		return SendError(c, errors.AccountLocked)
	case goerrors.Is(err, models.ErrInvalidAccountType):
		return SendError(c, errors.AccountInvalidType)
	case goerrors.Is(err, models.ErrInvalidAmount), goerrors.Is(err, models.ErrInvalidBalance):
		return SendError(c, errors.TransactionInvalidAmount, errors.WithDetails(err.Error()))
	case goerrors.Is(err, models.ErrInsufficientFunds):
		return SendError(c, errors.TransactionInsufficientBalance)
	case goerrors.Is(err, services.ErrDailyLimitExceeded):
		return SendError(c, errors.TransactionDailyLimitExceeded)
	case goerrors.Is(err, services.ErrSameAccountTransfer):
		return SendError(c, errors.TransactionSameAccountTransfer)
	case goerrors.Is(err, services.ErrInvalidDailyLimit):
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	case goerrors.Is(err, services.ErrNothingToReverse):
		return SendError(c, errors.ReversalNothingToReverse)
	case goerrors.Is(err, services.ErrReverseOpeningEntry):
		return SendError(c, errors.ReversalOpeningEntry)
	case goerrors.Is(err, services.ErrAlreadyReversed):
		return SendError(c, errors.ReversalAlreadyReversed)
	case goerrors.Is(err, services.ErrReversalWindowExpired):
		return SendError(c, errors.ReversalWindowExpired)
	case goerrors.Is(err, services.ErrReversalInsufficientBalance):
		return SendError(c, errors.ReversalInsufficientBalance)
	case goerrors.Is(err, services.ErrUnsupportedReversalType),
		goerrors.Is(err, services.ErrReverseAdjustment):
		return SendError(c, errors.ReversalUnsupportedType, errors.WithDetails(err.Error()))
	case goerrors.Is(err, repositories.ErrScheduleNotFound):
		return SendError(c, errors.ScheduleNotFound)
	case goerrors.Is(err, repositories.ErrScheduleNotPending),
		goerrors.Is(err, repositories.ErrScheduleAlreadyDone),
		goerrors.Is(err, models.ErrScheduleExecuted):
		return SendError(c, errors.ScheduleAlreadyExecuted)
	case goerrors.Is(err, models.ErrScheduleDateInPast):
		return SendError(c, errors.ScheduleDateInPast)
	case goerrors.Is(err, models.ErrInvalidScheduleKind):
		return SendError(c, errors.ScheduleInvalidKind)
	case goerrors.Is(err, services.ErrPinNotSet),
		goerrors.Is(err, services.ErrPinMismatch),
		goerrors.Is(err, services.ErrPinNotNumeric):
		return SendError(c, errors.AccountInvalidPin, errors.WithDetails(err.Error()))
	case goerrors.Is(err, repositories.ErrEntryNotFound):
		return SendError(c, errors.ReversalNothingToReverse)
	case goerrors.Is(err, repositories.ErrCorruptRecord):
		return SendError(c, errors.StorageCorruptRecord, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}

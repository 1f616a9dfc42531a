package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound      ErrorCode = "ACCOUNT_001"
	AccountInactive      ErrorCode = "ACCOUNT_002"
	AccountLocked        ErrorCode = "ACCOUNT_003"
	AccountInvalidNumber ErrorCode = "ACCOUNT_004"
	AccountInvalidType   ErrorCode = "ACCOUNT_005"
	AccountInvalidPin    ErrorCode = "ACCOUNT_006"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionInvalidAmount       ErrorCode = "TRANSACTION_001"
	TransactionInsufficientBalance ErrorCode = "TRANSACTION_002"
	TransactionDailyLimitExceeded  ErrorCode = "TRANSACTION_003"
	TransactionSameAccountTransfer ErrorCode = "TRANSACTION_004"
)

// Reversal error codes (REVERSAL_*)
const (
	ReversalNothingToReverse    ErrorCode = "REVERSAL_001"
	ReversalOpeningEntry        ErrorCode = "REVERSAL_002"
	ReversalAlreadyReversed     ErrorCode = "REVERSAL_003"
	ReversalWindowExpired       ErrorCode = "REVERSAL_004"
	ReversalInsufficientBalance ErrorCode = "REVERSAL_005"
	ReversalUnsupportedType     ErrorCode = "REVERSAL_006"
)

// Scheduled transaction error codes (SCHEDULE_*)
const (
	ScheduleNotFound        ErrorCode = "SCHEDULE_001"
	ScheduleInvalidKind     ErrorCode = "SCHEDULE_002"
	ScheduleAlreadyExecuted ErrorCode = "SCHEDULE_003"
	ScheduleDateInPast      ErrorCode = "SCHEDULE_004"
)

// Storage error codes (STORAGE_*)
const (
	StorageCorruptRecord ErrorCode = "STORAGE_001"
	StorageIOFailure     ErrorCode = "STORAGE_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationInvalidDate:   "Invalid date format or range",

	// Account errors
	AccountNotFound:      "Account not found",
	AccountInactive:      "Account is inactive",
	AccountLocked:        "Account is locked",
	AccountInvalidNumber: "Invalid account number",
	AccountInvalidType:   "Invalid account type",
	AccountInvalidPin:    "Incorrect PIN",

	// Transaction errors
	TransactionInvalidAmount:       "Transaction amount must be positive",
	TransactionInsufficientBalance: "Insufficient account balance",
	TransactionDailyLimitExceeded:  "Daily withdrawal limit exceeded",
	TransactionSameAccountTransfer: "Cannot transfer to the same account",

	// Reversal errors
	ReversalNothingToReverse:    "No transaction available to reverse",
	ReversalOpeningEntry:        "The opening entry cannot be reversed",
	ReversalAlreadyReversed:     "Transaction has already been reversed",
	ReversalWindowExpired:       "Reversal window has expired",
	ReversalInsufficientBalance: "Insufficient balance to undo this credit",
	ReversalUnsupportedType:     "This entry cannot be reversed",

	// Scheduled transaction errors
	ScheduleNotFound:        "Scheduled transaction not found",
	ScheduleInvalidKind:     "Invalid scheduled transaction kind",
	ScheduleAlreadyExecuted: "Scheduled transaction has already executed",
	ScheduleDateInPast:      "Scheduled date cannot be in the past",

	// Storage errors
	StorageCorruptRecord: "Stored ledger data failed validation",
	StorageIOFailure:     "Ledger storage is unavailable",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}

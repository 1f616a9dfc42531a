package validation

import (
	"reflect"
	"strings"

	"bankledger/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("account_type", validateAccountType)
	_ = v.RegisterValidation("entry_type", validateEntryType)
	_ = v.RegisterValidation("schedule_kind", validateScheduleKind)
	_ = v.RegisterValidation("money", validateMoney)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateAccountType validates that account type is one of the allowed types
func validateAccountType(fl validator.FieldLevel) bool {
	return models.IsValidAccountType(fl.Field().String())
}

// validateEntryType validates that entry type is in the ledger's type set
func validateEntryType(fl validator.FieldLevel) bool {
	return models.IsValidEntryType(fl.Field().String())
}

// validateScheduleKind validates that the kind is in the unified kind set
func validateScheduleKind(fl validator.FieldLevel) bool {
	return models.IsValidScheduleKind(fl.Field().String())
}

// validateMoney validates that a string amount parses as a non-negative
// fixed-point value with at most 2 decimal places
func validateMoney(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	return !amount.IsNegative() && amount.Exponent() >= -2
}

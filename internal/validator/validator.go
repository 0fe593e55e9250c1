// Package validator provides custom validation functions for Gin's binding
// engine and for standalone struct validation (CSV rows).
package validator

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cashbook/internal/ledger"
	"cashbook/internal/models"
)

var validations = map[string]validator.Func{
	"cash_type":       validateCashType,
	"loan_type":       validateLoanType,
	"reminder":        validateReminder,
	"date_range":      validateDateRange,
	"entry_type":      validateEntryType,
	"loan_entry_type": validateLoanEntryType,
	"calendar_date":   validateCalendarDate,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerAll(v)
	}
}

var (
	standalone     *validator.Validate
	standaloneOnce sync.Once
)

// New returns a shared validator with the custom tags registered, for use
// outside of Gin request binding.
func New() *validator.Validate {
	standaloneOnce.Do(func() {
		standalone = validator.New(validator.WithRequiredStructEnabled())
		registerAll(standalone)
	})
	return standalone
}

func registerAll(v *validator.Validate) {
	for tag, fn := range validations {
		_ = v.RegisterValidation(tag, fn)
	}
}

func validateCashType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateLoanType(fl validator.FieldLevel) bool {
	return models.LoanType(fl.Field().String()).Valid()
}

func validateReminder(fl validator.FieldLevel) bool {
	return models.Reminder(fl.Field().String()).Valid()
}

func validateDateRange(fl validator.FieldLevel) bool {
	_, err := ledger.ParseDateRange(fl.Field().String())
	return err == nil
}

func validateEntryType(fl validator.FieldLevel) bool {
	return ledger.ValidCashEntryType(fl.Field().String())
}

func validateLoanEntryType(fl validator.FieldLevel) bool {
	return ledger.ValidLoanEntryType(fl.Field().String())
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

// Package validate holds pure field coercers. Each function validates one
// input field into a typed value or returns a *FieldError, which the HTTP
// layer surfaces as a client-input failure.
package validate

import (
	"fmt"
	"time"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// FieldError identifies the offending field alongside the message.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MonthKey validates a yyyy-mm month key.
func MonthKey(field, value string) (string, error) {
	if value == "" {
		return "", fieldErr(field, "is required")
	}
	if _, err := time.Parse(model.MonthKeyLayout, value); err != nil {
		return "", fieldErr(field, "must be a yyyy-mm month key")
	}
	return value, nil
}

// Amount validates a non-negative amount.
func Amount(field string, value int64) (int64, error) {
	if value < 0 {
		return 0, fieldErr(field, "must not be negative")
	}
	return value, nil
}

// BillingDay validates a billing day in [1, 31].
func BillingDay(field string, value int) (int, error) {
	if value < 1 || value > 31 {
		return 0, fieldErr(field, "must be between 1 and 31")
	}
	return value, nil
}

// Kind coerces a transaction kind.
func Kind(field, value string) (model.TransactionKind, error) {
	switch model.TransactionKind(value) {
	case model.KindExpense, model.KindIncome:
		return model.TransactionKind(value), nil
	}
	return "", fieldErr(field, "must be one of expense, income")
}

// Recurrence coerces a recurrence value.
func Recurrence(field, value string) (model.Recurrence, error) {
	switch model.Recurrence(value) {
	case model.RecurrenceMonthly, model.RecurrenceYearly, model.RecurrenceOneTime:
		return model.Recurrence(value), nil
	}
	return "", fieldErr(field, "must be one of monthly, yearly, one_time")
}

// Date parses a yyyy-mm-dd date in the given location.
func Date(field, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fieldErr(field, "is required")
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fieldErr(field, "must be a yyyy-mm-dd date")
	}
	return t, nil
}

// Required validates a non-empty string.
func Required(field, value string) (string, error) {
	if value == "" {
		return "", fieldErr(field, "is required")
	}
	return value, nil
}

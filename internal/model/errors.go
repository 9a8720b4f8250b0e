package model

import "errors"

var (
	// Not-found errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrGoalFundNotFound    = errors.New("goal fund not found")
	ErrSnapshotNotFound    = errors.New("snapshot not found")

	// Settlement errors
	ErrSettlementExists = errors.New("settlement already exists for this month")
	ErrNoSettlement     = errors.New("no settlement found for this month")

	// Validation errors
	ErrInvalidAmount              = errors.New("amount must not be negative")
	ErrInvalidRecurrence          = errors.New("invalid recurrence")
	ErrInvalidKind                = errors.New("invalid transaction kind")
	ErrBillingDayRequired         = errors.New("billing day must be between 1 and 31 for recurring templates")
	ErrInvestmentCategoryRequired = errors.New("investment target category is required for investment transfers")
)

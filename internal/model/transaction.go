package model

import "time"

// TransactionKind distinguishes expense and income records. Both share the
// same record shape and reflection bookkeeping.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Recurrence describes how often a transaction repeats. Monthly recurring
// templates are materialized by the settlement job; yearly and one-time
// records can be reflected immediately on creation.
type Recurrence string

const (
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
	RecurrenceOneTime Recurrence = "one_time"
)

// EntrySource records how a transaction came into existence.
type EntrySource string

const (
	EntrySourceManual         EntrySource = "manual"
	EntrySourceAutoSettlement EntrySource = "auto_settlement"
)

// Transaction is a single expense or income record. Recurring templates are
// stored in the same collection with IsRecurringTemplate set; they are
// definitions, not ledger entries, and are never reflected directly.
//
// ReflectedAmount is the signed delta most recently pushed into the asset
// identified by ReflectedAssetID, zero when no reflection has been applied.
// It stores the intended delta, not the post-clamp effect, so that undo is
// always "apply the exact inverse". TransferredAmount holds the same
// invariant against InvestmentTargetAssetID.
type Transaction struct {
	ID          string          `json:"id" firestore:"id"`
	UserID      string          `json:"userId" firestore:"userId"`
	Kind        TransactionKind `json:"kind" firestore:"kind"`
	Description string          `json:"description" firestore:"description"`
	Category    string          `json:"category" firestore:"category"`
	Amount      int64           `json:"amount" firestore:"amount"`
	OccurredAt  time.Time       `json:"occurredAt" firestore:"occurredAt"`

	Recurrence          Recurrence `json:"recurrence" firestore:"recurrence"`
	BillingDay          int        `json:"billingDay,omitempty" firestore:"billingDay"`
	IsRecurringTemplate bool       `json:"isRecurringTemplate" firestore:"isRecurringTemplate"`
	IsFixed             bool       `json:"isFixed" firestore:"isFixed"`
	LinkedCardID        string     `json:"linkedCardId,omitempty" firestore:"linkedCardId"`

	EntrySource      EntrySource `json:"entrySource" firestore:"entrySource"`
	SourceTemplateID string      `json:"sourceTemplateId,omitempty" firestore:"sourceTemplateId"`
	SettledMonth     string      `json:"settledMonth,omitempty" firestore:"settledMonth"`

	ReflectToLiquidAsset bool       `json:"reflectToLiquidAsset" firestore:"reflectToLiquidAsset"`
	ReflectedAmount      int64      `json:"reflectedAmount" firestore:"reflectedAmount"`
	ReflectedAssetID     string     `json:"reflectedAssetId,omitempty" firestore:"reflectedAssetId"`
	ReflectedAt          *time.Time `json:"reflectedAt,omitempty" firestore:"reflectedAt"`

	IsInvestmentTransfer     bool   `json:"isInvestmentTransfer" firestore:"isInvestmentTransfer"`
	InvestmentTargetCategory string `json:"investmentTargetCategory,omitempty" firestore:"investmentTargetCategory"`
	InvestmentTargetAssetID  string `json:"investmentTargetAssetId,omitempty" firestore:"investmentTargetAssetId"`
	TransferredAmount        int64  `json:"transferredAmount" firestore:"transferredAmount"`

	GoalFundID string `json:"goalFundId,omitempty" firestore:"goalFundId"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// SignedAmount is the delta this transaction applies to a liquid balance
// when reflected: expenses drain, incomes add.
func (t *Transaction) SignedAmount() int64 {
	if t.Kind == KindExpense {
		return -t.Amount
	}
	return t.Amount
}

// IsReflected reports whether this record currently carries an applied
// reflection that would need reversing.
func (t *Transaction) IsReflected() bool {
	return t.ReflectedAmount != 0 || t.TransferredAmount != 0
}

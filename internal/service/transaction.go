package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
	"github.com/hyeonlab/moneyflow/backend/internal/store"
)

// CreateTransactionInput carries the caller-supplied fields for a new
// expense or income record.
type CreateTransactionInput struct {
	UserID                   string
	Kind                     model.TransactionKind
	Description              string
	Category                 string
	Amount                   int64
	OccurredAt               time.Time
	Recurrence               model.Recurrence
	BillingDay               int
	IsFixed                  bool
	LinkedCardID             string
	ReflectToLiquidAsset     bool
	IsInvestmentTransfer     bool
	InvestmentTargetCategory string
	GoalFundID               string
}

// UpdateTransactionInput is a sparse patch; nil fields are left unchanged.
type UpdateTransactionInput struct {
	Description              *string
	Category                 *string
	Amount                   *int64
	OccurredAt               *time.Time
	BillingDay               *int
	IsFixed                  *bool
	LinkedCardID             *string
	ReflectToLiquidAsset     *bool
	IsInvestmentTransfer     *bool
	InvestmentTargetCategory *string
	GoalFundID               *string
}

func validateTransaction(tx *model.Transaction) error {
	if tx.Amount < 0 {
		return model.ErrInvalidAmount
	}
	switch tx.Kind {
	case model.KindExpense, model.KindIncome:
	default:
		return model.ErrInvalidKind
	}
	switch tx.Recurrence {
	case model.RecurrenceMonthly, model.RecurrenceYearly, model.RecurrenceOneTime:
	default:
		return model.ErrInvalidRecurrence
	}
	if tx.IsRecurringTemplate && (tx.BillingDay < 1 || tx.BillingDay > 31) {
		return model.ErrBillingDayRequired
	}
	if tx.IsInvestmentTransfer && tx.InvestmentTargetCategory == "" {
		return model.ErrInvestmentCategoryRequired
	}
	return nil
}

// CreateTransaction validates and persists a record, then reflects it into
// balances when it is due. Monthly recurrence marks a recurring template,
// which is only ever reflected through settlement; yearly and one-time
// records due today-or-earlier are reflected immediately.
func (s *FinanceService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*model.Transaction, error) {
	now := s.now()
	tx := &model.Transaction{
		ID:                       uuid.New().String(),
		UserID:                   in.UserID,
		Kind:                     in.Kind,
		Description:              in.Description,
		Category:                 in.Category,
		Amount:                   in.Amount,
		OccurredAt:               in.OccurredAt,
		Recurrence:               in.Recurrence,
		BillingDay:               in.BillingDay,
		IsRecurringTemplate:      in.Recurrence == model.RecurrenceMonthly,
		IsFixed:                  in.IsFixed,
		LinkedCardID:             in.LinkedCardID,
		EntrySource:              model.EntrySourceManual,
		ReflectToLiquidAsset:     in.ReflectToLiquidAsset,
		IsInvestmentTransfer:     in.IsInvestmentTransfer,
		InvestmentTargetCategory: in.InvestmentTargetCategory,
		GoalFundID:               in.GoalFundID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if s.shouldReflect(tx) {
		if err := s.reflect(ctx, tx); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// shouldReflect gates immediate reflection: the record must opt in, must
// not be a recurring template, and its occurrence must be due.
func (s *FinanceService) shouldReflect(tx *model.Transaction) bool {
	return tx.ReflectToLiquidAsset && !tx.IsRecurringTemplate && s.isDue(tx.OccurredAt)
}

// reflect applies a transaction's monetary effect: signed amount onto the
// liquid asset and, for investment transfers, the amount onto the target
// asset, recording both assets' ids and the intended deltas back onto the
// record before persisting it. The goal-fund projection is synced last,
// best-effort.
func (s *FinanceService) reflect(ctx context.Context, tx *model.Transaction) error {
	liquid, err := s.ResolveLiquidAsset(ctx, tx.UserID, tx.ReflectedAssetID)
	if err != nil {
		return fmt.Errorf("failed to resolve liquid asset: %w", err)
	}

	applied, err := s.ApplyDelta(ctx, liquid, tx.SignedAmount())
	if err != nil {
		return err
	}
	if applied != nil {
		now := s.now()
		tx.ReflectedAmount = applied.AppliedDelta
		tx.ReflectedAssetID = applied.AssetID
		tx.ReflectedAt = &now
	}

	if tx.IsInvestmentTransfer {
		target, err := s.ResolveInvestmentTargetAsset(ctx, tx.UserID, tx.InvestmentTargetCategory, tx.InvestmentTargetAssetID)
		if err != nil {
			return fmt.Errorf("failed to resolve investment target: %w", err)
		}
		transferred, err := s.ApplyDelta(ctx, target, tx.Amount)
		if err != nil {
			return err
		}
		if transferred != nil {
			tx.TransferredAmount = transferred.AppliedDelta
			tx.InvestmentTargetAssetID = transferred.AssetID
		}
	}

	tx.UpdatedAt = s.now()
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to persist reflection state: %w", err)
	}

	s.syncGoalFundBestEffort(ctx, tx, model.MonthKeyOf(tx.OccurredAt.In(s.loc)), model.GoalFundLogAdd)
	return nil
}

// unreflect reverses whatever a record last pushed into balances: the exact
// inverse delta to each recorded asset, then clears the bookkeeping fields.
// The caller persists the transaction (or deletes it).
func (s *FinanceService) unreflect(ctx context.Context, tx *model.Transaction) error {
	wasReflected := tx.IsReflected()

	if tx.ReflectedAmount != 0 {
		asset, err := s.store.GetAsset(ctx, tx.ReflectedAssetID)
		if err != nil {
			return fmt.Errorf("failed to load reflected asset: %w", err)
		}
		if _, err := s.ApplyDelta(ctx, asset, -tx.ReflectedAmount); err != nil {
			return err
		}
		tx.ReflectedAmount = 0
		tx.ReflectedAssetID = ""
		tx.ReflectedAt = nil
	}

	if tx.TransferredAmount != 0 {
		target, err := s.store.GetAsset(ctx, tx.InvestmentTargetAssetID)
		if err != nil {
			return fmt.Errorf("failed to load investment target asset: %w", err)
		}
		if _, err := s.ApplyDelta(ctx, target, -tx.TransferredAmount); err != nil {
			return err
		}
		tx.TransferredAmount = 0
		tx.InvestmentTargetAssetID = ""
	}

	if wasReflected {
		s.syncGoalFundBestEffort(ctx, tx, model.MonthKeyOf(tx.OccurredAt.In(s.loc)), model.GoalFundLogRemove)
	}
	return nil
}

// GetTransaction returns a user's transaction record.
func (s *FinanceService) GetTransaction(ctx context.Context, userID, txID string) (*model.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, model.ErrTransactionNotFound
	}
	return tx, nil
}

// ListTransactions lists a user's records with optional filters.
func (s *FinanceService) ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	return s.store.ListTransactions(ctx, userID, filter, pageSize, pageToken)
}

// reflectionAffected reports whether a patch touches anything the applied
// reflection depends on, requiring the undo/redo cycle.
func reflectionAffected(in UpdateTransactionInput) bool {
	return in.Amount != nil ||
		in.OccurredAt != nil ||
		in.ReflectToLiquidAsset != nil ||
		in.IsInvestmentTransfer != nil ||
		in.InvestmentTargetCategory != nil ||
		in.GoalFundID != nil
}

func applyTransactionPatch(tx *model.Transaction, in UpdateTransactionInput) {
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.OccurredAt != nil {
		tx.OccurredAt = *in.OccurredAt
	}
	if in.BillingDay != nil {
		tx.BillingDay = *in.BillingDay
	}
	if in.IsFixed != nil {
		tx.IsFixed = *in.IsFixed
	}
	if in.LinkedCardID != nil {
		tx.LinkedCardID = *in.LinkedCardID
	}
	if in.ReflectToLiquidAsset != nil {
		tx.ReflectToLiquidAsset = *in.ReflectToLiquidAsset
	}
	if in.IsInvestmentTransfer != nil {
		tx.IsInvestmentTransfer = *in.IsInvestmentTransfer
	}
	if in.InvestmentTargetCategory != nil {
		tx.InvestmentTargetCategory = *in.InvestmentTargetCategory
	}
	if in.GoalFundID != nil {
		tx.GoalFundID = *in.GoalFundID
	}
}

// UpdateTransaction patches a record. When the patch changes the reflected
// amount or target, the old reflection is undone first (inverse delta to the
// old asset with the old amount) and the new one applied fresh; the same
// undo/redo covers the investment-transfer leg.
func (s *FinanceService) UpdateTransaction(ctx context.Context, userID, txID string, in UpdateTransactionInput) (*model.Transaction, error) {
	tx, err := s.GetTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}

	// Validate the patched result on a copy before touching balances: a
	// rejected patch must leave the record, its bookkeeping, and the asset
	// exactly as they were.
	preview := *tx
	applyTransactionPatch(&preview, in)
	if err := validateTransaction(&preview); err != nil {
		return nil, err
	}

	rereflect := reflectionAffected(in)
	if rereflect && tx.IsReflected() {
		if err := s.unreflect(ctx, tx); err != nil {
			return nil, err
		}
	}

	applyTransactionPatch(tx, in)
	tx.UpdatedAt = s.now()
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if rereflect && s.shouldReflect(tx) {
		if err := s.reflect(ctx, tx); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// DeleteTransaction reverses any outstanding reflected and transferred
// amounts, detaches the goal-fund contribution, then removes the record.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, txID string) error {
	tx, err := s.GetTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}

	if err := s.unreflect(ctx, tx); err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// Settle expands a user's monthly recurring templates into dated one-time
// transaction records for targetMonth and reflects the ones already due.
//
// The settlement marker is written first as a conditional insert-if-absent:
// the marker write itself is the idempotency gate, so a concurrent or
// repeated trigger gets ErrSettlementExists (a conflict, not a fault) before
// any other document is touched. Templates are then processed independently;
// one failing template is counted and logged, never aborting the batch.
func (s *FinanceService) Settle(ctx context.Context, userID, targetMonth string) (*model.SettlementResult, error) {
	if _, err := model.ParseMonthKey(targetMonth, s.loc); err != nil {
		return nil, err
	}

	marker := &model.SettlementMarker{
		ID:             model.SettlementMarkerID(userID, model.SettlementTypeRecurring, targetMonth),
		UserID:         userID,
		SettlementType: model.SettlementTypeRecurring,
		MonthKey:       targetMonth,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateSettlementMarker(ctx, marker); err != nil {
		return nil, err
	}

	templates, err := s.store.ListRecurringTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	result := &model.SettlementResult{TargetMonth: targetMonth}

	for _, tmpl := range templates {
		// Expense lines consolidated into a card payment settle through the
		// card's own template, not on their own.
		if tmpl.Kind == model.KindExpense && tmpl.LinkedCardID != "" {
			continue
		}

		if tmpl.BillingDay < 1 || tmpl.BillingDay > 31 {
			result.SkippedCount++
			continue
		}
		if tmpl.IsInvestmentTransfer && tmpl.InvestmentTargetCategory == "" {
			result.SkippedCount++
			continue
		}

		occurrence, err := model.OccurrenceDate(targetMonth, tmpl.BillingDay, s.loc)
		if err != nil {
			result.SkippedCount++
			continue
		}

		tx := s.materializeTemplate(tmpl, occurrence, targetMonth)
		if err := s.store.CreateTransaction(ctx, tx); err != nil {
			s.logger.Error().
				Err(err).
				Str("userId", userID).
				Str("templateId", tmpl.ID).
				Str("targetMonth", targetMonth).
				Msg("failed to materialize template")
			result.SkippedCount++
			continue
		}
		result.CreatedCount++

		if tx.ReflectToLiquidAsset && s.isDue(occurrence) {
			if err := s.reflect(ctx, tx); err != nil {
				s.logger.Error().
					Err(err).
					Str("userId", userID).
					Str("transactionId", tx.ID).
					Msg("failed to reflect settled transaction")
				continue
			}
			result.ReflectedCount++
			result.TotalSettledAmount += tmpl.Amount
		}
	}

	s.logger.Info().
		Str("userId", userID).
		Str("targetMonth", targetMonth).
		Int("created", result.CreatedCount).
		Int("skipped", result.SkippedCount).
		Int("reflected", result.ReflectedCount).
		Int64("totalSettledAmount", result.TotalSettledAmount).
		Msg("settlement completed")

	return result, nil
}

// materializeTemplate builds the one-time record a template settles into.
// The record carries its lineage (source template, settled month) so the
// rollback job can find and reverse it.
func (s *FinanceService) materializeTemplate(tmpl *model.Transaction, occurrence time.Time, targetMonth string) *model.Transaction {
	now := s.now()
	return &model.Transaction{
		ID:                       uuid.New().String(),
		UserID:                   tmpl.UserID,
		Kind:                     tmpl.Kind,
		Description:              tmpl.Description,
		Category:                 tmpl.Category,
		Amount:                   tmpl.Amount,
		OccurredAt:               occurrence,
		Recurrence:               model.RecurrenceOneTime,
		EntrySource:              model.EntrySourceAutoSettlement,
		SourceTemplateID:         tmpl.ID,
		SettledMonth:             targetMonth,
		ReflectToLiquidAsset:     tmpl.ReflectToLiquidAsset,
		IsInvestmentTransfer:     tmpl.IsInvestmentTransfer,
		InvestmentTargetCategory: tmpl.InvestmentTargetCategory,
		GoalFundID:               tmpl.GoalFundID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// SettleAllUsers runs the monthly settlement for every user owning at least
// one qualifying template, with the same per-user idempotency gate. Used by
// the month-boundary scheduled trigger; per-user conflicts and failures are
// counted, not propagated.
func (s *FinanceService) SettleAllUsers(ctx context.Context, targetMonth string) (*model.BatchSettlementResult, error) {
	if _, err := model.ParseMonthKey(targetMonth, s.loc); err != nil {
		return nil, err
	}

	userIDs, err := s.store.ListTemplateUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate template users: %w", err)
	}

	batch := &model.BatchSettlementResult{TargetMonth: targetMonth, UserCount: len(userIDs)}
	for _, userID := range userIDs {
		res, err := s.Settle(ctx, userID, targetMonth)
		if err != nil {
			if errors.Is(err, model.ErrSettlementExists) {
				batch.ConflictUserCount++
				continue
			}
			s.logger.Error().
				Err(err).
				Str("userId", userID).
				Str("targetMonth", targetMonth).
				Msg("batch settlement failed for user")
			batch.ErrorUserCount++
			continue
		}
		batch.SettledUserCount++
		batch.CreatedCount += res.CreatedCount
		batch.ReflectedCount += res.ReflectedCount
		batch.TotalSettledAmount += res.TotalSettledAmount
	}

	s.logger.Info().
		Str("targetMonth", targetMonth).
		Int("users", batch.UserCount).
		Int("settled", batch.SettledUserCount).
		Int("conflicts", batch.ConflictUserCount).
		Int("errors", batch.ErrorUserCount).
		Msg("batch settlement completed")

	return batch, nil
}

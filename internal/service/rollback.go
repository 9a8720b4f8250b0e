package service

import (
	"context"
	"fmt"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// Rollback is the settlement's exact algebraic inverse: every auto-settled
// record for targetMonth has its recorded deltas reversed against the same
// assets, its goal-fund contribution removed, and is then deleted. Once all
// records are gone the settlement marker is cleared so the month can be
// settled again.
//
// A record whose reversal fails is left in place with its bookkeeping
// intact: the recorded delta is the undo log, so it must survive until the
// reversal actually lands.
func (s *FinanceService) Rollback(ctx context.Context, userID, targetMonth string) (*model.RollbackResult, error) {
	if _, err := model.ParseMonthKey(targetMonth, s.loc); err != nil {
		return nil, err
	}

	txs, err := s.store.ListSettledTransactions(ctx, userID, targetMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, model.ErrNoSettlement
	}

	result := &model.RollbackResult{TargetMonth: targetMonth}

	for _, tx := range txs {
		reversed := -tx.ReflectedAmount
		if err := s.unreflect(ctx, tx); err != nil {
			s.logger.Error().
				Err(err).
				Str("userId", userID).
				Str("transactionId", tx.ID).
				Str("targetMonth", targetMonth).
				Msg("failed to reverse settled transaction")
			continue
		}
		if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
			s.logger.Error().
				Err(err).
				Str("transactionId", tx.ID).
				Msg("failed to delete settled transaction")
			continue
		}
		result.DeletedCount++
		result.ReversedAmount += reversed
	}

	// The marker is cleared only once every settled record is gone. While
	// any survive, a re-settle must keep failing the gate; retrying the
	// rollback is the only way forward, and it picks up the survivors.
	if result.DeletedCount == len(txs) {
		if err := s.store.DeleteSettlementMarker(ctx, userID, model.SettlementTypeRecurring, targetMonth); err != nil {
			return nil, fmt.Errorf("failed to clear settlement marker: %w", err)
		}
	}

	s.logger.Info().
		Str("userId", userID).
		Str("targetMonth", targetMonth).
		Int("deleted", result.DeletedCount).
		Int64("reversedAmount", result.ReversedAmount).
		Msg("settlement rollback completed")

	return result, nil
}

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// CreateGoalFund creates a savings goal. CurrentAmount starts derived from
// the (empty) log and is never set directly afterwards.
func (s *FinanceService) CreateGoalFund(ctx context.Context, userID, name string, targetAmount int64) (*model.GoalFund, error) {
	if targetAmount < 0 {
		return nil, model.ErrInvalidAmount
	}

	now := s.now()
	fund := &model.GoalFund{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		TargetAmount: targetAmount,
		MonthlyLogs:  []model.GoalFundLog{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateGoalFund(ctx, fund); err != nil {
		return nil, fmt.Errorf("failed to create goal fund: %w", err)
	}
	return fund, nil
}

// GetGoalFund returns a user's goal fund.
func (s *FinanceService) GetGoalFund(ctx context.Context, userID, fundID string) (*model.GoalFund, error) {
	fund, err := s.store.GetGoalFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if fund.UserID != userID {
		return nil, model.ErrGoalFundNotFound
	}
	return fund, nil
}

// ListGoalFunds returns all of a user's goal funds.
func (s *FinanceService) ListGoalFunds(ctx context.Context, userID string) ([]*model.GoalFund, error) {
	return s.store.ListGoalFunds(ctx, userID)
}

// SyncGoalFundLog maintains the per-month contribution log on a goal fund
// and recomputes its cumulative progress from the log. On add, the month's
// entry is replaced if present, else inserted keeping the log sorted. On
// remove, amount is subtracted from the month's entry, deleting it when it
// falls to zero or below. Callers treat failures here as best-effort: the
// goal fund is a derived projection, not the transaction's source of truth.
func (s *FinanceService) SyncGoalFundLog(ctx context.Context, fundID, userID, month string, amount int64, action model.GoalFundLogAction) error {
	fund, err := s.store.GetGoalFund(ctx, fundID)
	if err != nil {
		return err
	}
	if fund.UserID != userID {
		return model.ErrGoalFundNotFound
	}

	idx := -1
	for i, log := range fund.MonthlyLogs {
		if log.Month == month {
			idx = i
			break
		}
	}

	switch action {
	case model.GoalFundLogAdd:
		if idx >= 0 {
			fund.MonthlyLogs[idx].Amount = amount
		} else {
			fund.MonthlyLogs = append(fund.MonthlyLogs, model.GoalFundLog{Month: month, Amount: amount})
			sort.Slice(fund.MonthlyLogs, func(i, j int) bool {
				return fund.MonthlyLogs[i].Month < fund.MonthlyLogs[j].Month
			})
		}
	case model.GoalFundLogRemove:
		if idx < 0 {
			// Nothing logged for this month; nothing to subtract.
			break
		}
		fund.MonthlyLogs[idx].Amount -= amount
		if fund.MonthlyLogs[idx].Amount <= 0 {
			fund.MonthlyLogs = append(fund.MonthlyLogs[:idx], fund.MonthlyLogs[idx+1:]...)
		}
	default:
		return fmt.Errorf("unknown goal fund log action %q", action)
	}

	// CurrentAmount is derived: always the sum of the log after a mutation.
	var total int64
	for _, log := range fund.MonthlyLogs {
		total += log.Amount
	}
	fund.CurrentAmount = total
	fund.UpdatedAt = s.now()

	if err := s.store.UpdateGoalFund(ctx, fund); err != nil {
		return fmt.Errorf("failed to persist goal fund log: %w", err)
	}
	return nil
}

// syncGoalFundBestEffort runs a goal-fund sync for a reflected transaction
// and swallows failures, logging them. A secondary-projection failure must
// never abort or roll back the transaction write that triggered it.
func (s *FinanceService) syncGoalFundBestEffort(ctx context.Context, tx *model.Transaction, month string, action model.GoalFundLogAction) {
	if tx.GoalFundID == "" || !tx.IsInvestmentTransfer {
		return
	}
	if err := s.SyncGoalFundLog(ctx, tx.GoalFundID, tx.UserID, month, tx.Amount, action); err != nil {
		s.logger.Warn().
			Err(err).
			Str("goalFundId", tx.GoalFundID).
			Str("transactionId", tx.ID).
			Str("month", month).
			Str("action", string(action)).
			Msg("goal fund sync failed")
	}
}

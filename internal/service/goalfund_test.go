package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

func TestCreateGoalFundStartsEmpty(t *testing.T) {
	svc, _ := newTestService(t, testNow)

	fund, err := svc.CreateGoalFund(context.Background(), "user-1", "House Deposit", 50000000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fund.CurrentAmount)
	assert.Empty(t, fund.MonthlyLogs)
}

func TestCreateGoalFundRejectsNegativeTarget(t *testing.T) {
	svc, _ := newTestService(t, testNow)

	_, err := svc.CreateGoalFund(context.Background(), "user-1", "Bad", -1)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestSyncGoalFundLogAddKeepsLogSortedAndDerivesTotal(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 300000, model.GoalFundLogAdd))
	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-01", 100000, model.GoalFundLogAdd))

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	require.Len(t, got.MonthlyLogs, 2)
	assert.Equal(t, "2024-01", got.MonthlyLogs[0].Month)
	assert.Equal(t, "2024-03", got.MonthlyLogs[1].Month)
	assert.Equal(t, int64(400000), got.CurrentAmount)
}

func TestSyncGoalFundLogAddReplacesSameMonth(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 100000, model.GoalFundLogAdd))
	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 150000, model.GoalFundLogAdd))

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	require.Len(t, got.MonthlyLogs, 1)
	assert.Equal(t, int64(150000), got.MonthlyLogs[0].Amount)
	assert.Equal(t, int64(150000), got.CurrentAmount)
}

func TestSyncGoalFundLogRemoveDeletesDrainedEntry(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 100000, model.GoalFundLogAdd))
	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 100000, model.GoalFundLogRemove))

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MonthlyLogs)
	assert.Equal(t, int64(0), got.CurrentAmount)
}

func TestSyncGoalFundLogRemoveUnknownMonthIsNoop(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)
	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2024-03", 100000, model.GoalFundLogAdd))

	require.NoError(t, svc.SyncGoalFundLog(ctx, fund.ID, "user-1", "2023-12", 100000, model.GoalFundLogRemove))

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got.CurrentAmount)
}

func TestSyncGoalFundLogChecksOwnership(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	err = svc.SyncGoalFundLog(ctx, fund.ID, "user-2", "2024-03", 100000, model.GoalFundLogAdd)
	assert.ErrorIs(t, err, model.ErrGoalFundNotFound)
}

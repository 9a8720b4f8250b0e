package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

func TestCreateTransactionReflectsDueExpense(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Description:          "Groceries",
		Amount:               10000,
		OccurredAt:           testNow.AddDate(0, 0, -1),
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-10000), tx.ReflectedAmount)
	assert.Equal(t, asset.ID, tx.ReflectedAssetID)
	require.NotNil(t, tx.ReflectedAt)
	assert.Equal(t, int64(90000), assetValue(t, st, asset.ID))
}

func TestCreateTransactionIncomeAddsToBalance(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindIncome,
		Description:          "Salary",
		Amount:               3000000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000000), tx.ReflectedAmount)
	assert.Equal(t, int64(3100000), assetValue(t, st, asset.ID))
}

func TestCreateTransactionFutureDatedNotReflected(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow.AddDate(0, 0, 1),
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	assert.False(t, tx.IsReflected())
	assert.Equal(t, int64(100000), assetValue(t, st, asset.ID))
}

func TestCreateMonthlyTemplateIsNeverReflectedImmediately(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Description:          "Rent",
		Amount:               500000,
		OccurredAt:           testNow.AddDate(0, 0, -10),
		Recurrence:           model.RecurrenceMonthly,
		BillingDay:           5,
		IsFixed:              true,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	assert.True(t, tx.IsRecurringTemplate)
	assert.False(t, tx.IsReflected())
	assert.Equal(t, int64(100000), assetValue(t, st, asset.ID))
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	base := CreateTransactionInput{
		UserID:     "user-1",
		Kind:       model.KindExpense,
		Amount:     1000,
		OccurredAt: testNow,
		Recurrence: model.RecurrenceOneTime,
	}

	in := base
	in.Amount = -1
	_, err := svc.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	in = base
	in.Kind = "transfer"
	_, err = svc.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, model.ErrInvalidKind)

	in = base
	in.Recurrence = "weekly"
	_, err = svc.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, model.ErrInvalidRecurrence)

	in = base
	in.Recurrence = model.RecurrenceMonthly
	_, err = svc.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, model.ErrBillingDayRequired)

	in = base
	in.IsInvestmentTransfer = true
	_, err = svc.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, model.ErrInvestmentCategoryRequired)
}

func TestInvestmentTransferMovesBothLegs(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	liquid := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 300000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:                   "user-1",
		Kind:                     model.KindExpense,
		Description:              "Monthly stock purchase",
		Amount:                   100000,
		OccurredAt:               testNow,
		Recurrence:               model.RecurrenceOneTime,
		ReflectToLiquidAsset:     true,
		IsInvestmentTransfer:     true,
		InvestmentTargetCategory: "stock_kr",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200000), assetValue(t, st, liquid.ID))
	assert.Equal(t, int64(100000), tx.TransferredAmount)
	require.NotEmpty(t, tx.InvestmentTargetAssetID)
	assert.Equal(t, int64(100000), assetValue(t, st, tx.InvestmentTargetAssetID))

	target, err := st.GetAsset(ctx, tx.InvestmentTargetAssetID)
	require.NoError(t, err)
	assert.Equal(t, "stock_kr", target.Category)
}

func TestInvestmentTransferSyncsGoalFund(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 500000, testNow)
	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:                   "user-1",
		Kind:                     model.KindExpense,
		Amount:                   200000,
		OccurredAt:               testNow,
		Recurrence:               model.RecurrenceOneTime,
		ReflectToLiquidAsset:     true,
		IsInvestmentTransfer:     true,
		InvestmentTargetCategory: "fund",
		GoalFundID:               fund.ID,
	})
	require.NoError(t, err)

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), got.CurrentAmount)
	require.Len(t, got.MonthlyLogs, 1)
	assert.Equal(t, "2024-03", got.MonthlyLogs[0].Month)

	require.NoError(t, svc.DeleteTransaction(ctx, "user-1", tx.ID))

	got, err = svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CurrentAmount)
}

func TestGoalFundOnlyTracksInvestmentTransfers(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 500000, testNow)
	fund, err := svc.CreateGoalFund(ctx, "user-1", "House", 50000000)
	require.NoError(t, err)

	// A plain expense tagged with a goal fund is not a contribution; only
	// investment transfers feed the fund's monthly log.
	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               50000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
		GoalFundID:           fund.ID,
	})
	require.NoError(t, err)
	require.True(t, tx.IsReflected())

	got, err := svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CurrentAmount)
	assert.Empty(t, got.MonthlyLogs)

	require.NoError(t, svc.DeleteTransaction(ctx, "user-1", tx.ID))

	got, err = svc.GetGoalFund(ctx, "user-1", fund.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CurrentAmount)
}

func TestUpdateTransactionRedoesReflection(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 50000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(40000), assetValue(t, st, asset.ID))

	amount := int64(30000)
	updated, err := svc.UpdateTransaction(ctx, "user-1", tx.ID, UpdateTransactionInput{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, int64(-30000), updated.ReflectedAmount)
	assert.Equal(t, int64(20000), assetValue(t, st, asset.ID))
}

func TestUpdateNonMonetaryFieldKeepsReflection(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 50000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	desc := "renamed"
	updated, err := svc.UpdateTransaction(ctx, "user-1", tx.ID, UpdateTransactionInput{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Description)
	assert.Equal(t, int64(-10000), updated.ReflectedAmount)
	assert.Equal(t, int64(40000), assetValue(t, st, asset.ID))
}

func TestUpdateRejectedPatchLeavesReflectionIntact(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(90000), assetValue(t, st, asset.ID))

	bad := int64(-1)
	_, err = svc.UpdateTransaction(ctx, "user-1", tx.ID, UpdateTransactionInput{Amount: &bad})
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	// The rejected patch touched nothing: balance and bookkeeping still
	// agree, so the eventual delete reverses exactly once.
	assert.Equal(t, int64(90000), assetValue(t, st, asset.ID))
	stored, err := svc.GetTransaction(ctx, "user-1", tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), stored.ReflectedAmount)

	require.NoError(t, svc.DeleteTransaction(ctx, "user-1", tx.ID))
	assert.Equal(t, int64(100000), assetValue(t, st, asset.ID))
}

func TestUpdateTurningOffReflectionReversesIt(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 50000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	off := false
	updated, err := svc.UpdateTransaction(ctx, "user-1", tx.ID, UpdateTransactionInput{ReflectToLiquidAsset: &off})
	require.NoError(t, err)

	assert.False(t, updated.IsReflected())
	assert.Equal(t, int64(50000), assetValue(t, st, asset.ID))
}

func TestDeleteTransactionReversesReflection(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 50000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, "user-1", tx.ID))

	assert.Equal(t, int64(50000), assetValue(t, st, asset.ID))
	_, err = svc.GetTransaction(ctx, "user-1", tx.ID)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestDeleteReflectedExpenseAfterClampRestoresClampedValue(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	// 30000 on hand, 50000 spent: balance clamps to 0 but the record keeps
	// the full -50000 intent, so deletion adds the full 50000 back.
	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 30000, testNow)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               50000,
		OccurredAt:           testNow,
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), assetValue(t, st, asset.ID))

	require.NoError(t, svc.DeleteTransaction(ctx, "user-1", tx.ID))
	assert.Equal(t, int64(50000), assetValue(t, st, asset.ID))
}

func TestGetTransactionChecksOwnership(t *testing.T) {
	svc, _ := newTestService(t, testNow)
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:     "user-1",
		Kind:       model.KindExpense,
		Amount:     1000,
		OccurredAt: testNow,
		Recurrence: model.RecurrenceOneTime,
	})
	require.NoError(t, err)

	_, err = svc.GetTransaction(ctx, "user-2", tx.ID)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestIsDueUsesCanonicalTimezoneDateBoundary(t *testing.T) {
	// 2024-03-15 00:30 in Seoul is still 2024-03-14 in UTC; a record dated
	// 2024-03-15 must count as due.
	now := time.Date(2024, 3, 15, 0, 30, 0, 0, seoul)
	svc, st := newTestService(t, now)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 100000, now)

	tx, err := svc.CreateTransaction(ctx, CreateTransactionInput{
		UserID:               "user-1",
		Kind:                 model.KindExpense,
		Amount:               10000,
		OccurredAt:           time.Date(2024, 3, 15, 0, 0, 0, 0, seoul),
		Recurrence:           model.RecurrenceOneTime,
		ReflectToLiquidAsset: true,
	})
	require.NoError(t, err)

	assert.True(t, tx.IsReflected())
	assert.Equal(t, int64(90000), assetValue(t, st, asset.ID))
}

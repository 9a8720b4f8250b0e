package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, seoul)

func TestResolveLiquidAssetPrefersRecordedAsset(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	preferred := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main Account", 100000, testNow)
	seedAsset(t, st, "user-1", model.AssetCategoryCash, "Wallet", 5000, testNow.Add(time.Hour))

	asset, err := svc.ResolveLiquidAsset(ctx, "user-1", preferred.ID)
	require.NoError(t, err)
	assert.Equal(t, preferred.ID, asset.ID)
}

func TestResolveLiquidAssetIgnoresForeignPreferred(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	foreign := seedAsset(t, st, "user-2", model.AssetCategoryDeposit, "Other", 100000, testNow)
	mine := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 50000, testNow)

	asset, err := svc.ResolveLiquidAsset(ctx, "user-1", foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, asset.ID)
}

func TestResolveLiquidAssetFallsBackToLatestLiquid(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Old", 100000, testNow.Add(-48*time.Hour))
	newer := seedAsset(t, st, "user-1", model.AssetCategoryCash, "Wallet", 5000, testNow)
	seedAsset(t, st, "user-1", "stock_kr", "Stocks", 900000, testNow.Add(time.Hour))

	asset, err := svc.ResolveLiquidAsset(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, asset.ID)
}

func TestResolveLiquidAssetProvisionsCashWhenNoneExist(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset, err := svc.ResolveLiquidAsset(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, model.AssetCategoryCash, asset.Category)
	assert.Equal(t, "Cash", asset.Name)
	assert.Equal(t, int64(0), asset.CurrentValue)

	stored, err := st.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
}

func TestResolveInvestmentTargetRequiresCategory(t *testing.T) {
	svc, _ := newTestService(t, testNow)

	_, err := svc.ResolveInvestmentTargetAsset(context.Background(), "user-1", "", "")
	assert.ErrorIs(t, err, model.ErrInvestmentCategoryRequired)
}

func TestResolveInvestmentTargetProvisionsNamedAsset(t *testing.T) {
	svc, _ := newTestService(t, testNow)

	asset, err := svc.ResolveInvestmentTargetAsset(context.Background(), "user-1", "stock_kr", "")
	require.NoError(t, err)
	assert.Equal(t, "stock_kr", asset.Category)
	assert.Equal(t, "Korean Stocks", asset.Name)
	assert.Equal(t, int64(0), asset.CurrentValue)
}

func TestApplyDeltaClampsAtZeroButRecordsIntent(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 30000, testNow)

	applied, err := svc.ApplyDelta(ctx, asset, -50000)
	require.NoError(t, err)
	require.NotNil(t, applied)

	// Balance floors at zero, but the recorded delta is what was asked for
	// so the inverse restores the pre-clamp state.
	assert.Equal(t, int64(-50000), applied.AppliedDelta)
	assert.Equal(t, int64(0), assetValue(t, st, asset.ID))
}

func TestApplyDeltaZeroIsNoop(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 30000, testNow)

	applied, err := svc.ApplyDelta(ctx, asset, 0)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, int64(30000), assetValue(t, st, asset.ID))
}

func TestApplyDeltaStampsValuationDate(t *testing.T) {
	svc, st := newTestService(t, testNow)
	ctx := context.Background()

	asset := seedAsset(t, st, "user-1", model.AssetCategoryDeposit, "Main", 30000, testNow.Add(-24*time.Hour))

	_, err := svc.ApplyDelta(ctx, asset, 1000)
	require.NoError(t, err)

	stored, err := st.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, stored.ValuationDate.Equal(testNow))
	assert.Equal(t, int64(31000), stored.CurrentValue)
}

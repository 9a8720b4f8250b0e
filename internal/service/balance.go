package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// ResolveLiquidAsset finds the asset a transaction's monetary effect lands
// on: the preferred asset when it still resolves, otherwise the user's most
// recently updated deposit/cash asset, otherwise a freshly provisioned empty
// cash asset. Find-or-create: the only failure mode is a storage error.
func (s *FinanceService) ResolveLiquidAsset(ctx context.Context, userID, preferredAssetID string) (*model.Asset, error) {
	if preferredAssetID != "" {
		asset, err := s.store.GetAsset(ctx, preferredAssetID)
		if err == nil && asset.UserID == userID {
			return asset, nil
		}
		if err != nil && !errors.Is(err, model.ErrAssetNotFound) {
			return nil, err
		}
		// Preferred asset is gone or foreign; fall through to lookup.
	}

	asset, err := s.store.LatestAssetInCategories(ctx, userID, model.LiquidCategories)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, model.ErrAssetNotFound) {
		return nil, err
	}

	return s.provisionAsset(ctx, userID, model.AssetCategoryCash, "Cash", 0)
}

// ResolveInvestmentTargetAsset is the analogous find-or-create scoped to an
// investment category, used for the second leg of investment transfers.
func (s *FinanceService) ResolveInvestmentTargetAsset(ctx context.Context, userID, category, preferredAssetID string) (*model.Asset, error) {
	if category == "" {
		return nil, model.ErrInvestmentCategoryRequired
	}

	if preferredAssetID != "" {
		asset, err := s.store.GetAsset(ctx, preferredAssetID)
		if err == nil && asset.UserID == userID {
			return asset, nil
		}
		if err != nil && !errors.Is(err, model.ErrAssetNotFound) {
			return nil, err
		}
	}

	asset, err := s.store.LatestAssetInCategories(ctx, userID, []string{category})
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, model.ErrAssetNotFound) {
		return nil, err
	}

	return s.provisionAsset(ctx, userID, category, model.InvestmentCategoryName(category), 0)
}

func (s *FinanceService) provisionAsset(ctx context.Context, userID, category, name string, value int64) (*model.Asset, error) {
	now := s.now()
	asset := &model.Asset{
		ID:            uuid.New().String(),
		UserID:        userID,
		Category:      category,
		Name:          name,
		CurrentValue:  value,
		ValuationDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to auto-create asset: %w", err)
	}

	s.logger.Info().
		Str("userId", userID).
		Str("assetId", asset.ID).
		Str("category", category).
		Msg("auto-provisioned asset")

	return asset, nil
}

// ApplyDelta applies a signed delta to an asset's current value, clamped at
// zero, and stamps a fresh valuation time. Returns nil for a zero delta.
// The returned AppliedDelta carries the requested delta, not the clamped
// change: reflection bookkeeping records intent so reversal stays exact even
// when clamping occurred.
func (s *FinanceService) ApplyDelta(ctx context.Context, asset *model.Asset, delta int64) (*model.AppliedDelta, error) {
	if delta == 0 {
		return nil, nil
	}

	next := asset.CurrentValue + delta
	if next < 0 {
		next = 0
	}

	now := s.now()
	asset.CurrentValue = next
	asset.ValuationDate = now
	asset.UpdatedAt = now

	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to persist balance delta: %w", err)
	}

	return &model.AppliedDelta{AssetID: asset.ID, AppliedDelta: delta}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// CaptureSnapshot writes the period-end window record for a user: the sum of
// all asset values plus the delta against last month's window. It runs only
// when tomorrow rolls into a new month unless forced, and returns (nil, nil)
// when skipped. The deterministic (userId, windowMonth) id makes repeated
// runs within the same month overwrite rather than duplicate.
func (s *FinanceService) CaptureSnapshot(ctx context.Context, userID string, force bool) (*model.AssetSnapshot, error) {
	now := s.now().In(s.loc)
	if !force && now.AddDate(0, 0, 1).Month() == now.Month() {
		return nil, nil
	}

	assets, err := s.store.ListAssets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	var total int64
	for _, asset := range assets {
		total += asset.CurrentValue
	}

	windowMonth := model.MonthKeyOf(now)
	prevMonth, err := model.PrevMonthKey(windowMonth, s.loc)
	if err != nil {
		return nil, err
	}

	// Absent prior window counts as zero: the delta is growth from nothing.
	var prevTotal int64
	prev, err := s.store.GetAssetSnapshot(ctx, userID, prevMonth)
	if err == nil {
		prevTotal = prev.TotalValue
	} else if !errors.Is(err, model.ErrSnapshotNotFound) {
		return nil, err
	}

	snapshot := &model.AssetSnapshot{
		ID:          model.AssetSnapshotID(userID, windowMonth),
		UserID:      userID,
		WindowMonth: windowMonth,
		TotalValue:  total,
		MonthDelta:  total - prevTotal,
		CapturedAt:  s.now(),
	}
	if err := s.store.UpsertAssetSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return snapshot, nil
}

// SnapshotAllUsers captures the window record for every asset-owning user.
// Scheduler-driven; per-user failures are logged and counted, not
// propagated.
func (s *FinanceService) SnapshotAllUsers(ctx context.Context, force bool) (int, error) {
	userIDs, err := s.store.ListAssetUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate asset users: %w", err)
	}

	captured := 0
	for _, userID := range userIDs {
		snapshot, err := s.CaptureSnapshot(ctx, userID, force)
		if err != nil {
			s.logger.Error().Err(err).Str("userId", userID).Msg("snapshot capture failed")
			continue
		}
		if snapshot != nil {
			captured++
		}
	}

	s.logger.Info().Int("users", len(userIDs)).Int("captured", captured).Msg("snapshot run completed")
	return captured, nil
}

// ListSnapshots returns a user's recent window records, newest first.
func (s *FinanceService) ListSnapshots(ctx context.Context, userID string, limit int32) ([]*model.AssetSnapshot, error) {
	return s.store.ListAssetSnapshots(ctx, userID, limit)
}

// ListAssets returns all of a user's asset records.
func (s *FinanceService) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	return s.store.ListAssets(ctx, userID)
}

// GetAsset returns a user's asset record.
func (s *FinanceService) GetAsset(ctx context.Context, userID, assetID string) (*model.Asset, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.UserID != userID {
		return nil, model.ErrAssetNotFound
	}
	return asset, nil
}

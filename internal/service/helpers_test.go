package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
	"github.com/hyeonlab/moneyflow/backend/internal/store"
)

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newTestService(t *testing.T, now time.Time) (*FinanceService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewFinanceService(st, zerolog.Nop(), seoul, WithClock(func() time.Time { return now }))
	return svc, st
}

func seedAsset(t *testing.T, st *store.MemoryStore, userID, category, name string, value int64, updatedAt time.Time) *model.Asset {
	t.Helper()
	asset := &model.Asset{
		ID:            uuid.New().String(),
		UserID:        userID,
		Category:      category,
		Name:          name,
		CurrentValue:  value,
		ValuationDate: updatedAt,
		CreatedAt:     updatedAt,
		UpdatedAt:     updatedAt,
	}
	require.NoError(t, st.CreateAsset(context.Background(), asset))
	return asset
}

func seedTemplate(t *testing.T, st *store.MemoryStore, tmpl *model.Transaction) *model.Transaction {
	t.Helper()
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	tmpl.Recurrence = model.RecurrenceMonthly
	tmpl.IsRecurringTemplate = true
	tmpl.IsFixed = true
	if tmpl.EntrySource == "" {
		tmpl.EntrySource = model.EntrySourceManual
	}
	require.NoError(t, st.CreateTransaction(context.Background(), tmpl))
	return tmpl
}

func assetValue(t *testing.T, st *store.MemoryStore, assetID string) int64 {
	t.Helper()
	asset, err := st.GetAsset(context.Background(), assetID)
	require.NoError(t, err)
	return asset.CurrentValue
}

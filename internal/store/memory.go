package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// MemoryStore implements Store interface with in-memory storage. It is used
// for local development and unit tests. Records are copied on the way in and
// out so callers observe only what was explicitly written, matching the
// remote store's behavior.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*model.Transaction
	assets       map[string]*model.Asset
	goalFunds    map[string]*model.GoalFund
	markers      map[string]*model.SettlementMarker
	snapshots    map[string]*model.AssetSnapshot
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		assets:       make(map[string]*model.Asset),
		goalFunds:    make(map[string]*model.GoalFund),
		markers:      make(map[string]*model.SettlementMarker),
		snapshots:    make(map[string]*model.AssetSnapshot),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

func cloneTransaction(tx *model.Transaction) *model.Transaction {
	c := *tx
	if tx.ReflectedAt != nil {
		t := *tx.ReflectedAt
		c.ReflectedAt = &t
	}
	return &c
}

func cloneGoalFund(fund *model.GoalFund) *model.GoalFund {
	c := *fund
	c.MonthlyLogs = append([]model.GoalFundLog(nil), fund.MonthlyLogs...)
	return &c
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[txID]
	if !ok {
		return nil, model.ErrTransactionNotFound
	}
	return cloneTransaction(tx), nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[tx.ID]; !ok {
		return model.ErrTransactionNotFound
	}
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.transactions, txID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for id, tx := range m.transactions {
		if userID != "" && tx.UserID != userID {
			continue
		}
		if filter.Kind != "" && tx.Kind != filter.Kind {
			continue
		}
		if filter.EntrySource != "" && tx.EntrySource != filter.EntrySource {
			continue
		}
		if filter.SettledMonth != "" && tx.SettledMonth != filter.SettledMonth {
			continue
		}
		if filter.TemplatesOnly && !tx.IsRecurringTemplate {
			continue
		}
		if filter.StartDate != nil && tx.OccurredAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.OccurredAt.After(*filter.EndDate) {
			continue
		}
		matchingIDs = append(matchingIDs, id)
	}

	paginatedIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)
	result := make([]*model.Transaction, 0, len(paginatedIDs))
	for _, id := range paginatedIDs {
		result = append(result, cloneTransaction(m.transactions[id]))
	}
	return result, nextToken, nil
}

func (m *MemoryStore) ListRecurringTemplates(ctx context.Context, userID string) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var templates []*model.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if !tx.IsRecurringTemplate || tx.Recurrence != model.RecurrenceMonthly || !tx.IsFixed {
			continue
		}
		templates = append(templates, cloneTransaction(tx))
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (m *MemoryStore) ListSettledTransactions(ctx context.Context, userID, monthKey string) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var txs []*model.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.EntrySource != model.EntrySourceAutoSettlement || tx.SettledMonth != monthKey {
			continue
		}
		txs = append(txs, cloneTransaction(tx))
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

func (m *MemoryStore) ListTemplateUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var userIDs []string
	for _, tx := range m.transactions {
		if !tx.IsRecurringTemplate || tx.Recurrence != model.RecurrenceMonthly || !tx.IsFixed {
			continue
		}
		if tx.UserID != "" && !seen[tx.UserID] {
			seen[tx.UserID] = true
			userIDs = append(userIDs, tx.UserID)
		}
	}
	sort.Strings(userIDs)
	return userIDs, nil
}

// Asset operations

func (m *MemoryStore) CreateAsset(ctx context.Context, asset *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	c := *asset
	m.assets[asset.ID] = &c
	return nil
}

func (m *MemoryStore) GetAsset(ctx context.Context, assetID string) (*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	asset, ok := m.assets[assetID]
	if !ok {
		return nil, model.ErrAssetNotFound
	}
	c := *asset
	return &c, nil
}

func (m *MemoryStore) UpdateAsset(ctx context.Context, asset *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[asset.ID]; !ok {
		return model.ErrAssetNotFound
	}
	c := *asset
	m.assets[asset.ID] = &c
	return nil
}

func (m *MemoryStore) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var assets []*model.Asset
	for _, asset := range m.assets {
		if asset.UserID != userID {
			continue
		}
		c := *asset
		assets = append(assets, &c)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (m *MemoryStore) LatestAssetInCategories(ctx context.Context, userID string, categories []string) (*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *model.Asset
	for _, asset := range m.assets {
		if asset.UserID != userID {
			continue
		}
		match := false
		for _, cat := range categories {
			if asset.Category == cat {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		if latest == nil || asset.UpdatedAt.After(latest.UpdatedAt) {
			latest = asset
		}
	}
	if latest == nil {
		return nil, model.ErrAssetNotFound
	}
	c := *latest
	return &c, nil
}

func (m *MemoryStore) ListAssetUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var userIDs []string
	for _, asset := range m.assets {
		if asset.UserID != "" && !seen[asset.UserID] {
			seen[asset.UserID] = true
			userIDs = append(userIDs, asset.UserID)
		}
	}
	sort.Strings(userIDs)
	return userIDs, nil
}

// Goal fund operations

func (m *MemoryStore) CreateGoalFund(ctx context.Context, fund *model.GoalFund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fund.ID == "" {
		fund.ID = uuid.New().String()
	}
	m.goalFunds[fund.ID] = cloneGoalFund(fund)
	return nil
}

func (m *MemoryStore) GetGoalFund(ctx context.Context, fundID string) (*model.GoalFund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fund, ok := m.goalFunds[fundID]
	if !ok {
		return nil, model.ErrGoalFundNotFound
	}
	return cloneGoalFund(fund), nil
}

func (m *MemoryStore) UpdateGoalFund(ctx context.Context, fund *model.GoalFund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goalFunds[fund.ID]; !ok {
		return model.ErrGoalFundNotFound
	}
	m.goalFunds[fund.ID] = cloneGoalFund(fund)
	return nil
}

func (m *MemoryStore) ListGoalFunds(ctx context.Context, userID string) ([]*model.GoalFund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var funds []*model.GoalFund
	for _, fund := range m.goalFunds {
		if fund.UserID != userID {
			continue
		}
		funds = append(funds, cloneGoalFund(fund))
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].ID < funds[j].ID })
	return funds, nil
}

// Settlement marker operations

func (m *MemoryStore) CreateSettlementMarker(ctx context.Context, marker *model.SettlementMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if marker.ID == "" {
		marker.ID = model.SettlementMarkerID(marker.UserID, marker.SettlementType, marker.MonthKey)
	}
	if _, ok := m.markers[marker.ID]; ok {
		return model.ErrSettlementExists
	}
	c := *marker
	m.markers[marker.ID] = &c
	return nil
}

func (m *MemoryStore) GetSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) (*model.SettlementMarker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	marker, ok := m.markers[model.SettlementMarkerID(userID, settlementType, monthKey)]
	if !ok {
		return nil, model.ErrNoSettlement
	}
	c := *marker
	return &c, nil
}

func (m *MemoryStore) DeleteSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.markers, model.SettlementMarkerID(userID, settlementType, monthKey))
	return nil
}

// Snapshot operations

func (m *MemoryStore) UpsertAssetSnapshot(ctx context.Context, snapshot *model.AssetSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snapshot.ID == "" {
		snapshot.ID = model.AssetSnapshotID(snapshot.UserID, snapshot.WindowMonth)
	}
	c := *snapshot
	m.snapshots[snapshot.ID] = &c
	return nil
}

func (m *MemoryStore) GetAssetSnapshot(ctx context.Context, userID, windowMonth string) (*model.AssetSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.snapshots[model.AssetSnapshotID(userID, windowMonth)]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	c := *snapshot
	return &c, nil
}

func (m *MemoryStore) ListAssetSnapshots(ctx context.Context, userID string, limit int32) ([]*model.AssetSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 24
	}

	var snapshots []*model.AssetSnapshot
	for _, snapshot := range m.snapshots {
		if snapshot.UserID != userID {
			continue
		}
		c := *snapshot
		snapshots = append(snapshots, &c)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].WindowMonth > snapshots[j].WindowMonth })
	if int32(len(snapshots)) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

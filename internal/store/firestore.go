package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

const (
	collectionTransactions      = "transactions"
	collectionAssets            = "assets"
	collectionGoalFunds         = "goalFunds"
	collectionSettlementMarkers = "settlementMarkers"
	collectionAssetSnapshots    = "assetSnapshots"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(collectionTransactions).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(collectionTransactions).Doc(txID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	var tx model.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &tx, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(collectionTransactions).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txID string) error {
	_, err := s.client.Collection(collectionTransactions).Doc(txID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	query := s.client.Collection(collectionTransactions).Query.Where("userId", "==", userID)

	if filter.Kind != "" {
		query = query.Where("kind", "==", string(filter.Kind))
	}
	if filter.EntrySource != "" {
		query = query.Where("entrySource", "==", string(filter.EntrySource))
	}
	if filter.SettledMonth != "" {
		query = query.Where("settledMonth", "==", filter.SettledMonth)
	}
	if filter.TemplatesOnly {
		query = query.Where("isRecurringTemplate", "==", true)
	}

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	txs := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		// Date range filters are applied client-side to avoid composite
		// index requirements on every filter combination.
		if filter.StartDate != nil && tx.OccurredAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.OccurredAt.After(*filter.EndDate) {
			continue
		}
		txs = append(txs, &tx)
	}

	return txs, nextPageToken, nil
}

func (s *FirestoreStore) ListRecurringTemplates(ctx context.Context, userID string) ([]*model.Transaction, error) {
	query := s.client.Collection(collectionTransactions).Query.
		Where("userId", "==", userID).
		Where("isRecurringTemplate", "==", true).
		Where("recurrence", "==", string(model.RecurrenceMonthly)).
		Where("isFixed", "==", true)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	templates := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}
		templates = append(templates, &tx)
	}
	return templates, nil
}

func (s *FirestoreStore) ListSettledTransactions(ctx context.Context, userID, monthKey string) ([]*model.Transaction, error) {
	query := s.client.Collection(collectionTransactions).Query.
		Where("userId", "==", userID).
		Where("entrySource", "==", string(model.EntrySourceAutoSettlement)).
		Where("settledMonth", "==", monthKey)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list settled transactions: %w", err)
	}

	txs := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("failed to parse settled transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, nil
}

func (s *FirestoreStore) ListTemplateUserIDs(ctx context.Context) ([]string, error) {
	query := s.client.Collection(collectionTransactions).Query.
		Where("isRecurringTemplate", "==", true).
		Where("recurrence", "==", string(model.RecurrenceMonthly)).
		Where("isFixed", "==", true)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list template users: %w", err)
	}

	seen := make(map[string]bool)
	var userIDs []string
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}
		if tx.UserID != "" && !seen[tx.UserID] {
			seen[tx.UserID] = true
			userIDs = append(userIDs, tx.UserID)
		}
	}
	return userIDs, nil
}

// Asset operations

func (s *FirestoreStore) CreateAsset(ctx context.Context, asset *model.Asset) error {
	_, err := s.client.Collection(collectionAssets).Doc(asset.ID).Set(ctx, asset)
	return err
}

func (s *FirestoreStore) GetAsset(ctx context.Context, assetID string) (*model.Asset, error) {
	doc, err := s.client.Collection(collectionAssets).Doc(assetID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	var asset model.Asset
	if err := doc.DataTo(&asset); err != nil {
		return nil, fmt.Errorf("failed to parse asset: %w", err)
	}
	return &asset, nil
}

func (s *FirestoreStore) UpdateAsset(ctx context.Context, asset *model.Asset) error {
	_, err := s.client.Collection(collectionAssets).Doc(asset.ID).Set(ctx, asset)
	return err
}

func (s *FirestoreStore) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	docs, err := s.client.Collection(collectionAssets).Query.
		Where("userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	assets := make([]*model.Asset, 0, len(docs))
	for _, doc := range docs {
		var asset model.Asset
		if err := doc.DataTo(&asset); err != nil {
			return nil, fmt.Errorf("failed to parse asset: %w", err)
		}
		assets = append(assets, &asset)
	}
	return assets, nil
}

func (s *FirestoreStore) LatestAssetInCategories(ctx context.Context, userID string, categories []string) (*model.Asset, error) {
	docs, err := s.client.Collection(collectionAssets).Query.
		Where("userId", "==", userID).
		Where("category", "in", categories).
		OrderBy("updatedAt", firestore.Desc).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query latest asset: %w", err)
	}
	if len(docs) == 0 {
		return nil, model.ErrAssetNotFound
	}

	var asset model.Asset
	if err := docs[0].DataTo(&asset); err != nil {
		return nil, fmt.Errorf("failed to parse asset: %w", err)
	}
	return &asset, nil
}

func (s *FirestoreStore) ListAssetUserIDs(ctx context.Context) ([]string, error) {
	docs, err := s.client.Collection(collectionAssets).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list asset users: %w", err)
	}

	seen := make(map[string]bool)
	var userIDs []string
	for _, doc := range docs {
		var asset model.Asset
		if err := doc.DataTo(&asset); err != nil {
			return nil, fmt.Errorf("failed to parse asset: %w", err)
		}
		if asset.UserID != "" && !seen[asset.UserID] {
			seen[asset.UserID] = true
			userIDs = append(userIDs, asset.UserID)
		}
	}
	return userIDs, nil
}

// Goal fund operations

func (s *FirestoreStore) CreateGoalFund(ctx context.Context, fund *model.GoalFund) error {
	_, err := s.client.Collection(collectionGoalFunds).Doc(fund.ID).Set(ctx, fund)
	return err
}

func (s *FirestoreStore) GetGoalFund(ctx context.Context, fundID string) (*model.GoalFund, error) {
	doc, err := s.client.Collection(collectionGoalFunds).Doc(fundID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrGoalFundNotFound
		}
		return nil, fmt.Errorf("failed to get goal fund: %w", err)
	}

	var fund model.GoalFund
	if err := doc.DataTo(&fund); err != nil {
		return nil, fmt.Errorf("failed to parse goal fund: %w", err)
	}
	return &fund, nil
}

func (s *FirestoreStore) UpdateGoalFund(ctx context.Context, fund *model.GoalFund) error {
	_, err := s.client.Collection(collectionGoalFunds).Doc(fund.ID).Set(ctx, fund)
	return err
}

func (s *FirestoreStore) ListGoalFunds(ctx context.Context, userID string) ([]*model.GoalFund, error) {
	docs, err := s.client.Collection(collectionGoalFunds).Query.
		Where("userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list goal funds: %w", err)
	}

	funds := make([]*model.GoalFund, 0, len(docs))
	for _, doc := range docs {
		var fund model.GoalFund
		if err := doc.DataTo(&fund); err != nil {
			return nil, fmt.Errorf("failed to parse goal fund: %w", err)
		}
		funds = append(funds, &fund)
	}
	return funds, nil
}

// Settlement marker operations

// CreateSettlementMarker uses Firestore's Create (insert-if-absent) so the
// marker write itself is the idempotency gate rather than a read-then-write.
func (s *FirestoreStore) CreateSettlementMarker(ctx context.Context, marker *model.SettlementMarker) error {
	_, err := s.client.Collection(collectionSettlementMarkers).Doc(marker.ID).Create(ctx, marker)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return model.ErrSettlementExists
		}
		return fmt.Errorf("failed to create settlement marker: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) (*model.SettlementMarker, error) {
	docID := model.SettlementMarkerID(userID, settlementType, monthKey)
	doc, err := s.client.Collection(collectionSettlementMarkers).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrNoSettlement
		}
		return nil, fmt.Errorf("failed to get settlement marker: %w", err)
	}

	var marker model.SettlementMarker
	if err := doc.DataTo(&marker); err != nil {
		return nil, fmt.Errorf("failed to parse settlement marker: %w", err)
	}
	return &marker, nil
}

func (s *FirestoreStore) DeleteSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) error {
	docID := model.SettlementMarkerID(userID, settlementType, monthKey)
	_, err := s.client.Collection(collectionSettlementMarkers).Doc(docID).Delete(ctx)
	return err
}

// Snapshot operations

func (s *FirestoreStore) UpsertAssetSnapshot(ctx context.Context, snapshot *model.AssetSnapshot) error {
	_, err := s.client.Collection(collectionAssetSnapshots).Doc(snapshot.ID).Set(ctx, snapshot)
	return err
}

func (s *FirestoreStore) GetAssetSnapshot(ctx context.Context, userID, windowMonth string) (*model.AssetSnapshot, error) {
	docID := model.AssetSnapshotID(userID, windowMonth)
	doc, err := s.client.Collection(collectionAssetSnapshots).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot model.AssetSnapshot
	if err := doc.DataTo(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *FirestoreStore) ListAssetSnapshots(ctx context.Context, userID string, limit int32) ([]*model.AssetSnapshot, error) {
	if limit <= 0 {
		limit = 24
	}
	docs, err := s.client.Collection(collectionAssetSnapshots).Query.
		Where("userId", "==", userID).
		OrderBy("windowMonth", firestore.Desc).
		Limit(int(limit)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]*model.AssetSnapshot, 0, len(docs))
	for _, doc := range docs {
		var snapshot model.AssetSnapshot
		if err := doc.DataTo(&snapshot); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		snapshots = append(snapshots, &snapshot)
	}
	return snapshots, nil
}

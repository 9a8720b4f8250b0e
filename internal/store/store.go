package store

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Kind          model.TransactionKind
	EntrySource   model.EntrySource
	SettledMonth  string
	TemplatesOnly bool
	StartDate     *time.Time
	EndDate       *time.Time
}

// Store defines the document-store operations used by the engine. Every
// method is a single-document read/write or a filtered query; there are no
// cross-document transactions, so multi-step effects are sequenced by the
// service layer and compensated rather than committed atomically.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, txID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, txID string) error
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter, pageSize int32, pageToken string) ([]*model.Transaction, string, error)

	// ListRecurringTemplates returns a user's monthly fixed-cost templates:
	// recurring, monthly, flagged fixed. Card-consolidated expense lines are
	// filtered by the caller.
	ListRecurringTemplates(ctx context.Context, userID string) ([]*model.Transaction, error)

	// ListSettledTransactions returns all auto-settlement records a
	// settlement run produced for the given month.
	ListSettledTransactions(ctx context.Context, userID, monthKey string) ([]*model.Transaction, error)

	// ListTemplateUserIDs enumerates users owning at least one qualifying
	// recurring template, for scheduler-driven batch settlement.
	ListTemplateUserIDs(ctx context.Context) ([]string, error)

	// Asset operations
	CreateAsset(ctx context.Context, asset *model.Asset) error
	GetAsset(ctx context.Context, assetID string) (*model.Asset, error)
	UpdateAsset(ctx context.Context, asset *model.Asset) error
	ListAssets(ctx context.Context, userID string) ([]*model.Asset, error)

	// LatestAssetInCategories returns the user's most recently updated asset
	// in any of the given categories, or model.ErrAssetNotFound.
	LatestAssetInCategories(ctx context.Context, userID string, categories []string) (*model.Asset, error)

	// ListAssetUserIDs enumerates users owning at least one asset, for the
	// scheduler-driven snapshot job.
	ListAssetUserIDs(ctx context.Context) ([]string, error)

	// Goal fund operations
	CreateGoalFund(ctx context.Context, fund *model.GoalFund) error
	GetGoalFund(ctx context.Context, fundID string) (*model.GoalFund, error)
	UpdateGoalFund(ctx context.Context, fund *model.GoalFund) error
	ListGoalFunds(ctx context.Context, userID string) ([]*model.GoalFund, error)

	// Settlement marker operations. CreateSettlementMarker is conditional:
	// it fails with model.ErrSettlementExists when a marker with the same
	// deterministic id already exists, making the insert itself the
	// idempotency gate.
	CreateSettlementMarker(ctx context.Context, marker *model.SettlementMarker) error
	GetSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) (*model.SettlementMarker, error)
	DeleteSettlementMarker(ctx context.Context, userID, settlementType, monthKey string) error

	// Snapshot operations. Upsert overwrites the deterministic
	// (userId, windowMonth) document so repeated month-end runs dedupe.
	UpsertAssetSnapshot(ctx context.Context, snapshot *model.AssetSnapshot) error
	GetAssetSnapshot(ctx context.Context, userID, windowMonth string) (*model.AssetSnapshot, error)
	ListAssetSnapshots(ctx context.Context, userID string, limit int32) ([]*model.AssetSnapshot, error)
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package model

import "time"

// Asset category keys. LiquidCategories are the balances the engine drains
// and fills; everything else is an investment target category.
const (
	AssetCategoryCash    = "cash"
	AssetCategoryDeposit = "deposit"
)

// LiquidCategories are searched, most-recently-updated first, when a
// transaction needs a liquid balance and no preferred asset is recorded.
var LiquidCategories = []string{AssetCategoryDeposit, AssetCategoryCash}

// investmentCategoryNames maps investment target categories to the display
// name used when an asset is auto-provisioned for a transfer.
var investmentCategoryNames = map[string]string{
	"stock_kr": "Korean Stocks",
	"stock_us": "US Stocks",
	"fund":     "Funds",
	"bond":     "Bonds",
	"crypto":   "Crypto",
	"pension":  "Pension",
	"gold":     "Gold",
}

// InvestmentCategoryName returns the default display name for an
// auto-created investment asset in the given category.
func InvestmentCategoryName(category string) string {
	if name, ok := investmentCategoryNames[category]; ok {
		return name
	}
	return "Investment"
}

// Asset is a single-owner balance record. CurrentValue is mutated only
// through the delta applicator and never goes below zero.
type Asset struct {
	ID            string    `json:"id" firestore:"id"`
	UserID        string    `json:"userId" firestore:"userId"`
	Category      string    `json:"category" firestore:"category"`
	Name          string    `json:"name" firestore:"name"`
	CurrentValue  int64     `json:"currentValue" firestore:"currentValue"`
	ValuationDate time.Time `json:"valuationDate" firestore:"valuationDate"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// AppliedDelta reports the outcome of a balance mutation. AppliedDelta is
// the delta the caller asked for, not the post-clamp change, so reflection
// bookkeeping records intent and reversal stays exact.
type AppliedDelta struct {
	AssetID      string `json:"assetId"`
	AppliedDelta int64  `json:"appliedDelta"`
}

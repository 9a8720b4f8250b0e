package model

import (
	"fmt"
	"time"
)

// Settlement types. Only monthly recurring settlement exists today; the
// field keeps the marker key extensible.
const SettlementTypeRecurring = "recurring_monthly"

// SettlementMarker is the idempotency gate for a settlement run. Its
// deterministic ID makes the insert-if-absent write the true gate: at most
// one successful settlement per (userId, settlementType, monthKey).
type SettlementMarker struct {
	ID             string    `json:"id" firestore:"id"`
	UserID         string    `json:"userId" firestore:"userId"`
	SettlementType string    `json:"settlementType" firestore:"settlementType"`
	MonthKey       string    `json:"monthKey" firestore:"monthKey"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
}

// SettlementMarkerID derives the deterministic document id for a marker.
func SettlementMarkerID(userID, settlementType, monthKey string) string {
	return fmt.Sprintf("%s_%s_%s", userID, settlementType, monthKey)
}

// SettlementResult summarizes one settlement run. Templates are processed
// independently, so partial failure shows up in the counts rather than
// aborting the batch.
type SettlementResult struct {
	TargetMonth        string `json:"targetMonth"`
	CreatedCount       int    `json:"createdCount"`
	SkippedCount       int    `json:"skippedCount"`
	ReflectedCount     int    `json:"reflectedCount"`
	TotalSettledAmount int64  `json:"totalSettledAmount"`
}

// RollbackResult summarizes a settlement rollback. ReversedAmount is the
// net delta applied back onto liquid assets.
type RollbackResult struct {
	TargetMonth    string `json:"targetMonth"`
	DeletedCount   int    `json:"deletedCount"`
	ReversedAmount int64  `json:"reversedAmount"`
}

// BatchSettlementResult aggregates a scheduler-triggered run across users.
type BatchSettlementResult struct {
	TargetMonth        string `json:"targetMonth"`
	UserCount          int    `json:"userCount"`
	SettledUserCount   int    `json:"settledUserCount"`
	ConflictUserCount  int    `json:"conflictUserCount"`
	ErrorUserCount     int    `json:"errorUserCount"`
	CreatedCount       int    `json:"createdCount"`
	ReflectedCount     int    `json:"reflectedCount"`
	TotalSettledAmount int64  `json:"totalSettledAmount"`
}

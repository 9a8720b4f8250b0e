package model

import (
	"fmt"
	"time"
)

// AssetSnapshot is a month-keyed window record of a user's aggregate asset
// value, written by the period-end snapshot job. The deterministic id makes
// repeated runs within the same month overwrite rather than duplicate.
type AssetSnapshot struct {
	ID          string    `json:"id" firestore:"id"`
	UserID      string    `json:"userId" firestore:"userId"`
	WindowMonth string    `json:"windowMonth" firestore:"windowMonth"`
	TotalValue  int64     `json:"totalValue" firestore:"totalValue"`
	MonthDelta  int64     `json:"monthDelta" firestore:"monthDelta"`
	CapturedAt  time.Time `json:"capturedAt" firestore:"capturedAt"`
}

// AssetSnapshotID derives the deterministic document id for a window record.
func AssetSnapshotID(userID, windowMonth string) string {
	return fmt.Sprintf("%s_%s", userID, windowMonth)
}

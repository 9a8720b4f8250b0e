package model

import "time"

// GoalFundLog is one month's contribution toward a goal fund. Month keys
// are yyyy-mm and unique within a fund.
type GoalFundLog struct {
	Month  string `json:"month" firestore:"month"`
	Amount int64  `json:"amount" firestore:"amount"`
	Note   string `json:"note,omitempty" firestore:"note"`
}

// GoalFund is a savings target. CurrentAmount is derived: it always equals
// the sum of MonthlyLogs amounts after any log mutation.
type GoalFund struct {
	ID            string        `json:"id" firestore:"id"`
	UserID        string        `json:"userId" firestore:"userId"`
	Name          string        `json:"name" firestore:"name"`
	TargetAmount  int64         `json:"targetAmount" firestore:"targetAmount"`
	CurrentAmount int64         `json:"currentAmount" firestore:"currentAmount"`
	MonthlyLogs   []GoalFundLog `json:"monthlyLogs" firestore:"monthlyLogs"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// GoalFundLogAction selects the direction of a goal-fund log sync.
type GoalFundLogAction string

const (
	GoalFundLogAdd    GoalFundLogAction = "add"
	GoalFundLogRemove GoalFundLogAction = "remove"
)

package model

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the yyyy-mm key used for settled months, goal-fund logs
// and snapshot windows.
const MonthKeyLayout = "2006-01"

// MonthKeyOf formats t's month key in t's location.
func MonthKeyOf(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonthKey parses a yyyy-mm key into the first instant of that month
// in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// PrevMonthKey returns the month key immediately before key.
func PrevMonthKey(key string, loc *time.Location) (string, error) {
	t, err := ParseMonthKey(key, loc)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, -1, 0).Format(MonthKeyLayout), nil
}

// LastDayOfMonth returns the number of days in the month that starts at t.
func LastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// OccurrenceDate resolves a billing day inside a target month, clamping
// days 29-31 into the month's actual last day (billing day 31 in a 30-day
// month settles on day 30).
func OccurrenceDate(monthKey string, billingDay int, loc *time.Location) (time.Time, error) {
	start, err := ParseMonthKey(monthKey, loc)
	if err != nil {
		return time.Time{}, err
	}
	day := billingDay
	if last := LastDayOfMonth(start); day > last {
		day = last
	}
	return time.Date(start.Year(), start.Month(), day, 0, 0, 0, 0, loc), nil
}

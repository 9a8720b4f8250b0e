package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
)

func TestMonthKey(t *testing.T) {
	got, err := MonthKey("targetMonth", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", got)

	_, err = MonthKey("targetMonth", "")
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "targetMonth", fieldErr.Field)

	_, err = MonthKey("targetMonth", "2024/02")
	assert.Error(t, err)

	_, err = MonthKey("targetMonth", "2024-13")
	assert.Error(t, err)
}

func TestAmount(t *testing.T) {
	got, err := Amount("amount", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	_, err = Amount("amount", -1)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "amount", fieldErr.Field)
}

func TestBillingDay(t *testing.T) {
	for _, day := range []int{1, 15, 31} {
		got, err := BillingDay("billingDay", day)
		require.NoError(t, err)
		assert.Equal(t, day, got)
	}
	for _, day := range []int{0, 32, -5} {
		_, err := BillingDay("billingDay", day)
		assert.Error(t, err, "day %d", day)
	}
}

func TestKind(t *testing.T) {
	got, err := Kind("kind", "expense")
	require.NoError(t, err)
	assert.Equal(t, model.KindExpense, got)

	_, err = Kind("kind", "transfer")
	assert.Error(t, err)
}

func TestRecurrence(t *testing.T) {
	got, err := Recurrence("recurrence", "monthly")
	require.NoError(t, err)
	assert.Equal(t, model.RecurrenceMonthly, got)

	_, err = Recurrence("recurrence", "weekly")
	assert.Error(t, err)
}

func TestDateParsesInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	got, err := Date("occurredAt", "2024-02-29", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 29, got.Day())

	_, err = Date("occurredAt", "02/29/2024", loc)
	assert.Error(t, err)

	_, err = Date("occurredAt", "", loc)
	assert.Error(t, err)
}

func TestRequired(t *testing.T) {
	got, err := Required("name", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	_, err = Required("name", "")
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "name", fieldErr.Field)
}

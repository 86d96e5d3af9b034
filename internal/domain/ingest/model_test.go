package ingest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySet_Clamp(t *testing.T) {
	set := DefaultCategorySet()

	t.Run("valid label passes through", func(t *testing.T) {
		assert.Equal(t, "Food", set.Clamp(Expense, "Food"))
		assert.Equal(t, "Salary", set.Clamp(Income, "Salary"))
	})

	t.Run("cross-direction label clamps to catch-all", func(t *testing.T) {
		assert.Equal(t, "Others", set.Clamp(Expense, "Salary"))
		assert.Equal(t, "Others", set.Clamp(Income, "Food"))
	})

	t.Run("unknown label clamps to catch-all", func(t *testing.T) {
		assert.Equal(t, "Others", set.Clamp(Expense, "Cryptocurrency"))
	})
}

func TestPreviewBatch_SetCategory(t *testing.T) {
	batch := &PreviewBatch{
		ID:         uuid.New(),
		UserID:     "user-1",
		Categories: DefaultCategorySet(),
		Transactions: []NormalizedTransaction{
			{Description: "Uber Trip", Direction: Expense, Category: "Transport"},
		},
	}

	t.Run("valid override", func(t *testing.T) {
		require.NoError(t, batch.SetCategory(0, "Entertainment"))
		assert.Equal(t, "Entertainment", batch.Transactions[0].Category)
	})

	t.Run("rejects cross-direction label", func(t *testing.T) {
		err := batch.SetCategory(0, "Salary")
		assert.Error(t, err)
	})

	t.Run("rejects out-of-range index", func(t *testing.T) {
		assert.Error(t, batch.SetCategory(5, "Food"))
		assert.Error(t, batch.SetCategory(-1, "Food"))
	})
}

func TestPreviewBatch_Summarize(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	batch := &PreviewBatch{
		Categories: DefaultCategorySet(),
		Transactions: []NormalizedTransaction{
			{Date: day(16), Amount: decimal.RequireFromString("5000"), Direction: Income, Category: "Salary"},
			{Date: day(15), Amount: decimal.RequireFromString("67.89"), Direction: Expense, Category: "Transport"},
			{Date: day(20), Amount: decimal.RequireFromString("12.11"), Direction: Expense, Category: "Others"},
		},
		Skips: []SkippedRow{{Row: 4, Reason: SkipBadAmount}},
	}

	s := batch.Summarize()

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, "5000", s.TotalIncome.String())
	assert.Equal(t, "80", s.TotalExpenses.String())
	assert.Equal(t, "2024-01-15", s.EarliestDate)
	assert.Equal(t, "2024-01-20", s.LatestDate)
	assert.Equal(t, 1, s.Uncategorized)
}

func TestNormalizedTransaction_Strings(t *testing.T) {
	tx := NormalizedTransaction{
		Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("67.8"),
	}

	assert.Equal(t, "2024-01-15", tx.DateString())
	assert.Equal(t, "67.80", tx.AmountString())
}

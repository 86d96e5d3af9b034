package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/categorizer"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/normalizer"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/resolver"
)

func newTestPipeline(opts ...normalizer.Option) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(
		resolver.New(resolver.DefaultAliases()),
		normalizer.New(opts...),
		categorizer.NewEngine(categorizer.DefaultRules(), "Others"),
		ingest.DefaultCategorySet(),
		logger,
	)
}

func TestPipeline_Ingest(t *testing.T) {
	t.Run("normalizes a typical statement", func(t *testing.T) {
		csv := `Date,Description,Amount,Type
15/01/2024,Uber Trip,-67.89,
16/01/2024,MONTHLY SALARY,5000.00,Credit
17/01/2024,STARBUCKS COFFEE #4521,-4.50,Debit`

		batch, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 3)
		assert.Empty(t, batch.Skips)

		tx := batch.Transactions[0]
		assert.Equal(t, "2024-01-15", tx.DateString())
		assert.Equal(t, "Uber Trip", tx.Description)
		assert.Equal(t, "67.89", tx.AmountString())
		assert.Equal(t, ingest.Expense, tx.Direction)
		assert.Equal(t, "Transport", tx.Category)
		assert.Equal(t, "Imported from bank statement: Uber Trip", tx.Note)

		assert.Equal(t, ingest.Income, batch.Transactions[1].Direction)
		assert.Equal(t, "Salary", batch.Transactions[1].Category)
		assert.Equal(t, "Food", batch.Transactions[2].Category)
	})

	t.Run("skips incomplete rows with reasons", func(t *testing.T) {
		csv := `Date,Description,Amount
,No Date Row,10.00
2024-01-16,,10.00
2024-01-17,No Amount Row,
2024-01-18,Bad Amount Row,N/A
2024-01-19,Good Row,25.00`

		batch, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 1)
		require.Len(t, batch.Skips, 4)

		assert.Equal(t, ingest.SkipMissingDate, batch.Skips[0].Reason)
		assert.Equal(t, ingest.SkipMissingDescription, batch.Skips[1].Reason)
		assert.Equal(t, ingest.SkipMissingAmount, batch.Skips[2].Reason)
		assert.Equal(t, ingest.SkipBadAmount, batch.Skips[3].Reason)
		assert.Equal(t, "N/A", batch.Skips[3].Detail)
		assert.Equal(t, 3, batch.Skips[2].Row)
	})

	t.Run("preserves read order under concurrency", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("Date,Description,Amount\n")
		for i := 0; i < 500; i++ {
			fmt.Fprintf(&b, "2024-01-15,Row %04d,%d.00\n", i, i+1)
		}

		batch, err := newTestPipeline().WithWorkers(8).
			Ingest(context.Background(), "user-1", "statement.csv", []byte(b.String()))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 500)
		for i, tx := range batch.Transactions {
			assert.Equal(t, fmt.Sprintf("Row %04d", i), tx.Description)
		}
	})

	t.Run("substitutes processing day for bad dates", func(t *testing.T) {
		fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		csv := `Date,Description,Amount
garbage,Mystery Charge,-9.99`

		batch, err := newTestPipeline(normalizer.WithClock(func() time.Time { return fixed })).
			Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 1)
		assert.Equal(t, "2024-06-01", batch.Transactions[0].DateString())
	})

	t.Run("clamps categories to the direction's set", func(t *testing.T) {
		// "salary" keyword fires on an expense row; Salary is not an
		// expense label, so the row lands in the catch-all.
		csv := `Date,Description,Amount,Type
2024-01-15,SALARY ADVANCE REPAYMENT,-200.00,Debit`

		batch, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 1)
		assert.Equal(t, ingest.Expense, batch.Transactions[0].Direction)
		assert.Equal(t, "Others", batch.Transactions[0].Category)
	})

	t.Run("expense keyword labels survive the clamp", func(t *testing.T) {
		csv := `Date,Description,Amount,Type
2024-01-15,AMAZON MARKETPLACE ORDER,-89.00,Debit`

		batch, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

		require.NoError(t, err)
		require.Len(t, batch.Transactions, 1)
		assert.Equal(t, "Clothing", batch.Transactions[0].Category)
	})

	t.Run("propagates whole-file decode failures", func(t *testing.T) {
		_, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.pdf", []byte("%PDF"))

		assert.Error(t, err)
	})
}

type stubMatcher struct {
	category string
}

func (s stubMatcher) MatchCategory(_ context.Context, _, description string) (string, bool) {
	if strings.Contains(description, "ACME") {
		return s.category, true
	}
	return "", false
}

func TestPipeline_MerchantMatcher(t *testing.T) {
	csv := `Date,Description,Amount
2024-01-15,ACME POWER TOOLS,-89.00
2024-01-16,STARBUCKS COFFEE,-4.50`

	p := newTestPipeline().WithMerchantMatcher(stubMatcher{category: "Household"})
	batch, err := p.Ingest(context.Background(), "user-1", "statement.csv", []byte(csv))

	require.NoError(t, err)
	require.Len(t, batch.Transactions, 2)
	assert.Equal(t, "Household", batch.Transactions[0].Category)
	assert.Equal(t, "Food", batch.Transactions[1].Category)
}

func TestPipeline_GeneratedStatements(t *testing.T) {
	gofakeit.Seed(11)

	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	rows := 200
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%s,%s,%.2f\n",
			gofakeit.DateRange(
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			).Format("2006-01-02"),
			strings.ReplaceAll(gofakeit.Company(), ",", " "),
			gofakeit.Float64Range(-5000, 5000),
		)
	}

	batch, err := newTestPipeline().Ingest(context.Background(), "user-1", "statement.csv", []byte(b.String()))

	require.NoError(t, err)
	assert.Len(t, batch.Transactions, rows)
	for _, tx := range batch.Transactions {
		assert.False(t, tx.Amount.IsNegative())
		assert.True(t, batch.Categories.Valid(tx.Direction, tx.Category))
	}
}

func BenchmarkPipeline_Ingest(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("Date,Description,Amount\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "2024-01-15,Merchant %d,%d.50\n", i, i+1)
	}
	data := []byte(sb.String())
	p := newTestPipeline().WithWorkers(4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Ingest(context.Background(), "user-1", "statement.csv", data); err != nil {
			b.Fatal(err)
		}
	}
}

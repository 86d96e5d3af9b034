// Package ingest defines the core types produced by the bank statement
// ingestion pipeline: normalized transactions, per-row outcomes, and the
// user-editable preview batch held between upload and commit.
package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction indicates whether a transaction increases or decreases the
// user's balance.
type Direction string

const (
	Income  Direction = "Income"
	Expense Direction = "Expense"
)

// NormalizedTransaction is the canonical output unit of the pipeline.
// Amount is always a non-negative magnitude; Direction carries the sign.
type NormalizedTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Direction   Direction
	Category    string
	Note        string
}

// DateString renders the transaction date in the canonical YYYY-MM-DD form.
func (t NormalizedTransaction) DateString() string {
	return t.Date.UTC().Format("2006-01-02")
}

// AmountString renders the magnitude fixed to two fraction digits.
func (t NormalizedTransaction) AmountString() string {
	return t.Amount.StringFixed(2)
}

// SkipReason classifies why a row was dropped before normalization completed.
type SkipReason string

const (
	SkipMissingDate        SkipReason = "missing_date"
	SkipMissingDescription SkipReason = "missing_description"
	SkipMissingAmount      SkipReason = "missing_amount"
	SkipBadAmount          SkipReason = "bad_amount"
)

// SkippedRow records a dropped row so callers can log, count, or surface it
// instead of losing the information to early-continue control flow.
type SkippedRow struct {
	Row    int        // 1-indexed data row number, in read order
	Reason SkipReason
	Detail string // offending raw value, when there is one
}

// RowResult is the outcome of processing a single raw row: either a
// normalized transaction or a skip with its reason.
type RowResult struct {
	Transaction *NormalizedTransaction
	Skip        *SkippedRow
}

// Ok reports whether the row produced a transaction.
func (r RowResult) Ok() bool { return r.Transaction != nil }

// CategorySet is the closed set of category labels, split by direction.
// It is read-only configuration injected at construction time.
type CategorySet struct {
	Income   []string
	Expense  []string
	CatchAll string
}

// DefaultCategorySet returns the category labels the dashboard exposes.
func DefaultCategorySet() CategorySet {
	return CategorySet{
		Income: []string{"Salary", "Gift", "Bonus", "Interest", "Business Income", "Others"},
		Expense: []string{
			"Food", "Transport", "Utilities", "Cash Withdraw", "Health", "Loans",
			"Clothing", "Household", "Savings", "Entertainment", "Others",
		},
		CatchAll: "Others",
	}
}

// For returns the labels valid for the given direction.
func (c CategorySet) For(d Direction) []string {
	if d == Income {
		return c.Income
	}
	return c.Expense
}

// Valid reports whether label is a member of the direction's set.
func (c CategorySet) Valid(d Direction, label string) bool {
	for _, l := range c.For(d) {
		if l == label {
			return true
		}
	}
	return false
}

// Clamp returns label when it is valid for the direction, otherwise the
// catch-all label. Keyword rules may name a label from the other direction's
// set (e.g. "Salary" on an expense); the invariant is that a transaction's
// category is always drawn from its own direction's set.
func (c CategorySet) Clamp(d Direction, label string) string {
	if c.Valid(d, label) {
		return label
	}
	return c.CatchAll
}

// PreviewBatch is the ordered, user-editable result of one ingestion run.
// It is mutable only before commit and discarded afterwards.
type PreviewBatch struct {
	ID           uuid.UUID
	UserID       string
	Transactions []NormalizedTransaction
	Skips        []SkippedRow
	Categories   CategorySet
	CreatedAt    time.Time
}

// SetCategory overrides the category of the transaction at index i. The
// override must be valid for the transaction's direction.
func (b *PreviewBatch) SetCategory(i int, label string) error {
	if i < 0 || i >= len(b.Transactions) {
		return fmt.Errorf("row index %d out of range", i)
	}
	tx := &b.Transactions[i]
	if !b.Categories.Valid(tx.Direction, label) {
		return fmt.Errorf("category %q is not valid for %s transactions", label, tx.Direction)
	}
	tx.Category = label
	return nil
}

// Summary aggregates the batch for display: totals per direction, covered
// date range, and counts the preview surfaces alongside the rows.
type Summary struct {
	Rows          int
	Skipped       int
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	EarliestDate  string
	LatestDate    string
	Uncategorized int // rows that fell through to the catch-all label
}

// Summarize computes the batch summary.
func (b *PreviewBatch) Summarize() Summary {
	s := Summary{Rows: len(b.Transactions), Skipped: len(b.Skips)}
	var earliest, latest time.Time
	for _, tx := range b.Transactions {
		if tx.Direction == Income {
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		} else {
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount)
		}
		if earliest.IsZero() || tx.Date.Before(earliest) {
			earliest = tx.Date
		}
		if latest.IsZero() || tx.Date.After(latest) {
			latest = tx.Date
		}
		if tx.Category == b.Categories.CatchAll {
			s.Uncategorized++
		}
	}
	if !earliest.IsZero() {
		s.EarliestDate = earliest.UTC().Format("2006-01-02")
		s.LatestDate = latest.UTC().Format("2006-01-02")
	}
	return s
}

// Package normalizer converts the heterogeneous date and amount
// representations found in bank statements into canonical values.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
)

// serialEpochOffset is the day count between the spreadsheet epoch
// (December 30, 1899) and the Unix epoch.
const serialEpochOffset = 25569

// dateLayouts are tried in order. Day-first forms come before month-first,
// so an ambiguous 05/04/2024 resolves day-first and 15/01/2024 resolves at
// all; an unambiguous 01/15/2024 falls through to the month-first layout.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02.01.2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// Normalizer parses raw date and amount cells. The clock supplies the
// fallback date for unparseable inputs and is injectable for tests.
type Normalizer struct {
	clock func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the time source used for the bad-date fallback.
func WithClock(clock func() time.Time) Option {
	return func(n *Normalizer) { n.clock = clock }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{clock: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeDate parses a raw date cell into a UTC calendar date. Numeric
// input is treated as a spreadsheet serial day count. Unparseable input
// does not fail the row: the current processing date is substituted and
// parsed=false lets the caller log the substitution.
func (n *Normalizer) NormalizeDate(raw string) (date time.Time, parsed bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return n.today(), false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		secs := (serial - serialEpochOffset) * 86400
		return truncateToDay(time.Unix(int64(secs), 0).UTC()), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t.UTC()), true
		}
	}

	return n.today(), false
}

// NormalizeAmount strips currency symbols, thousands separators and
// whitespace from a raw amount cell and parses the remainder as a decimal.
// The returned value keeps its sign; callers split it into magnitude and
// direction. An unparseable amount is a hard error (the row is dropped).
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '(' || r == ')':
			return r
		default:
			return -1 // currency symbols, codes, grouping commas, spaces
		}
	}, raw)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}
	// "Rs.1,234.50" leaves a leading dot behind after symbol stripping.
	// Only drop it when another separator follows; a bare ".50" is a
	// sub-unit amount and keeps its dot.
	if strings.HasPrefix(cleaned, ".") && strings.Contains(cleaned[1:], ".") {
		cleaned = cleaned[1:]
	}
	cleaned = strings.TrimSuffix(cleaned, ".")

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("no numeric content in %q", raw)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// InferDirection determines the transaction direction. An explicit type
// column wins; income markers are checked before expense markers. Without a
// type column the sign of the amount decides, with Expense as the default.
func InferDirection(typeValue string, amount decimal.Decimal) ingest.Direction {
	t := strings.ToLower(typeValue)
	switch {
	case t != "" && (strings.Contains(t, "credit") || strings.Contains(t, "cr") || strings.Contains(t, "income")):
		return ingest.Income
	case t != "" && (strings.Contains(t, "debit") || strings.Contains(t, "dr") || strings.Contains(t, "expense")):
		return ingest.Expense
	case amount.Sign() > 0:
		return ingest.Income
	default:
		return ingest.Expense
	}
}

func (n *Normalizer) today() time.Time {
	return truncateToDay(n.clock().UTC())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

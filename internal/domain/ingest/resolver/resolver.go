// Package resolver maps the semantic fields of a transaction (date,
// description, amount, type) onto the raw columns of a decoded row using a
// prioritized alias table.
package resolver

import (
	"sort"
	"strings"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest/decoder"
)

// Field names a semantic transaction field.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldType        Field = "type"
)

// AliasTable holds, per semantic field, the acceptable header aliases in
// priority order. It is immutable configuration: build it once, inject it.
type AliasTable map[Field][]string

// DefaultAliases returns the header aliases common across bank statement
// exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldDate:        {"date", "transaction date", "txn date", "value date", "posting date"},
		FieldDescription: {"description", "details", "narration", "remarks", "particulars", "payee", "merchant"},
		FieldAmount:      {"amount", "debit", "credit", "withdrawal", "deposit", "value"},
		FieldType:        {"type", "transaction type", "debit/credit", "dr/cr"},
	}
}

// Resolver resolves semantic fields against raw rows.
type Resolver struct {
	aliases AliasTable
	// requireValue drops alias matches whose cell is empty, so resolution
	// falls through to the next alias (or reports the field missing).
	// The default keeps the original behavior: key presence wins, even for
	// an empty cell.
	requireValue bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRequireValue makes empty cells count as "not provided".
func WithRequireValue() Option {
	return func(r *Resolver) { r.requireValue = true }
}

// New creates a Resolver over the given alias table.
func New(aliases AliasTable, opts ...Option) *Resolver {
	r := &Resolver{aliases: aliases}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the value of the first alias (in declared priority order)
// whose name matches a row key, case-insensitively and ignoring surrounding
// whitespace. ok is false when no alias matches. Row keys are scanned in
// sorted order so two keys normalizing to the same alias resolve the same
// way on every call.
func (r *Resolver) Resolve(row decoder.Row, field Field) (string, bool) {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, alias := range r.aliases[field] {
		want := strings.ToLower(strings.TrimSpace(alias))
		for _, key := range keys {
			if strings.ToLower(strings.TrimSpace(key)) != want {
				continue
			}
			value := row[key]
			if r.requireValue && strings.TrimSpace(value) == "" {
				continue
			}
			return value, true
		}
	}
	return "", false
}

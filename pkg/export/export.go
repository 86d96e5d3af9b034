// Package export renders normalized transactions back out as CSV, in the
// same column vocabulary the importer understands.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
)

// row is the CSV projection of a normalized transaction. The headers match
// the importer's primary aliases so an exported file re-imports cleanly.
type row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	Category    string `csv:"Category"`
}

// WriteCSV writes the transactions to w with a header row.
func WriteCSV(w io.Writer, txs []ingest.NormalizedTransaction) error {
	rows := make([]row, len(txs))
	for i, tx := range txs {
		rows[i] = row{
			Date:        tx.DateString(),
			Description: tx.Description,
			Amount:      tx.AmountString(),
			Type:        string(tx.Direction),
			Category:    tx.Category,
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

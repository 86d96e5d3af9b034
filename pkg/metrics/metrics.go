// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsParsed counts rows that became normalized transactions.
	RowsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_import_rows_parsed_total",
		Help: "Number of statement rows successfully normalized.",
	})

	// RowsSkipped counts dropped rows, labelled by skip reason.
	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_import_rows_skipped_total",
		Help: "Number of statement rows dropped before normalization.",
	}, []string{"reason"})

	// DateFallbacks counts unparseable dates substituted with the
	// processing date.
	DateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_import_date_fallbacks_total",
		Help: "Number of unparseable dates replaced with the ingestion day.",
	})

	// CommitRecords counts persistence attempts, labelled by outcome.
	CommitRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_commit_records_total",
		Help: "Number of transaction records dispatched to the store.",
	}, []string{"outcome"})
)

// Package service orchestrates the bank statement ingestion pipeline:
// decode, resolve, normalize, categorize, collect into a preview batch.
package service

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/categorizer"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/decoder"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/normalizer"
	"github.com/Shihan7021/fintrack1/internal/domain/ingest/resolver"
	"github.com/Shihan7021/fintrack1/pkg/metrics"
)

// MerchantMatcher resolves a description against user-approved
// merchant-to-category mappings. Optional; nil disables the lookup.
type MerchantMatcher interface {
	MatchCategory(ctx context.Context, userID, description string) (string, bool)
}

// Pipeline composes the decoder, resolver, normalizer and categorizer over
// all rows of an uploaded file. All configuration is read-only after
// construction, so rows can be processed concurrently.
type Pipeline struct {
	resolver    *resolver.Resolver
	normalizer  *normalizer.Normalizer
	categorizer *categorizer.Engine
	categories  ingest.CategorySet
	merchants   MerchantMatcher
	logger      *slog.Logger
	workers     int
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	res *resolver.Resolver,
	norm *normalizer.Normalizer,
	cat *categorizer.Engine,
	categories ingest.CategorySet,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		resolver:    res,
		normalizer:  norm,
		categorizer: cat,
		categories:  categories,
		logger:      logger,
		workers:     runtime.GOMAXPROCS(0),
	}
}

// WithMerchantMatcher adds learned-rule support to the pipeline.
func (p *Pipeline) WithMerchantMatcher(m MerchantMatcher) *Pipeline {
	p.merchants = m
	return p
}

// WithWorkers overrides the per-row fan-out (minimum 1).
func (p *Pipeline) WithWorkers(n int) *Pipeline {
	if n > 0 {
		p.workers = n
	}
	return p
}

// Ingest decodes the file and normalizes every row into a preview batch.
// Whole-file failures (unsupported extension, corrupt file) are the only
// errors; row-level problems become skips retained on the batch. Batch
// order equals read order.
func (p *Pipeline) Ingest(ctx context.Context, userID, filename string, data []byte) (*ingest.PreviewBatch, error) {
	rows, err := decoder.Decode(filename, data)
	if err != nil {
		return nil, err
	}

	// Rows are independent: fan out over a fixed worker pool, landing each
	// outcome at its own index so read order survives.
	results := make([]ingest.RowResult, len(rows))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processRow(ctx, userID, rows[i], i+1)
			}
		}()
	}
	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	batch := &ingest.PreviewBatch{
		ID:         uuid.New(),
		UserID:     userID,
		Categories: p.categories,
		CreatedAt:  time.Now(),
	}
	for _, r := range results {
		if r.Ok() {
			batch.Transactions = append(batch.Transactions, *r.Transaction)
			metrics.RowsParsed.Inc()
			continue
		}
		batch.Skips = append(batch.Skips, *r.Skip)
		metrics.RowsSkipped.WithLabelValues(string(r.Skip.Reason)).Inc()
		p.logger.Debug("row skipped",
			slog.Int("row", r.Skip.Row),
			slog.String("reason", string(r.Skip.Reason)),
			slog.String("detail", r.Skip.Detail),
		)
	}

	p.logger.Info("statement ingested",
		slog.String("file", filename),
		slog.Int("rows", len(batch.Transactions)),
		slog.Int("skipped", len(batch.Skips)),
	)
	return batch, nil
}

// processRow resolves and normalizes a single raw row.
func (p *Pipeline) processRow(ctx context.Context, userID string, row decoder.Row, rowNum int) ingest.RowResult {
	skip := func(reason ingest.SkipReason, detail string) ingest.RowResult {
		return ingest.RowResult{Skip: &ingest.SkippedRow{Row: rowNum, Reason: reason, Detail: detail}}
	}

	rawDate, ok := p.resolver.Resolve(row, resolver.FieldDate)
	if !ok || strings.TrimSpace(rawDate) == "" {
		return skip(ingest.SkipMissingDate, "")
	}

	rawDesc, ok := p.resolver.Resolve(row, resolver.FieldDescription)
	if !ok || strings.TrimSpace(rawDesc) == "" {
		return skip(ingest.SkipMissingDescription, "")
	}

	rawAmount, ok := p.resolver.Resolve(row, resolver.FieldAmount)
	if !ok || strings.TrimSpace(rawAmount) == "" {
		return skip(ingest.SkipMissingAmount, "")
	}

	amount, err := normalizer.NormalizeAmount(rawAmount)
	if err != nil {
		return skip(ingest.SkipBadAmount, rawAmount)
	}

	rawType, _ := p.resolver.Resolve(row, resolver.FieldType)
	direction := normalizer.InferDirection(rawType, amount)

	date, parsed := p.normalizer.NormalizeDate(rawDate)
	if !parsed {
		metrics.DateFallbacks.Inc()
		p.logger.Debug("unparseable date, substituting processing day",
			slog.Int("row", rowNum),
			slog.String("value", rawDate),
		)
	}

	description := strings.TrimSpace(rawDesc)

	category, matched := "", false
	if p.merchants != nil {
		category, matched = p.merchants.MatchCategory(ctx, userID, description)
	}
	if !matched {
		category = p.categorizer.Categorize(description)
	}

	return ingest.RowResult{Transaction: &ingest.NormalizedTransaction{
		Date:        date,
		Description: description,
		Amount:      amount.Abs().Round(2),
		Direction:   direction,
		Category:    p.categories.Clamp(direction, category),
		Note:        "Imported from bank statement: " + rawDesc,
	}}
}

// Package commit persists a preview batch to the external document store.
// Each transaction becomes an independent record; the batch is best-effort
// all-or-nothing: partial failure is reported, never rolled back.
package commit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
	"github.com/Shihan7021/fintrack1/pkg/metrics"
)

// Record is the shape handed to the store's create operation. The store
// assigns the creation timestamp server-side.
type Record struct {
	Type        string `json:"type" firestore:"type"`
	Category    string `json:"category" firestore:"category"`
	Amount      string `json:"amount" firestore:"amount"` // fixed to 2 decimals
	Date        string `json:"date" firestore:"date"`     // YYYY-MM-DD
	Description string `json:"description" firestore:"description"`
	Comment     string `json:"comment" firestore:"comment"`
}

// Store is the external document store collaborator.
type Store interface {
	// CreateTransaction writes one record under the user's collection.
	CreateTransaction(ctx context.Context, userID string, rec Record) error
	// ListTransactions fetches the user's records, newest first.
	ListTransactions(ctx context.Context, userID string) ([]Record, error)
}

// Result aggregates the outcome of one commit.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Errors    []string
}

// PartialFailureError reports that some persistence calls failed after
// others succeeded. Written records are not compensated.
type PartialFailureError struct {
	Succeeded int
	Failed    int
	Reason    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("commit incomplete: %d saved, %d failed: %v", e.Succeeded, e.Failed, e.Reason)
}

func (e *PartialFailureError) Unwrap() error { return e.Reason }

// Committer dispatches create-record calls across a bounded worker pool.
type Committer struct {
	store   Store
	logger  *slog.Logger
	workers int
	limiter *rate.Limiter // nil = unthrottled
}

// NewCommitter creates a committer with the given fan-out.
func NewCommitter(store Store, workers int, logger *slog.Logger) *Committer {
	if workers < 1 {
		workers = 1
	}
	return &Committer{store: store, workers: workers, logger: logger}
}

// WithRateLimit throttles create-record calls to n per second, respecting
// the collaborator's rate limits on very large imports.
func (c *Committer) WithRateLimit(n float64) *Committer {
	if n > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(n), c.workers)
	}
	return c
}

// Commit persists every transaction in the batch as an independent record.
// The calls are unordered and concurrent; the caller gets the full tally.
// On any failure the Result is accompanied by a *PartialFailureError. There
// is no retry and no rollback.
func (c *Committer) Commit(ctx context.Context, batch *ingest.PreviewBatch) (*Result, error) {
	records := make([]Record, len(batch.Transactions))
	for i, tx := range batch.Transactions {
		records[i] = Record{
			Type:        string(tx.Direction),
			Category:    tx.Category,
			Amount:      tx.AmountString(),
			Date:        tx.DateString(),
			Description: tx.Description,
			Comment:     tx.Note,
		}
	}

	var (
		mu       sync.Mutex
		result   = Result{Attempted: len(records)}
		firstErr error
	)

	jobs := make(chan Record)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if c.limiter != nil {
					if err := c.limiter.Wait(ctx); err != nil {
						c.record(&mu, &result, &firstErr, err)
						continue
					}
				}
				err := c.store.CreateTransaction(ctx, batch.UserID, rec)
				c.record(&mu, &result, &firstErr, err)
			}
		}()
	}
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	if result.Failed > 0 {
		c.logger.Warn("batch commit incomplete",
			slog.Int("succeeded", result.Succeeded),
			slog.Int("failed", result.Failed),
			slog.Any("reason", firstErr),
		)
		return &result, &PartialFailureError{
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
			Reason:    firstErr,
		}
	}

	c.logger.Info("batch committed", slog.Int("records", result.Succeeded))
	return &result, nil
}

func (c *Committer) record(mu *sync.Mutex, result *Result, firstErr *error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if err == nil {
		result.Succeeded++
		metrics.CommitRecords.WithLabelValues("ok").Inc()
		return
	}
	result.Failed++
	result.Errors = append(result.Errors, err.Error())
	metrics.CommitRecords.WithLabelValues("error").Inc()
	if *firstErr == nil {
		*firstErr = err
	}
}

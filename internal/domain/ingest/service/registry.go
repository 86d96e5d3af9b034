package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
)

// ErrPreviewNotFound is returned when a preview has expired, been
// committed, or never existed.
var ErrPreviewNotFound = errors.New("preview batch not found")

// Registry holds preview batches between upload and commit. Batches are
// discarded on commit, cancel, or TTL expiry.
type Registry struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*ingest.PreviewBatch
	ttl     time.Duration
	clock   func() time.Time
}

// NewRegistry creates a registry with the given batch lifetime.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		batches: make(map[uuid.UUID]*ingest.PreviewBatch),
		ttl:     ttl,
		clock:   time.Now,
	}
}

// Put stores a batch under its ID.
func (r *Registry) Put(batch *ingest.PreviewBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
}

// Get returns the batch for the given ID and user.
func (r *Registry) Get(id uuid.UUID, userID string) (*ingest.PreviewBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok || batch.UserID != userID {
		return nil, ErrPreviewNotFound
	}
	return batch, nil
}

// Remove discards a batch.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
}

// SweepExpired drops batches older than the TTL and reports how many went.
func (r *Registry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.clock().Add(-r.ttl)
	removed := 0
	for id, batch := range r.batches {
		if batch.CreatedAt.Before(cutoff) {
			delete(r.batches, id)
			removed++
		}
	}
	return removed
}

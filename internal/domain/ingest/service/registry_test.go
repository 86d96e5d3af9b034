package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shihan7021/fintrack1/internal/domain/ingest"
)

func newBatch(userID string, createdAt time.Time) *ingest.PreviewBatch {
	return &ingest.PreviewBatch{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

func TestRegistry(t *testing.T) {
	t.Run("round-trips a batch", func(t *testing.T) {
		r := NewRegistry(time.Hour)
		batch := newBatch("user-1", time.Now())
		r.Put(batch)

		got, err := r.Get(batch.ID, "user-1")

		require.NoError(t, err)
		assert.Same(t, batch, got)
	})

	t.Run("rejects the wrong user", func(t *testing.T) {
		r := NewRegistry(time.Hour)
		batch := newBatch("user-1", time.Now())
		r.Put(batch)

		_, err := r.Get(batch.ID, "user-2")

		assert.ErrorIs(t, err, ErrPreviewNotFound)
	})

	t.Run("remove discards the batch", func(t *testing.T) {
		r := NewRegistry(time.Hour)
		batch := newBatch("user-1", time.Now())
		r.Put(batch)
		r.Remove(batch.ID)

		_, err := r.Get(batch.ID, "user-1")

		assert.ErrorIs(t, err, ErrPreviewNotFound)
	})

	t.Run("unknown id misses", func(t *testing.T) {
		r := NewRegistry(time.Hour)

		_, err := r.Get(uuid.New(), "user-1")

		assert.ErrorIs(t, err, ErrPreviewNotFound)
	})
}

func TestRegistry_SweepExpired(t *testing.T) {
	r := NewRegistry(time.Hour)
	now := time.Now()
	r.clock = func() time.Time { return now }

	stale := newBatch("user-1", now.Add(-2*time.Hour))
	fresh := newBatch("user-1", now.Add(-time.Minute))
	r.Put(stale)
	r.Put(fresh)

	removed := r.SweepExpired()

	assert.Equal(t, 1, removed)
	_, err := r.Get(stale.ID, "user-1")
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	_, err = r.Get(fresh.ID, "user-1")
	assert.NoError(t, err)
}

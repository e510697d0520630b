package runstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipcast/internal/aggregate"
	"shipcast/internal/series"
)

func TestPutGet(t *testing.T) {
	store := New(time.Hour)

	id := store.Put(&Run{Year: 2024})
	require.NotEmpty(t, id)

	run, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 2024, run.Year)
	assert.Equal(t, id, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestGetErrors(t *testing.T) {
	store := New(time.Hour)

	_, err := store.Get("")
	assert.ErrorIs(t, err, ErrNoBaseline)

	_, err = store.Get("1f4c9a70-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestUpdate(t *testing.T) {
	store := New(time.Hour)
	id := store.Put(&Run{})

	err := store.Update(id, func(run *Run) error {
		run.Current = []aggregate.Result{{Key: series.NewGroupKey("Jakarta")}}
		return nil
	})
	require.NoError(t, err)

	run, err := store.Get(id)
	require.NoError(t, err)
	require.Len(t, run.Current, 1)

	assert.ErrorIs(t, store.Update("", func(*Run) error { return nil }), ErrNoBaseline)
	assert.ErrorIs(t, store.Update("missing", func(*Run) error { return nil }), ErrRunNotFound)
}

func TestEvictExpired(t *testing.T) {
	store := New(time.Minute)

	current := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	staleID := store.Put(&Run{})
	current = current.Add(30 * time.Second)
	freshID := store.Put(&Run{})

	current = current.Add(45 * time.Second)
	store.evictExpired()

	_, err := store.Get(staleID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.Get(freshID)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

func TestSnapshotStore(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.Latest()
	assert.ErrorIs(t, err, punch.ErrSnapshotUnavailable)

	first := punch.NewSnapshot(nil, time.Now(), 0)
	store.Replace(first)

	got, err := store.Latest()
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := punch.NewSnapshot(nil, time.Now(), 3)
	store.Replace(second)

	got, err = store.Latest()
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 3, got.DroppedRows)
}

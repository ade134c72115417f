package progress

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxhvl/genesix/pkgs/catalog"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		st := DefaultState().WithCompleted(catalog.TaskRef{ChallengeID: 1, TaskID: 2}, 20)
		require.NoError(t, store.Save(ctx, testPlayer, st))

		loaded, found, err := store.Load(ctx, testPlayer)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, st, loaded)
	})

	t.Run("MissingRecord", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		_, found, err := store.Load(ctx, testPlayer)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("CorruptRecordReportedAbsent", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		require.NoError(t, err)

		path := filepath.Join(dir, "progress-"+testPlayer+".json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, found, err := store.Load(ctx, testPlayer)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("PerPlayerRecords", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		other := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
		require.NoError(t, store.Save(ctx, testPlayer, DefaultState().WithDay(3)))
		require.NoError(t, store.Save(ctx, other, DefaultState()))

		st, found, err := store.Load(ctx, testPlayer)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 3, st.CurrentDay)

		st, found, err = store.Load(ctx, other)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 1, st.CurrentDay)
	})
}

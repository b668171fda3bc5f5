package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maine/idx_news_movers/internal/news"
)

func TestFileStore_Load_Save(t *testing.T) {
	tmpDir := t.TempDir()
	statePath := filepath.Join(tmpDir, "sent_items.json")
	store := NewFileStore(statePath)
	ctx := context.Background()

	t.Run("load non-existent file returns empty state", func(t *testing.T) {
		st, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Len())
	})

	t.Run("save and load round trip", func(t *testing.T) {
		st := news.NewState("aaa", "bbb", "ccc")
		require.NoError(t, store.Save(ctx, st))

		loaded, err := NewFileStore(statePath).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, st.Recent(10), loaded.Recent(10))
	})

	t.Run("load corrupted JSON returns empty state", func(t *testing.T) {
		corruptedPath := filepath.Join(tmpDir, "corrupted.json")
		require.NoError(t, os.WriteFile(corruptedPath, []byte("invalid json {"), 0o644))

		st, err := NewFileStore(corruptedPath).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Len())

		_, statErr := os.Stat(corruptedPath + ".broken")
		assert.NoError(t, statErr, "corrupt file should be kept as .broken")
	})

	t.Run("schema mismatch returns empty state", func(t *testing.T) {
		path := filepath.Join(tmpDir, "object.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"sent_articles": [1, 2]}`), 0o644))

		st, err := NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Len())
	})

	t.Run("hand edited file with blanks and duplicates", func(t *testing.T) {
		path := filepath.Join(tmpDir, "edited.json")
		require.NoError(t, os.WriteFile(path, []byte(`["a", "", "b", "a", "  c  "]`), 0o644))

		st, err := NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []news.Fingerprint{"a", "b", "c"}, st.Recent(10))
	})

	t.Run("empty file returns empty state", func(t *testing.T) {
		path := filepath.Join(tmpDir, "blank.json")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

		st, err := NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, st.Len())
	})

	t.Run("create directory if not exists", func(t *testing.T) {
		nestedPath := filepath.Join(tmpDir, "nested", "path", "state.json")
		require.NoError(t, NewFileStore(nestedPath).Save(ctx, news.NewState("x")))

		_, err := os.Stat(nestedPath)
		assert.NoError(t, err)
	})
}

func TestFileStore_Save_TruncatesToMostRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	store := NewFileStore(path)
	ctx := context.Background()

	var st news.State
	total := news.MaxStateEntries + 250
	for i := 0; i < total; i++ {
		st.Add(news.Fingerprint(fmt.Sprintf("fp-%06d", i)))
	}
	require.NoError(t, store.Save(ctx, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, news.MaxStateEntries)
	assert.Equal(t, "fp-000250", raw[0])
	assert.Equal(t, fmt.Sprintf("fp-%06d", total-1), raw[len(raw)-1])

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, news.MaxStateEntries, loaded.Len())
	assert.False(t, loaded.Contains("fp-000000"))
	assert.True(t, loaded.Contains(news.Fingerprint(fmt.Sprintf("fp-%06d", total-1))))
}

func TestFileStore_Save_Atomic(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "atomic.json")
	store := NewFileStore(statePath)

	require.NoError(t, store.Save(context.Background(), news.NewState("test")))

	_, err := os.Stat(statePath)
	assert.NoError(t, err)
	_, err = os.Stat(statePath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestFileStore_Save_ReplacesPriorContent(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "replace.json")
	store := NewFileStore(statePath)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, news.NewState("old-1", "old-2")))
	require.NoError(t, store.Save(ctx, news.NewState("new-1")))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []news.Fingerprint{"new-1"}, loaded.Recent(10))
}

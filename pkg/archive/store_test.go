package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBlobDeduplicates(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	hash1, err := store.StoreBlob([]byte("evidence"))
	require.NoError(t, err)
	hash2, err := store.StoreBlob([]byte("evidence"))
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)

	data, err := store.ReadBlob(hash1)
	require.NoError(t, err)
	assert.Equal(t, "evidence", string(data))
}

func TestArchiveRunWritesIndex(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	runDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "run.json"), []byte(`{"id":"r1"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "audit.json"), []byte(`[]`), 0644))

	index, err := store.ArchiveRun(runDir, "r1")
	require.NoError(t, err)
	assert.Len(t, index.Objects, 2)

	loaded, err := store.LoadRunIndex("r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", loaded.RunID)
	assert.Equal(t, index.Objects, loaded.Objects)

	data, err := store.ReadBlob(loaded.Objects["run.json"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r1"}`, string(data))
}

func TestArchiveRunRejectsEmptyDir(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.ArchiveRun(t.TempDir(), "r2")
	assert.Error(t, err)
}

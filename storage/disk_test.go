package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndResolve(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Store([]byte("fake image"), "proofs", "shot.jpg")
	require.NoError(t, err)
	assert.True(t, filepath.Ext(ref) == ".jpg")
	assert.Contains(t, ref, "/storage/proofs/")

	abs, err := store.Resolve(ref)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "fake image", string(data))
}

func TestResolveFullURL(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Store([]byte("x"), "receipts", "r.png")
	require.NoError(t, err)

	abs, err := store.Resolve("http://localhost:3000" + ref)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
}

func TestResolveAbsolutePath(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	f := filepath.Join(t.TempDir(), "direct.jpg")
	require.NoError(t, os.WriteFile(f, []byte("y"), 0o644))

	abs, err := store.Resolve(f)
	require.NoError(t, err)
	assert.Equal(t, f, abs)
}

func TestResolveMissingFile(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("/storage/proofs/nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("/storage/../../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveEmptyReference(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)
}

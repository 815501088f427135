package storageserver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	return NewStorage(filepath.Join(dir, "root"), filepath.Join(dir, "shadow"))
}

func TestWriteRead_RoundTrips(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("a.txt", []byte("hello")))

	got, err := s.Read("a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestRead_MissingFileReadsEmpty(t *testing.T) {
	s := newTestStorage(t)
	got, err := s.Read("nope.txt")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWrite_CreatesNestedParents(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("dir/sub/a.txt", []byte("x")))

	got, err := s.Read("dir/sub/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestUndo_RestoresPreImage(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("a.txt", []byte("X.")))
	require.NoError(t, s.CapturePreImage("a.txt"))
	require.NoError(t, s.Write("a.txt", []byte("XY.")))

	require.NoError(t, s.Undo("a.txt"))

	got, _ := s.Read("a.txt")
	assert.Equal(t, []byte("X."), got)
}

func TestUndo_NoShadowReturnsErrNoUndo(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("a.txt", []byte("X.")))

	err := s.Undo("a.txt")
	assert.ErrorIs(t, err, ErrNoUndo)
}

func TestUndo_SecondUndoDoesNotRestoreTheOverwrittenVersion(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("a.txt", []byte("X.")))
	require.NoError(t, s.CapturePreImage("a.txt"))
	require.NoError(t, s.Write("a.txt", []byte("XY.")))
	require.NoError(t, s.Undo("a.txt"))

	require.NoError(t, s.Undo("a.txt"))

	got, _ := s.Read("a.txt")
	assert.Equal(t, []byte("X."), got, "undo never captures a new shadow, so a second undo cannot bring back XY.")
}

func TestInventory_ListsRegularFilesOnly(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Write("a.txt", []byte("a")))
	require.NoError(t, s.Write("dir/b.txt", []byte("b")))

	names, err := s.Inventory()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "dir/b.txt"}, names)
}

func TestInventory_MissingRootReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(filepath.Join(dir, "does-not-exist"), filepath.Join(dir, "shadow"))
	names, err := s.Inventory()
	require.NoError(t, err)
	assert.Nil(t, names)
}

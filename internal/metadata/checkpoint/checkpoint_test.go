package checkpoint

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindsh/dfscore/internal/metadata"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.dat")

	now := time.Now().Truncate(time.Second).UTC()
	r1 := metadata.NewRecord("a.txt", "alice", 0, now)
	r1.Grant("bob", metadata.RightsRead)
	r2 := metadata.NewRecord("b.txt", "carol", 1, now)
	r2.WordCount = 12
	r2.CharCount = 80

	require.NoError(t, Save(path, []*metadata.Record{r1, r2}))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "a.txt", loaded[0].Filename)
	assert.Equal(t, "alice", loaded[0].Owner)
	assert.Equal(t, now, loaded[0].Created)
	assert.Len(t, loaded[0].Access, 2)
	assert.Equal(t, metadata.RightsRead, loaded[0].RightsFor("bob"))

	assert.Equal(t, "b.txt", loaded[1].Filename)
	assert.Equal(t, int32(12), loaded[1].WordCount)
	assert.Equal(t, int32(80), loaded[1].CharCount)
	assert.Equal(t, int32(1), loaded[1].SSIndex)
}

func TestLoad_MissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	records, err := Load(filepath.Join(dir, "nope.dat"))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSave_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.dat")
	now := time.Now().Truncate(time.Second).UTC()

	require.NoError(t, Save(path, []*metadata.Record{metadata.NewRecord("a.txt", "alice", 0, now)}))
	require.NoError(t, Save(path, []*metadata.Record{metadata.NewRecord("b.txt", "bob", 0, now)}))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "b.txt", loaded[0].Filename)
}

package nameserver

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindsh/dfscore/internal/metadata"
	"github.com/arvindsh/dfscore/internal/registry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(registry.New(0), 4, filepath.Join(t.TempDir(), "checkpoint.dat"))
}

func TestCreate_RejectsDuplicateFilename(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("a.txt", "alice", 0, time.Now())
	require.NoError(t, err)

	_, err = s.Create("a.txt", "alice", 0, time.Now())
	assert.ErrorIs(t, err, ErrExists)
}

func TestDelete_EvictsFromLRU(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("a.txt", "alice", 0, time.Now())
	require.NoError(t, err)
	_, err = s.Info("a.txt")
	require.NoError(t, err)

	require.NoError(t, s.Delete("a.txt"))

	_, err = s.Info("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistenceRoundTrip_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.dat")

	s1 := NewStore(registry.New(0), 4, path)
	_, err := s1.Create("a.txt", "alice", 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, s1.Grant("a.txt", "bob", metadata.RightsRead))

	s2 := NewStore(registry.New(0), 4, path)
	require.NoError(t, s2.LoadCheckpoint())

	r, err := s2.Info("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alice", r.Owner)
	assert.Equal(t, metadata.RightsRead, r.RightsFor("bob"))
}

func TestLRU_NeverReturnsStaleRecordAfterDelete(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("a.txt", "alice", 0, time.Now())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Info("a.txt")
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete("a.txt"))
	_, err = s.Info("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

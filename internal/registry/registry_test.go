package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_AssignsStableIncreasingIndices(t *testing.T) {
	r := New(0)
	i0, err := r.Register("10.0.0.1", 9002, 9001)
	require.NoError(t, err)
	i1, err := r.Register("10.0.0.2", 9002, 9001)
	require.NoError(t, err)

	assert.Equal(t, int32(0), i0)
	assert.Equal(t, int32(1), i1)
	assert.Equal(t, 2, r.Len())
}

func TestRegister_RespectsMaxCapacity(t *testing.T) {
	r := New(1)
	_, err := r.Register("10.0.0.1", 9002, 9001)
	require.NoError(t, err)

	_, err = r.Register("10.0.0.2", 9002, 9001)
	assert.ErrorIs(t, err, ErrFull)
}

func TestSetActive_NeverReusesOrRemovesSlot(t *testing.T) {
	r := New(0)
	idx, _ := r.Register("10.0.0.1", 9002, 9001)
	r.SetActive(idx, false)

	d, ok := r.Get(idx)
	require.True(t, ok)
	assert.False(t, d.Active)
	assert.Equal(t, "10.0.0.1", d.IP)

	newIdx, _ := r.Register("10.0.0.2", 9002, 9001)
	assert.NotEqual(t, idx, newIdx)
	assert.Equal(t, 2, r.Len())
}

func TestHeartbeat_ReactivatesMatchingEntry(t *testing.T) {
	r := New(0)
	idx, _ := r.Register("10.0.0.1", 9002, 9001)
	r.SetActive(idx, false)

	r.Heartbeat("10.0.0.1")

	d, _ := r.Get(idx)
	assert.True(t, d.Active)
}

func TestFirstActive_SkipsInactiveEntries(t *testing.T) {
	r := New(0)
	i0, _ := r.Register("10.0.0.1", 9002, 9001)
	i1, _ := r.Register("10.0.0.2", 9002, 9001)
	r.SetActive(i0, false)

	active, ok := r.FirstActive()
	require.True(t, ok)
	assert.Equal(t, i1, active)
}

func TestFirstActive_NoneActive(t *testing.T) {
	r := New(0)
	idx, _ := r.Register("10.0.0.1", 9002, 9001)
	r.SetActive(idx, false)

	_, ok := r.FirstActive()
	assert.False(t, ok)
}

func TestGet_OutOfRange(t *testing.T) {
	r := New(0)
	_, ok := r.Get(5)
	assert.False(t, ok)
}

func TestAll_ReturnsIndependentSnapshot(t *testing.T) {
	r := New(0)
	r.Register("10.0.0.1", 9002, 9001)

	snap := r.All()
	snap[0].Active = false

	d, _ := r.Get(0)
	assert.True(t, d.Active)
}

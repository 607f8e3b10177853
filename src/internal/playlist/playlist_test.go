package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshContainerIDsStable(t *testing.T) {
	var s State

	removed := s.Refresh([]uint32{10, 20, 30})
	require.Empty(t, removed)
	assert.Equal(t, []Entry{{10, 1}, {20, 2}, {30, 3}}, s.Entries())

	removed = s.Refresh([]uint32{10, 30})
	assert.Equal(t, []uint32{20}, removed)
	assert.Equal(t, []Entry{{10, 1}, {30, 3}}, s.Entries())

	removed = s.Refresh([]uint32{10, 30, 40})
	assert.Empty(t, removed)
	assert.Equal(t, []Entry{{10, 1}, {30, 3}, {40, 4}}, s.Entries())
}

func TestRefreshContainerIDNeverReused(t *testing.T) {
	var s State
	s.Refresh([]uint32{1, 2, 3})
	s.Refresh([]uint32{1, 3})
	removed := s.Refresh([]uint32{1, 2, 3})
	assert.Empty(t, removed)

	ids := make(map[uint32]bool)
	for _, e := range s.Entries() {
		assert.False(t, ids[e.ContainerID], "container id %d reused", e.ContainerID)
		ids[e.ContainerID] = true
	}
}

func TestRefreshRemovedAreFormerEntriesNotInNewIDs(t *testing.T) {
	var s State
	s.Refresh([]uint32{1, 2, 3, 4, 5})
	prior := map[uint32]bool{}
	for _, e := range s.Entries() {
		prior[e.ItemID] = true
	}

	newIDs := []uint32{1, 3, 5}
	newSet := map[uint32]bool{1: true, 3: true, 5: true}
	removed := s.Refresh(newIDs)

	for _, id := range removed {
		assert.True(t, prior[id], "removed id %d was never a prior entry", id)
		assert.False(t, newSet[id], "removed id %d is present in the new ids", id)
	}
}

func TestRefreshEmptyThenPopulate(t *testing.T) {
	var s State
	removed := s.Refresh(nil)
	assert.Empty(t, removed)
	assert.Empty(t, s.Entries())

	s.Refresh([]uint32{100})
	assert.Equal(t, []Entry{{100, 1}}, s.Entries())
}

// Package playlist implements the per-playlist diff engine: it tracks a
// playlist's snapshot of entries and, on each refresh against the
// library adapter's authoritative track-id sequence, assigns container
// ids to newly observed tracks and reports which tracks disappeared.
package playlist

import "sync"

// Entry pairs a track item id with its playlist-local container id.
type Entry struct {
	ItemID      uint32
	ContainerID uint32
}

// State holds one playlist's diff-engine snapshot. The zero value is
// ready to use. Refresh serializes concurrent callers for the same
// State, so a playlist's refresh is single-flight.
type State struct {
	mu              sync.Mutex
	entries         []Entry
	nextContainerID uint32
}

// Refresh walks ids (the adapter's current authoritative order) against
// the stored snapshot with twin indices, in lockstep, merging two
// ordered sequences without resorting either one.
// Matching entries are kept; on a mismatch the stored entry is dropped,
// and its item id is reported in removed only if it is absent from ids.
// A dropped entry whose id is still in ids (displaced by an insertion or
// a reorder) is re-added below with a new container id. Any ids left
// over once the stored side is exhausted are appended as fresh entries
// with freshly minted, ever-increasing container ids.
func (s *State) Refresh(ids []uint32) (removed []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}

	var kept []Entry
	i, j := 0, 0
	for i < len(ids) && j < len(s.entries) {
		if ids[i] == s.entries[j].ItemID {
			kept = append(kept, s.entries[j])
			i++
			j++
			continue
		}
		if !present[s.entries[j].ItemID] {
			removed = append(removed, s.entries[j].ItemID)
		}
		j++
	}
	// any stored entries left over (ids exhausted first) also vanished
	for ; j < len(s.entries); j++ {
		if !present[s.entries[j].ItemID] {
			removed = append(removed, s.entries[j].ItemID)
		}
	}
	// any incoming ids left over (stored side exhausted first) are new
	for ; i < len(ids); i++ {
		s.nextContainerID++
		kept = append(kept, Entry{ItemID: ids[i], ContainerID: s.nextContainerID})
	}

	s.entries = kept
	return removed
}

// Entries returns the current snapshot, in order.
func (s *State) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Package revision implements the monotonic revision counter and
// long-poll wait that backs the DAAP /update endpoint: a condition
// variable broadcast lets many concurrent long-pollers be woken off
// one bump, instead of each needing its own notification channel.
package revision

import "sync"

// defaultHistory bounds how many past revisions' deletion sets are
// retained; DeletedSince reports the empty set for older ranges.
const defaultHistory = 64

// Manager holds the global revision counter and its per-revision
// deletion history for the root track set.
type Manager struct {
	mu      sync.Mutex
	cond    *sync.Cond
	current int
	history int

	deletions map[int]map[uint32]struct{}
	oldest    int

	stopped bool
}

// New creates a Manager whose current revision starts at 1, per
// spec: the first answer to /update after a change returns 2.
func New() *Manager {
	m := &Manager{current: 1, history: defaultHistory, deletions: make(map[int]map[uint32]struct{})}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Current returns the current revision.
func (m *Manager) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Bump atomically increments the revision, records deletedIDs as having
// disappeared in the new revision, prunes history beyond the retention
// window, and wakes every waiter.
func (m *Manager) Bump(deletedIDs []uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current++
	set := make(map[uint32]struct{}, len(deletedIDs))
	for _, id := range deletedIDs {
		set[id] = struct{}{}
	}
	m.deletions[m.current] = set

	for m.current-m.oldest > m.history {
		delete(m.deletions, m.oldest)
		m.oldest++
	}

	m.cond.Broadcast()
	return m.current
}

// WaitForUpdate blocks until the revision exceeds clientRev or the
// manager is stopped. stopped reports whether it returned due to
// shutdown; the router maps that to a 404.
func (m *Manager) WaitForUpdate(clientRev int) (newRev int, stopped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.current <= clientRev && !m.stopped {
		m.cond.Wait()
	}
	return m.current, m.stopped
}

// DeletedSince returns the union of deletions recorded for revisions
// (fromRev+1)..current. Ranges that fall outside the retained history
// produce the empty set.
func (m *Manager) DeletedSince(fromRev int) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fromRev+1 < m.oldest {
		return []uint32{}
	}

	seen := make(map[uint32]struct{})
	for rev := fromRev + 1; rev <= m.current; rev++ {
		for id := range m.deletions[rev] {
			seen[id] = struct{}{}
		}
	}
	out := make([]uint32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// Stop marks the manager stopped and wakes every waiter; subsequent
// WaitForUpdate calls return immediately with stopped=true.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.cond.Broadcast()
}

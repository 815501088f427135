package nameserver

import (
	"sync"
	"time"
)

// clientEntry is one connected client's session-table row. Ephemeral:
// discarded on disconnect, never persisted.
type clientEntry struct {
	Username  string
	Peer      string
	ConnID    string
	Connected time.Time
}

// clientTable tracks currently connected clients, keyed by connection ID
// so that the same username can hold multiple simultaneous sessions.
type clientTable struct {
	mu      sync.Mutex
	entries map[string]*clientEntry
}

func newClientTable() *clientTable {
	return &clientTable{entries: make(map[string]*clientEntry)}
}

// Register adds or replaces the entry for connID.
func (t *clientTable) Register(connID, username, peer string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[connID] = &clientEntry{
		Username:  username,
		Peer:      peer,
		ConnID:    connID,
		Connected: time.Now(),
	}
}

// Unregister removes connID's entry on disconnect.
func (t *clientTable) Unregister(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, connID)
}

// Usernames returns the distinct set of currently connected usernames,
// used by ListUsers.
func (t *clientTable) Usernames() map[string]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		out[e.Username] = struct{}{}
	}
	return out
}

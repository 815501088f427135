// Package registry implements the name server's storage-server registry:
// a dense, append-only sequence of SS descriptors. A FileRecord's ss_index
// is the position of its owning SS within this sequence; positions are
// never reused even when an entry goes inactive.
package registry

import (
	"fmt"
	"sync"
	"time"
)

// Descriptor is one storage server's registration.
type Descriptor struct {
	IP               string
	NMFacingPort     int32
	ClientFacingPort int32
	Active           bool
	LastHeartbeat    time.Time
}

// Registry is the storage-server registry. It is safe for concurrent use.
// The name server calls it without holding the store's mutex, so
// Registry's own mutex is the only lock guarding its entries.
type Registry struct {
	mu      sync.Mutex
	entries []Descriptor
	max     int
}

// New creates an empty registry bounded at max entries.
func New(max int) *Registry {
	return &Registry{max: max}
}

// ErrFull is returned by Register when the registry is at capacity.
var ErrFull = fmt.Errorf("storage-server registry is full")

// Register appends a new descriptor and returns its stable index.
func (r *Registry) Register(ip string, nmFacingPort, clientFacingPort int32) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.entries) >= r.max {
		return 0, ErrFull
	}

	r.entries = append(r.entries, Descriptor{
		IP:               ip,
		NMFacingPort:     nmFacingPort,
		ClientFacingPort: clientFacingPort,
		Active:           true,
		LastHeartbeat:    time.Now(),
	})
	return int32(len(r.entries) - 1), nil
}

// Get returns the descriptor at index, or false if index is out of range.
func (r *Registry) Get(index int32) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || int(index) >= len(r.entries) {
		return Descriptor{}, false
	}
	return r.entries[index], true
}

// Heartbeat refreshes LastHeartbeat for the entry matching ip. Advisory
// only: a miss is not an error, since heartbeats never gate correctness.
func (r *Registry) Heartbeat(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].IP == ip {
			r.entries[i].LastHeartbeat = time.Now()
			r.entries[i].Active = true
			return
		}
	}
}

// FirstActive returns the index of the first active entry, used by the
// NM's create op selection policy: linear scan, no load balancing.
func (r *Registry) FirstActive() (int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].Active {
			return int32(i), true
		}
	}
	return 0, false
}

// SetActive flips the active flag for index without reusing or removing
// the slot.
func (r *Registry) SetActive(index int32, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || int(index) >= len(r.entries) {
		return
	}
	r.entries[index].Active = active
}

// Len returns the number of registered entries, active or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// All returns a snapshot of every descriptor, for VIEW/INFO rendering.
func (r *Registry) All() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Descriptor(nil), r.entries...)
}

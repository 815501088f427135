// Package session mints correlation identifiers for inbound connections
// so that a single client conversation can be traced across log lines
// on both the name server and storage servers.
package session

import "github.com/google/uuid"

// NewID returns a fresh correlation ID, short enough to be read in logs
// without truncation.
func NewID() string {
	return uuid.NewString()
}

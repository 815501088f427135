package wire

import "net"

// Conn pairs a net.Conn with the record framing so callers read and write
// whole Records instead of managing length prefixes themselves.
type Conn struct {
	net.Conn
}

// NewConn wraps an accepted or dialed connection for record framing.
func NewConn(c net.Conn) *Conn {
	return &Conn{Conn: c}
}

// ReadRecord decodes the next framed Record from the connection.
func (c *Conn) ReadRecord() (*Record, error) {
	return Decode(c.Conn)
}

// WriteRecord encodes and sends a Record on the connection.
func (c *Conn) WriteRecord(r *Record) error {
	return Encode(c.Conn, r)
}

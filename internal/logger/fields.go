package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the NM, SS and client.
// Use these keys consistently so log lines from all three roles can be
// aggregated and queried together.
const (
	// Session & correlation
	KeyConnID   = "conn_id"   // per-connection correlation ID (google/uuid)
	KeyPeer     = "peer"      // remote TCP address of the peer
	KeyUsername = "username"  // client-supplied username
	KeyRole     = "role"      // nm, ss, client

	// Wire protocol
	KeyKind      = "kind"       // wire.Kind message type
	KeyOp        = "op"         // logical operation name: view, read, write, ...
	KeyFilename  = "filename"   // target filename
	KeyTarget    = "target"     // target_user for access-list ops
	KeySentence  = "sentence"   // sentence index
	KeyWordIndex = "word_index" // word index within a sentence
	KeySSIndex   = "ss_index"   // storage-server registry index

	// Outcomes
	KeyErrorCode  = "error_code"  // wire.ErrorCode
	KeyError      = "error"       // Go error string
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
)

// ConnID returns a slog.Attr for a connection's correlation ID.
func ConnID(id string) slog.Attr { return slog.String(KeyConnID, id) }

// Peer returns a slog.Attr for a remote address.
func Peer(addr string) slog.Attr { return slog.String(KeyPeer, addr) }

// Username returns a slog.Attr for a username.
func Username(u string) slog.Attr { return slog.String(KeyUsername, u) }

// Filename returns a slog.Attr for a filename.
func Filename(f string) slog.Attr { return slog.String(KeyFilename, f) }

// Op returns a slog.Attr for a logical operation name.
func Op(op string) slog.Attr { return slog.String(KeyOp, op) }

// ErrCode returns a slog.Attr for a wire error code, given its string form.
func ErrCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

// Err returns a slog.Attr for a Go error. Returns an empty (zero) Attr for
// a nil error so callers can pass it unconditionally without it showing up
// in the log line.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

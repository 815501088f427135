// Package wire implements the length-prefixed record protocol shared by
// the name server, storage servers, and clients. A single Record shape
// carries every interaction; Kind discriminates how the other fields are
// interpreted.
package wire

// Record is the tagged message carried over every DFS connection.
// Not every field is meaningful for every Kind; which fields a given Kind
// reads is decided by the handler for that Kind.
type Record struct {
	Kind      Kind
	Error     ErrorCode
	Username  string
	Filename  string
	Target    string // target_user for access-list operations
	Flags     int32
	WordIndex int32
	SSIP      string
	SSPort    int32
	Data      []byte
}

// ETIRW is the sentinel payload that terminates a write session's edit
// loop. "WRITE" reversed.
const ETIRW = "ETIRW"

// StreamStop is the sentinel payload that closes a STREAM response.
const StreamStop = "STOP"

// Response builds a RESPONSE record carrying a result code and a
// human-readable message as its data payload.
func Response(code ErrorCode, message string) *Record {
	return &Record{Kind: KindResponse, Error: code, Data: []byte(message)}
}

// Ack builds an ACK record carrying a human-readable message.
func Ack(message string) *Record {
	return &Record{Kind: KindAck, Error: Success, Data: []byte(message)}
}

// ErrorRecord builds an ERROR record carrying a result code and message,
// used mid-session for recoverable faults (e.g. a bad edit in a write
// loop) that don't terminate the connection.
func ErrorRecord(code ErrorCode, message string) *Record {
	return &Record{Kind: KindError, Error: code, Data: []byte(message)}
}

// OK reports whether the record represents a successful outcome.
func (r *Record) OK() bool {
	return r.Error == Success
}

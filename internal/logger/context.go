package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds per-connection logging context: the correlation ID
// assigned at accept time, the peer address, and (once known) the
// username presented by the client.
type LogContext struct {
	ConnID    string
	Peer      string
	Username  string
	StartTime time.Time
}

// WithContext returns a new context carrying the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a freshly accepted connection.
func NewLogContext(connID, peer string) *LogContext {
	return &LogContext{ConnID: connID, Peer: peer, StartTime: time.Now()}
}

// WithUsername returns a copy of lc with Username set, once the session's
// first record reveals who is connecting.
func (lc *LogContext) WithUsername(username string) *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	clone.Username = username
	return &clone
}

// DurationMs returns the time elapsed since the connection started, in
// milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 6+len(args))
	if lc.ConnID != "" {
		ctxArgs = append(ctxArgs, KeyConnID, lc.ConnID)
	}
	if lc.Peer != "" {
		ctxArgs = append(ctxArgs, KeyPeer, lc.Peer)
	}
	if lc.Username != "" {
		ctxArgs = append(ctxArgs, KeyUsername, lc.Username)
	}
	ctxArgs = append(ctxArgs, args...)
	return ctxArgs
}

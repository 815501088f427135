package commands

import (
	"fmt"
	"net"
	"time"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

const dialTimeout = 5 * time.Second

// dialNM opens a connection to the name server and registers the
// configured username, the same handshake the NM expects of every
// client session.
func dialNM() (*wire.Conn, error) {
	conn, err := net.DialTimeout("tcp", nmAddr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial name server %s: %w", nmAddr, err)
	}
	wc := wire.NewConn(conn)
	if err := wc.WriteRecord(&wire.Record{Kind: wire.KindRegisterClient, Username: username}); err != nil {
		wc.Close()
		return nil, fmt.Errorf("register with name server: %w", err)
	}
	if _, err := wc.ReadRecord(); err != nil {
		wc.Close()
		return nil, fmt.Errorf("read registration ack: %w", err)
	}
	return wc, nil
}

// locate asks the name server for the storage server holding filename and
// dials it directly, mirroring the two-phase routing every client
// implementation performs: the NM is consulted once, then the client
// talks to the storage server on its own.
func locate(nm *wire.Conn, kind wire.Kind, filename string) (*wire.Conn, error) {
	if err := nm.WriteRecord(&wire.Record{Kind: kind, Username: username, Filename: filename}); err != nil {
		return nil, fmt.Errorf("send locate request: %w", err)
	}
	reply, err := nm.ReadRecord()
	if err != nil {
		return nil, fmt.Errorf("read locate reply: %w", err)
	}
	if !reply.OK() {
		return nil, &wire.Error{Code: reply.Error, Message: string(reply.Data)}
	}

	ssAddr := fmt.Sprintf("%s:%d", reply.SSIP, reply.SSPort)
	conn, err := net.DialTimeout("tcp", ssAddr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial storage server %s: %w", ssAddr, err)
	}
	return wire.NewConn(conn), nil
}

// printResponse renders a RESPONSE/ACK record: the message verbatim,
// prefixed with "ERROR:" on failure.
func printResponse(resp *wire.Record) {
	if resp.OK() {
		fmt.Println(string(resp.Data))
		return
	}
	fmt.Printf("ERROR: %s: %s\n", resp.Error, string(resp.Data))
}

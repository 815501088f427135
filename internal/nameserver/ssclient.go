package nameserver

import (
	"fmt"
	"net"
	"time"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

// ssDialTimeout bounds the outbound call the NM makes to a storage
// server while its own store mutex is released.
const ssDialTimeout = 5 * time.Second

// callSS opens a fresh connection to an SS's NM-facing port, sends req,
// reads one reply, and closes the connection. The NM never keeps a
// persistent connection to an SS open between calls.
func callSS(ip string, nmFacingPort int32, req *wire.Record) (*wire.Record, error) {
	addr := fmt.Sprintf("%s:%d", ip, nmFacingPort)
	conn, err := net.DialTimeout("tcp", addr, ssDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial storage server %s: %w", addr, err)
	}
	defer conn.Close()

	wc := wire.NewConn(conn)
	if err := wc.WriteRecord(req); err != nil {
		return nil, fmt.Errorf("send to storage server %s: %w", addr, err)
	}
	reply, err := wc.ReadRecord()
	if err != nil {
		return nil, fmt.Errorf("read from storage server %s: %w", addr, err)
	}
	return reply, nil
}

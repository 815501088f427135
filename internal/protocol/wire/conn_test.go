package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConn_ReadWriteRecord(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverConn := NewConn(server)
	clientConn := NewConn(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r, err := serverConn.ReadRecord()
		require.NoError(t, err)
		assert.Equal(t, KindCreate, r.Kind)
		assert.Equal(t, "newfile.txt", r.Filename)
	}()

	require.NoError(t, clientConn.WriteRecord(&Record{Kind: KindCreate, Filename: "newfile.txt"}))
	<-done
}

package storageserver

import (
	"errors"
	"strings"
	"time"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

// streamPace is the inter-token delay during STREAM, a user-experience
// feature and the sole cancellation mechanism is client disconnect.
const streamPace = 100 * time.Millisecond

func (s *Server) handleRead(conn *wire.Conn, req *wire.Record) {
	content, err := s.storage.Read(req.Filename)
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "failed to read file"))
		return
	}
	_ = conn.WriteRecord(wire.Response(wire.Success, string(content)))
}

func (s *Server) handleStream(conn *wire.Conn, req *wire.Record) {
	content, err := s.storage.Read(req.Filename)
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "failed to read file"))
		return
	}

	tokens := strings.Fields(string(content))
	for _, tok := range tokens {
		if err := conn.WriteRecord(wire.Response(wire.Success, tok)); err != nil {
			return
		}
		time.Sleep(streamPace)
	}
	_ = conn.WriteRecord(wire.Response(wire.Success, wire.StreamStop))
}

func (s *Server) handleUndo(conn *wire.Conn, req *wire.Record) {
	err := s.storage.Undo(req.Filename)
	if errors.Is(err, ErrNoUndo) {
		_ = conn.WriteRecord(wire.Response(wire.ErrNoUndoAvailable, "no undo available"))
		return
	}
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "undo failed"))
		return
	}
	_ = conn.WriteRecord(wire.Response(wire.Success, "undo complete"))
}

func (s *Server) handleSSCreate(conn *wire.Conn, req *wire.Record) {
	if err := s.storage.Create(req.Filename); err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "create failed"))
		return
	}
	_ = conn.WriteRecord(wire.Response(wire.Success, "created"))
}

func (s *Server) handleSSDelete(conn *wire.Conn, req *wire.Record) {
	if err := s.storage.Delete(req.Filename); err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "delete failed"))
		return
	}
	_ = conn.WriteRecord(wire.Response(wire.Success, "deleted"))
}

// handleSSStat answers the NM's stat-refresh call with fresh word/char
// counts, computed by reading the file and re-parsing it.
func (s *Server) handleSSStat(conn *wire.Conn, req *wire.Record) {
	content, err := s.storage.Read(req.Filename)
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "stat failed"))
		return
	}
	sentences := ParseSentences(string(content))
	wordCount := 0
	for _, sent := range sentences {
		wordCount += WordCount(sent)
	}
	resp := wire.Response(wire.Success, "")
	resp.WordIndex = int32(wordCount)
	resp.Flags = int32(len(content))
	_ = conn.WriteRecord(resp)
}

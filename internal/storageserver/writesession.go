package storageserver

import (
	"errors"
	"fmt"

	"github.com/arvindsh/dfscore/internal/logger"
	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

// handleWrite runs the full write-session state machine on one
// connection for WRITE(f, k, u): pre-image capture, parse, non-blocking
// sentence lock, lock-ack, edit loop keyed by word_index terminated by
// the ETIRW sentinel, and commit. Any receive failure during the edit
// loop releases the lock and discards in-memory edits without
// committing.
func (s *Server) handleWrite(conn *wire.Conn, req *wire.Record) {
	filename := req.Filename
	index := int(req.Flags)
	username := req.Username

	if err := s.storage.CapturePreImage(filename); err != nil {
		logger.Error("write: pre-image capture failed", logger.Err(err), "filename", filename)
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "failed to capture pre-image"))
		return
	}

	content, err := s.storage.Read(filename)
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "failed to read file"))
		return
	}
	sentences := ParseSentences(string(content))

	if index < 0 || index > len(sentences) {
		_ = conn.WriteRecord(wire.Response(wire.ErrInvalidIndex, "sentence index out of range"))
		return
	}
	appending := index == len(sentences)
	if appending {
		sentences = append(sentences, "")
	}

	if err := s.locks.TryAcquire(filename, index, username); err != nil {
		var locked *ErrLocked
		if errors.As(err, &locked) {
			_ = conn.WriteRecord(wire.Response(wire.ErrSentenceLocked, fmt.Sprintf("sentence locked by %s", locked.Holder)))
			return
		}
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "lock acquisition failed"))
		return
	}
	committed := false
	defer func() {
		if !committed {
			s.locks.Release(filename, index)
		}
	}()

	if err := conn.WriteRecord(wire.Ack("lock acquired, begin edits")); err != nil {
		return
	}

	for {
		upd, err := conn.ReadRecord()
		if err != nil {
			logger.Debug("write: edit loop receive failed, discarding in-memory edits", logger.Err(err), "filename", filename)
			return
		}
		if string(upd.Data) == wire.ETIRW {
			break
		}

		wordIndex := int(upd.WordIndex)
		wordCount := WordCount(sentences[index])
		if wordIndex < 0 || wordIndex > wordCount+1 {
			if err := conn.WriteRecord(wire.ErrorRecord(wire.ErrInvalidIndex, "word index out of range")); err != nil {
				return
			}
			continue
		}

		edited := InsertWords(sentences[index], wordIndex, string(upd.Data))
		split := ParseSentences(edited)
		if len(split) == 0 {
			split = []string{""}
		}

		rest := append([]string(nil), sentences[index+1:]...)
		sentences = append(sentences[:index], split...)
		sentences = append(sentences, rest...)

		if err := conn.WriteRecord(wire.Ack("edit applied")); err != nil {
			return
		}
	}

	final := JoinSentences(sentences)
	if err := s.storage.Write(filename, []byte(final)); err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, "failed to write file"))
		return
	}
	committed = true
	s.locks.Release(filename, index)

	_ = conn.WriteRecord(wire.Response(wire.Success, fmt.Sprintf("write committed, %d sentences", len(sentences))))
}

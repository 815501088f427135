package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxDataLen bounds a single record's data payload at 1 MiB. A read or
// write session moves many small records rather than one giant one, so
// this is a sanity limit rather than a true content limit (whole-file
// READ still returns arbitrarily large files in one Data blob, bounded
// only by this constant).
const MaxDataLen = 1 << 20 // 1 MiB

// maxFrameLen bounds the total encoded record size a peer will accept
// before failing the session, guarding against a corrupt or hostile
// length prefix causing an unbounded allocation.
const maxFrameLen = MaxDataLen + 4096

// maxFieldLen bounds an individual string field (username, filename,
// target, ss_ip).
const maxFieldLen = 4096

// Encode writes r to w as a length-prefixed frame: a 4-byte big-endian
// total length followed by the encoded record body.
func Encode(w io.Writer, r *Record) error {
	body, err := marshal(r)
	if err != nil {
		return fmt.Errorf("wire: marshal record: %w", err)
	}
	if len(body) > maxFrameLen {
		return fmt.Errorf("wire: encoded record too large: %d bytes", len(body))
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := bw.Write(body); err != nil {
		return fmt.Errorf("wire: write record body: %w", err)
	}
	return bw.Flush()
}

// Decode reads one length-prefixed frame from r and unmarshals it into a
// Record. Any short read, malformed length, or field overrun returns an
// error and the caller must treat the session as failed.
func Decode(r io.Reader) (*Record, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return nil, fmt.Errorf("wire: read length prefix: %w", err)
	}

	length := binary.BigEndian.Uint32(lenPrefix[:])
	if length > maxFrameLen {
		return nil, fmt.Errorf("wire: frame length %d exceeds maximum %d", length, maxFrameLen)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("wire: read record body: %w", err)
	}

	rec, err := unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("wire: unmarshal record: %w", err)
	}
	return rec, nil
}

// marshal encodes a Record's fields in a fixed order: kind, error code,
// four length-prefixed strings (username, filename, target, ss_ip), three
// int32s (ss_port, flags, word_index), then the length-prefixed data blob.
func marshal(r *Record) ([]byte, error) {
	strs := []string{r.Username, r.Filename, r.Target, r.SSIP}
	for _, s := range strs {
		if len(s) > maxFieldLen {
			return nil, fmt.Errorf("field exceeds %d bytes", maxFieldLen)
		}
	}
	if len(r.Data) > MaxDataLen {
		return nil, fmt.Errorf("data exceeds %d bytes", MaxDataLen)
	}

	size := 1 + 1 // kind, error
	for _, s := range strs {
		size += 2 + len(s)
	}
	size += 4 + 4 + 4 // ss_port, flags, word_index
	size += 4 + len(r.Data)

	buf := make([]byte, size)
	off := 0

	buf[off] = byte(r.Kind)
	off++
	buf[off] = byte(r.Error)
	off++

	for _, s := range strs {
		binary.BigEndian.PutUint16(buf[off:], uint16(len(s)))
		off += 2
		off += copy(buf[off:], s)
	}

	binary.BigEndian.PutUint32(buf[off:], uint32(r.SSPort))
	off += 4
	binary.BigEndian.PutUint32(buf[off:], uint32(r.Flags))
	off += 4
	binary.BigEndian.PutUint32(buf[off:], uint32(r.WordIndex))
	off += 4

	binary.BigEndian.PutUint32(buf[off:], uint32(len(r.Data)))
	off += 4
	off += copy(buf[off:], r.Data)

	return buf[:off], nil
}

func unmarshal(body []byte) (*Record, error) {
	r := &Record{}
	off := 0

	readByte := func() (byte, error) {
		if off+1 > len(body) {
			return 0, io.ErrUnexpectedEOF
		}
		b := body[off]
		off++
		return b, nil
	}

	readString := func() (string, error) {
		if off+2 > len(body) {
			return "", io.ErrUnexpectedEOF
		}
		n := int(binary.BigEndian.Uint16(body[off:]))
		off += 2
		if n > maxFieldLen || off+n > len(body) {
			return "", fmt.Errorf("field length %d out of range", n)
		}
		s := string(body[off : off+n])
		off += n
		return s, nil
	}

	readInt32 := func() (int32, error) {
		if off+4 > len(body) {
			return 0, io.ErrUnexpectedEOF
		}
		v := int32(binary.BigEndian.Uint32(body[off:]))
		off += 4
		return v, nil
	}

	kindByte, err := readByte()
	if err != nil {
		return nil, err
	}
	r.Kind = Kind(kindByte)

	errByte, err := readByte()
	if err != nil {
		return nil, err
	}
	r.Error = ErrorCode(errByte)

	if r.Username, err = readString(); err != nil {
		return nil, err
	}
	if r.Filename, err = readString(); err != nil {
		return nil, err
	}
	if r.Target, err = readString(); err != nil {
		return nil, err
	}
	if r.SSIP, err = readString(); err != nil {
		return nil, err
	}

	if r.SSPort, err = readInt32(); err != nil {
		return nil, err
	}
	if r.Flags, err = readInt32(); err != nil {
		return nil, err
	}
	if r.WordIndex, err = readInt32(); err != nil {
		return nil, err
	}

	if off+4 > len(body) {
		return nil, io.ErrUnexpectedEOF
	}
	dataLen := int(binary.BigEndian.Uint32(body[off:]))
	off += 4
	if dataLen > MaxDataLen || off+dataLen > len(body) {
		return nil, fmt.Errorf("data length %d out of range", dataLen)
	}
	r.Data = append([]byte(nil), body[off:off+dataLen]...)
	off += dataLen

	return r, nil
}

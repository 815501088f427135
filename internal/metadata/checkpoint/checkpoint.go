// Package checkpoint implements the name server's on-disk metadata
// format: a flat sequential file of binary records, replayed in full on
// startup. There is no journaling — a crash mid-write can corrupt the
// last record.
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arvindsh/dfscore/internal/metadata"
)

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// maxStringLen bounds an individual encoded string field, guarding
// against a corrupt length prefix causing an unbounded read.
const maxStringLen = 1 << 16

// Save writes records to path as a sequence of
// {Record, access_count int32, AccessEntry × access_count} frames,
// overwriting any existing file.
func Save(path string, records []*metadata.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if err := writeRecord(w, r); err != nil {
			return fmt.Errorf("checkpoint: write record %q: %w", r.Filename, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("checkpoint: flush %s: %w", path, err)
	}
	return f.Sync()
}

// Load replays path to EOF, rebuilding the record list. A missing file
// is not an error — it means an empty namespace.
func Load(path string) ([]*metadata.Record, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records []*metadata.Record
	for {
		rec, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("checkpoint: read %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeString(w io.Writer, s string) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds maximum", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeRecord(w io.Writer, r *metadata.Record) error {
	if err := writeString(w, r.Filename); err != nil {
		return err
	}
	if err := writeString(w, r.Owner); err != nil {
		return err
	}
	if err := writeInt64(w, r.Created.Unix()); err != nil {
		return err
	}
	if err := writeInt64(w, r.LastModified.Unix()); err != nil {
		return err
	}
	if err := writeInt64(w, r.LastAccessed.Unix()); err != nil {
		return err
	}
	if err := writeInt32(w, r.WordCount); err != nil {
		return err
	}
	if err := writeInt32(w, r.CharCount); err != nil {
		return err
	}
	if err := writeInt32(w, r.SSIndex); err != nil {
		return err
	}

	if err := writeInt32(w, int32(len(r.Access))); err != nil {
		return err
	}
	for _, a := range r.Access {
		if err := writeString(w, a.Username); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(a.Rights)}); err != nil {
			return err
		}
	}
	return nil
}

func readRecord(r io.Reader) (*metadata.Record, error) {
	filename, err := readString(r)
	if err != nil {
		return nil, err
	}
	owner, err := readString(r)
	if err != nil {
		return nil, err
	}
	created, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	lastModified, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	lastAccessed, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	wordCount, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	charCount, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	ssIndex, err := readInt32(r)
	if err != nil {
		return nil, err
	}

	accessCount, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if accessCount < 0 || accessCount > 1<<20 {
		return nil, fmt.Errorf("access list length %d out of range", accessCount)
	}

	access := make([]metadata.AccessEntry, accessCount)
	rightsBuf := make([]byte, 1)
	for i := int32(0); i < accessCount; i++ {
		username, err := readString(r)
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, rightsBuf); err != nil {
			return nil, err
		}
		access[i] = metadata.AccessEntry{Username: username, Rights: metadata.Rights(rightsBuf[0])}
	}

	return &metadata.Record{
		Filename:     filename,
		Owner:        owner,
		Created:      unixTime(created),
		LastModified: unixTime(lastModified),
		LastAccessed: unixTime(lastAccessed),
		WordCount:    wordCount,
		CharCount:    charCount,
		SSIndex:      ssIndex,
		Access:       access,
	}, nil
}

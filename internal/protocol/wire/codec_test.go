package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, r *Record) *Record {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r))
	got, err := Decode(&buf)
	require.NoError(t, err)
	return got
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	r := &Record{
		Kind:      KindWrite,
		Error:     Success,
		Username:  "alice",
		Filename:  "report.txt",
		Target:    "bob",
		Flags:     7,
		WordIndex: 3,
		SSIP:      "10.0.0.5",
		SSPort:    9101,
		Data:      []byte("hello there"),
	}

	got := roundTrip(t, r)
	assert.Equal(t, r.Kind, got.Kind)
	assert.Equal(t, r.Error, got.Error)
	assert.Equal(t, r.Username, got.Username)
	assert.Equal(t, r.Filename, got.Filename)
	assert.Equal(t, r.Target, got.Target)
	assert.Equal(t, r.Flags, got.Flags)
	assert.Equal(t, r.WordIndex, got.WordIndex)
	assert.Equal(t, r.SSIP, got.SSIP)
	assert.Equal(t, r.SSPort, got.SSPort)
	assert.Equal(t, r.Data, got.Data)
}

func TestEncodeDecode_EmptyFields(t *testing.T) {
	r := &Record{Kind: KindView}
	got := roundTrip(t, r)
	assert.Equal(t, KindView, got.Kind)
	assert.Equal(t, "", got.Username)
	assert.Empty(t, got.Data)
}

func TestEncodeDecode_EmptyData(t *testing.T) {
	r := &Record{Kind: KindRead, Filename: "empty.txt"}
	got := roundTrip(t, r)
	assert.Equal(t, 0, len(got.Data))
}

func TestDecode_ShortReadOnLengthPrefix(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x00, 0x01}))
	assert.Error(t, err)
}

func TestDecode_ShortReadOnBody(t *testing.T) {
	var lenPrefix [4]byte
	lenPrefix[3] = 10 // claims 10 bytes, provides none
	_, err := Decode(bytes.NewReader(lenPrefix[:]))
	assert.Error(t, err)
}

func TestDecode_RejectsOversizedLength(t *testing.T) {
	var lenPrefix [4]byte
	lenPrefix[0] = 0xFF
	lenPrefix[1] = 0xFF
	lenPrefix[2] = 0xFF
	lenPrefix[3] = 0xFF
	_, err := Decode(bytes.NewReader(lenPrefix[:]))
	assert.Error(t, err)
}

func TestEncode_RejectsOversizedData(t *testing.T) {
	r := &Record{Kind: KindWrite, Data: make([]byte, MaxDataLen+1)}
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, r))
}

func TestResponseHelpers(t *testing.T) {
	resp := Response(ErrFileNotFound, "no such file")
	assert.Equal(t, KindResponse, resp.Kind)
	assert.Equal(t, ErrFileNotFound, resp.Error)
	assert.Equal(t, "no such file", string(resp.Data))
	assert.False(t, resp.OK())

	ack := Ack("done")
	assert.True(t, ack.OK())

	errRec := ErrorRecord(ErrInvalidIndex, "bad index")
	assert.Equal(t, KindError, errRec.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "WRITE", KindWrite.String())
	assert.Equal(t, "UNKNOWN", Kind(255).String())
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "SENTENCE_LOCKED", ErrSentenceLocked.String())
	assert.Equal(t, "SUCCESS", Success.String())
}

func TestWireError(t *testing.T) {
	err := NewError(ErrUnauthorized, "need read access")
	assert.Equal(t, "UNAUTHORIZED: need read access", err.Error())
}

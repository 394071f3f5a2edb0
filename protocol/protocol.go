// Package protocol implements the length-prefixed, VarInt-tagged frame codec
// used on the wire, including the compression switch-over that activates
// once a server-advertised threshold is in effect.
//
// Framing without compression:
//
//	[VarInt total_len][VarInt id][body]
//
// Framing with compression (threshold T > 0):
//
//	[VarInt total_len][VarInt data_len][payload]
//
// data_len == 0 means payload is raw id+body (the original size was below
// T); data_len != 0 means payload is zlib-compressed id+body and data_len
// is the uncompressed size.
package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"miners-go/buffer"
)

// maxVarIntBytes bounds the outer length VarInt read directly off the wire,
// before any Buffer exists to decode into.
const maxVarIntBytes = 5

// ErrNoData is the non-error sentinel returned by TryReadFrame when a
// non-blocking peek finds nothing waiting on the socket.
var ErrNoData = fmt.Errorf("protocol: no data to read")

// FrameError is the single user-visible error shape: a translation key plus
// substitution arguments, symmetric with the server's own JSON disconnect
// format so both sources of failure use the same representation.
type FrameError struct {
	Translate string   `json:"translate"`
	With      []string `json:"with"`
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s %v", e.Translate, e.With)
}

// NewFrameError builds a client-originated FrameError (as opposed to one
// sniffed out of a server frame).
func NewFrameError(translate string, with ...string) *FrameError {
	return &FrameError{Translate: translate, With: with}
}

// Frame is a decoded wire unit: the packet id plus its payload, with
// framing and (de)compression already stripped away.
type Frame struct {
	ID   int32
	Body *buffer.Buffer
}

// ReadFrame performs a single blocking read of one complete frame from r,
// applying decompression if threshold > 0 is in effect.
func ReadFrame(r io.Reader, threshold int) (*Frame, error) {
	totalLen, err := readVarIntFromStream(r, nil)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, totalLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("protocol: reading frame body: %w", err)
	}
	return decodeFrame(raw, threshold)
}

// TryReadFrame is the non-blocking variant used by the Client main loop to
// interleave event dispatch with I/O. It tests the connection for at least
// one readable byte using a short read deadline; if none arrives it returns
// ErrNoData without having consumed anything meaningful. If a byte is
// available, it falls through to a normal blocking read of the rest of the
// frame since data is already arriving.
func TryReadFrame(conn net.Conn, threshold int) (*Frame, error) {
	if err := conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return nil, err
	}

	first := make([]byte, 1)
	if _, err := io.ReadFull(conn, first); err != nil {
		conn.SetReadDeadline(time.Time{})
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrNoData
		}
		return nil, err
	}
	conn.SetReadDeadline(time.Time{})

	totalLen, err := readVarIntFromStream(conn, &first[0])
	if err != nil {
		return nil, err
	}
	raw := make([]byte, totalLen)
	if _, err := io.ReadFull(conn, raw); err != nil {
		return nil, fmt.Errorf("protocol: reading frame body: %w", err)
	}
	return decodeFrame(raw, threshold)
}

// decodeFrame applies the compression switch-over to a frame's raw
// total_len-delimited bytes and extracts the packet id from whatever buffer
// results.
func decodeFrame(raw []byte, threshold int) (*Frame, error) {
	inner := buffer.FromBytes(raw)

	if threshold > 0 {
		dataLen := inner.ReadVarInt()
		if dataLen != 0 {
			decompressed, err := decompressZlib(inner.Bytes())
			if err != nil {
				return nil, fmt.Errorf("protocol: decompressing frame: %w", err)
			}
			inner = buffer.FromBytes(decompressed)
		}
	}

	id := inner.ReadVarInt()
	return &Frame{ID: id, Body: inner}, nil
}

// WriteFrame serializes id+body and writes one complete frame to w, using
// compressed or uncompressed layout depending on threshold.
func WriteFrame(w io.Writer, id int32, body []byte, threshold int) error {
	payload := buffer.New()
	payload.WriteVarInt(id)
	payload.WriteBytes(body)
	uncompressed := payload.Bytes()

	frame := buffer.New()
	if threshold > 0 {
		content := buffer.New()
		if len(uncompressed) >= threshold {
			content.WriteVarInt(int32(len(uncompressed)))
			content.WriteBytes(compressZlib(uncompressed))
		} else {
			content.WriteVarInt(0)
			content.WriteBytes(uncompressed)
		}
		frame.WriteVarInt(int32(content.Len()))
		frame.WriteBytes(content.Bytes())
	} else {
		frame.WriteVarInt(int32(len(uncompressed)))
		frame.WriteBytes(uncompressed)
	}

	_, err := w.Write(frame.Bytes())
	return err
}

// SniffError peeks at body (the already id-stripped payload of a decoded
// Frame) for a length-prefixed JSON string matching {translate, with[]}.
// On success it returns the error with body left consumed past the string;
// on failure it rewinds body so the caller can still read it normally.
func SniffError(body *buffer.Buffer) (*FrameError, bool) {
	saved := append([]byte(nil), body.Bytes()...)
	s, ok := body.TryReadString()
	if !ok {
		return nil, false
	}
	var fe FrameError
	if err := json.Unmarshal([]byte(s), &fe); err != nil || fe.Translate == "" {
		*body = *buffer.FromBytes(saved)
		return nil, false
	}
	return &fe, true
}

// readVarIntFromStream reads a VarInt directly off a byte stream (before
// any Buffer exists to decode into), honoring the 5-byte ceiling. If first
// is non-nil, it is treated as the already-consumed first byte.
func readVarIntFromStream(r io.Reader, first *byte) (int32, error) {
	var result uint32
	one := make([]byte, 1)
	for i := 0; i < maxVarIntBytes; i++ {
		var b byte
		if i == 0 && first != nil {
			b = *first
		} else {
			if _, err := io.ReadFull(r, one); err != nil {
				return 0, fmt.Errorf("protocol: reading varint: %w", err)
			}
			b = one[0]
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return int32(result), nil
}

func compressZlib(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

func decompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

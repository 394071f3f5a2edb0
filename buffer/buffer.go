// Package buffer implements the typed value codec used throughout the wire
// protocol: VarInt, length-prefixed strings, fixed-width integers/floats,
// booleans, UUIDs, and raw byte ranges, all over an owned, mutable byte
// sequence.
//
// All multi-byte integer and float forms are big-endian. VarInt uses the
// classic 7-bit little-endian group encoding with a high-bit continuation
// flag, capped at 5 bytes (enough for a full 32-bit two's-complement value).
//
// Read methods are destructive: they pop bytes off the front of the buffer.
// Calling a Read* method on a buffer that does not hold enough bytes is a
// programming error and panics, mirroring index-out-of-range semantics the
// original implementation relied on. Try* variants return an "absence"
// result instead and never consume bytes on failure.
package buffer

import (
	"math"

	"github.com/google/uuid"
)

// maxVarIntBytes bounds both the reader and the two's-complement writer: a
// full 32-bit value (including negative ones) never needs more than 5
// groups of 7 bits.
const maxVarIntBytes = 5

// Buffer is an ordered byte sequence with a destructive read cursor at the
// front and an append-only tail. It owns its bytes.
type Buffer struct {
	data []byte
}

// New returns an empty buffer ready for writing.
func New() *Buffer {
	return &Buffer{}
}

// FromBytes wraps an existing byte slice for reading. The slice is taken
// by reference; callers should not mutate it afterwards.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the buffer's remaining unread content.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len reports the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// ====< Writers >====

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(v byte) {
	b.data = append(b.data, v)
}

// WriteBytes appends a raw byte range verbatim.
func (b *Buffer) WriteBytes(v []byte) {
	b.data = append(b.data, v...)
}

// WriteBool appends a single byte, 0 or 1.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
}

// WriteVarInt appends the minimal-length VarInt encoding of v for
// non-negative values, and the full 5-byte two's-complement form for
// negative ones.
func (b *Buffer) WriteVarInt(v int32) {
	u := uint32(v)
	for {
		group := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			group |= 0x80
		}
		b.WriteByte(group)
		if u == 0 {
			break
		}
	}
}

// WriteString appends a VarInt byte-length prefix followed by the UTF-8
// bytes of s.
func (b *Buffer) WriteString(s string) {
	b.WriteVarInt(int32(len(s)))
	b.WriteBytes([]byte(s))
}

// WriteStringUShort appends a big-endian unsigned 16-bit length prefix
// followed by the UTF-8 bytes of s. Used only inside the NBT codec.
func (b *Buffer) WriteStringUShort(s string) {
	b.WriteUShort(uint16(len(s)))
	b.WriteBytes([]byte(s))
}

// WriteUShort appends a big-endian unsigned 16-bit integer.
func (b *Buffer) WriteUShort(v uint16) {
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

// WriteShort appends a big-endian signed 16-bit integer.
func (b *Buffer) WriteShort(v int16) {
	b.WriteUShort(uint16(v))
}

// WriteInt appends a big-endian signed 32-bit integer.
func (b *Buffer) WriteInt(v int32) {
	b.WriteByte(byte(v >> 24))
	b.WriteByte(byte(v >> 16))
	b.WriteByte(byte(v >> 8))
	b.WriteByte(byte(v))
}

// WriteLong appends a big-endian signed 64-bit integer.
func (b *Buffer) WriteLong(v int64) {
	b.WriteULong(uint64(v))
}

// WriteULong appends a big-endian unsigned 64-bit integer.
func (b *Buffer) WriteULong(v uint64) {
	for shift := 56; shift >= 0; shift -= 8 {
		b.WriteByte(byte(v >> shift))
	}
}

// WriteFloat appends a big-endian IEEE-754 32-bit float.
func (b *Buffer) WriteFloat(v float32) {
	b.WriteInt(int32(math.Float32bits(v)))
}

// WriteDouble appends a big-endian IEEE-754 64-bit float.
func (b *Buffer) WriteDouble(v float64) {
	b.WriteLong(int64(math.Float64bits(v)))
}

// WriteUUID appends a UUID as two consecutive 8-byte big-endian unsigned
// longs, high 64 bits first. This is the canonical big-endian UUID layout
// (see SPEC_FULL.md §9, resolving the source's inconsistent byte order).
func (b *Buffer) WriteUUID(id uuid.UUID) {
	b.WriteBytes(id[:])
}

// ====< Readers >====

// ReadByte pops and returns a single byte. Panics if the buffer is empty.
func (b *Buffer) ReadByte() byte {
	v := b.data[0]
	b.data = b.data[1:]
	return v
}

// ReadBytes pops and returns n bytes. Panics if the buffer holds fewer.
func (b *Buffer) ReadBytes(n int) []byte {
	v := make([]byte, n)
	copy(v, b.data[:n])
	b.data = b.data[n:]
	return v
}

// ReadBool pops a single byte and reports whether it was 1.
func (b *Buffer) ReadBool() bool {
	return b.ReadByte() == 1
}

// ReadVarInt pops and decodes a VarInt, reading up to 5 bytes. Bits beyond
// the 5th group are discarded rather than causing an error, matching the
// wire format's own 5-byte ceiling.
func (b *Buffer) ReadVarInt() int32 {
	var result uint32
	for i := 0; i < maxVarIntBytes; i++ {
		group := b.ReadByte()
		result |= uint32(group&0x7F) << (7 * i)
		if group&0x80 == 0 {
			break
		}
	}
	return int32(result)
}

// TryReadVarInt attempts to decode a VarInt without requiring the buffer to
// hold one. On failure (buffer exhausted mid-VarInt) it rewinds and reports
// false, consuming nothing.
func (b *Buffer) TryReadVarInt() (int32, bool) {
	saved := b.data
	var result uint32
	for i := 0; i < maxVarIntBytes; i++ {
		if len(b.data) == 0 {
			b.data = saved
			return 0, false
		}
		group := b.ReadByte()
		result |= uint32(group&0x7F) << (7 * i)
		if group&0x80 == 0 {
			return int32(result), true
		}
	}
	return int32(result), true
}

// ReadString pops a VarInt-length-prefixed UTF-8 string.
func (b *Buffer) ReadString() string {
	n := b.ReadVarInt()
	return string(b.ReadBytes(int(n)))
}

// ReadStringUShort pops a u16-length-prefixed UTF-8 string.
func (b *Buffer) ReadStringUShort() string {
	n := b.ReadUShort()
	return string(b.ReadBytes(int(n)))
}

// TryReadString attempts to decode a string without requiring the buffer to
// hold one, rewinding and reporting false on failure.
func (b *Buffer) TryReadString() (string, bool) {
	saved := b.data
	n, ok := b.TryReadVarInt()
	if !ok {
		return "", false
	}
	if len(b.data) < int(n) {
		b.data = saved
		return "", false
	}
	return string(b.ReadBytes(int(n))), true
}

// ReadUShort pops a big-endian unsigned 16-bit integer.
func (b *Buffer) ReadUShort() uint16 {
	hi := uint16(b.ReadByte())
	lo := uint16(b.ReadByte())
	return hi<<8 | lo
}

// ReadShort pops a big-endian signed 16-bit integer.
func (b *Buffer) ReadShort() int16 {
	return int16(b.ReadUShort())
}

// ReadInt pops a big-endian signed 32-bit integer.
func (b *Buffer) ReadInt() int32 {
	var result uint32
	for i := 0; i < 4; i++ {
		result = result<<8 | uint32(b.ReadByte())
	}
	return int32(result)
}

// ReadLong pops a big-endian signed 64-bit integer.
func (b *Buffer) ReadLong() int64 {
	return int64(b.ReadULong())
}

// ReadULong pops a big-endian unsigned 64-bit integer.
func (b *Buffer) ReadULong() uint64 {
	var result uint64
	for i := 0; i < 8; i++ {
		result = result<<8 | uint64(b.ReadByte())
	}
	return result
}

// ReadFloat pops a big-endian IEEE-754 32-bit float.
func (b *Buffer) ReadFloat() float32 {
	return math.Float32frombits(uint32(b.ReadInt()))
}

// ReadDouble pops a big-endian IEEE-754 64-bit float.
func (b *Buffer) ReadDouble() float64 {
	return math.Float64frombits(uint64(b.ReadLong()))
}

// ReadUUID pops a UUID as two consecutive 8-byte big-endian unsigned longs,
// high 64 bits first (SPEC_FULL.md §9).
func (b *Buffer) ReadUUID() uuid.UUID {
	var id uuid.UUID
	copy(id[:], b.ReadBytes(16))
	return id
}

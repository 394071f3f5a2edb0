// Package nbt decodes the Named Binary Tag format used for structured game
// data (most notably the dimension/biome registry codec carried in the
// LoginPlay packet) and formats it back as SNBT for diagnostics.
//
// NBT is a recursive tagged tree: a type-tag byte, a name (u16-prefixed,
// discarded at the root), and a type-specific payload. Compound entries
// repeat {tag, name, payload} until a bare End tag terminates them. Lists
// carry one type tag for all of their elements and no per-element name.
//
// SNBT output is for logging only; this package never parses SNBT back.
package nbt

import (
	"fmt"
	"strconv"
	"strings"

	"miners-go/buffer"
)

// Tag identifies the NBT payload type.
type Tag byte

const (
	TagEnd       Tag = 0x00
	TagByte      Tag = 0x01
	TagShort     Tag = 0x02
	TagInt       Tag = 0x03
	TagLong      Tag = 0x04
	TagFloat     Tag = 0x05
	TagDouble    Tag = 0x06
	TagByteArray Tag = 0x07
	TagString    Tag = 0x08
	TagList      Tag = 0x09
	TagCompound  Tag = 0x0A
	TagIntArray  Tag = 0x0B
	TagLongArray Tag = 0x0C
)

// Value is a tagged NBT tree node. Exactly one field is meaningful per Tag;
// recursion through List/Compound uses owned sub-trees (no sharing).
type Value struct {
	Tag       Tag
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	Str       string
	List      []Value
	Compound  map[string]Value
	IntArray  []int32
	LongArray []int64
}

// Decode reads one named root value: a type tag, a u16-prefixed name
// (discarded), and that type's payload.
func Decode(buf *buffer.Buffer) (Value, error) {
	tag := Tag(buf.ReadByte())
	_ = buf.ReadStringUShort() // root name, unused
	return decodePayload(buf, tag)
}

func decodePayload(buf *buffer.Buffer, tag Tag) (Value, error) {
	switch tag {
	case TagEnd:
		return Value{Tag: TagEnd}, nil
	case TagByte:
		return Value{Tag: TagByte, Byte: int8(buf.ReadByte())}, nil
	case TagShort:
		return Value{Tag: TagShort, Short: buf.ReadShort()}, nil
	case TagInt:
		return Value{Tag: TagInt, Int: buf.ReadInt()}, nil
	case TagLong:
		return Value{Tag: TagLong, Long: buf.ReadLong()}, nil
	case TagFloat:
		return Value{Tag: TagFloat, Float: buf.ReadFloat()}, nil
	case TagDouble:
		return Value{Tag: TagDouble, Double: buf.ReadDouble()}, nil
	case TagByteArray:
		n := buf.ReadInt()
		arr := make([]int8, n)
		for i := range arr {
			arr[i] = int8(buf.ReadByte())
		}
		return Value{Tag: TagByteArray, ByteArray: arr}, nil
	case TagString:
		return Value{Tag: TagString, Str: buf.ReadStringUShort()}, nil
	case TagList:
		itemTag := Tag(buf.ReadByte())
		n := buf.ReadInt()
		list := make([]Value, n)
		for i := range list {
			v, err := decodePayload(buf, itemTag)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return Value{Tag: TagList, List: list}, nil
	case TagCompound:
		compound := make(map[string]Value)
		for {
			entryTag := Tag(buf.ReadByte())
			if entryTag == TagEnd {
				break
			}
			name := buf.ReadStringUShort()
			v, err := decodePayload(buf, entryTag)
			if err != nil {
				return Value{}, err
			}
			compound[name] = v
		}
		return Value{Tag: TagCompound, Compound: compound}, nil
	case TagIntArray:
		n := buf.ReadInt()
		arr := make([]int32, n)
		for i := range arr {
			arr[i] = buf.ReadInt()
		}
		return Value{Tag: TagIntArray, IntArray: arr}, nil
	case TagLongArray:
		n := buf.ReadInt()
		arr := make([]int64, n)
		for i := range arr {
			arr[i] = buf.ReadLong()
		}
		return Value{Tag: TagLongArray, LongArray: arr}, nil
	default:
		return Value{}, fmt.Errorf("nbt: unknown tag 0x%02X", byte(tag))
	}
}

// Encode writes v back as a named root value (used for round-trip tests;
// real traffic only ever decodes server-sent NBT in this client).
func Encode(buf *buffer.Buffer, name string, v Value) {
	buf.WriteByte(byte(v.Tag))
	buf.WriteStringUShort(name)
	encodePayload(buf, v)
}

func encodePayload(buf *buffer.Buffer, v Value) {
	switch v.Tag {
	case TagEnd:
	case TagByte:
		buf.WriteByte(byte(v.Byte))
	case TagShort:
		buf.WriteShort(v.Short)
	case TagInt:
		buf.WriteInt(v.Int)
	case TagLong:
		buf.WriteLong(v.Long)
	case TagFloat:
		buf.WriteFloat(v.Float)
	case TagDouble:
		buf.WriteDouble(v.Double)
	case TagByteArray:
		buf.WriteInt(int32(len(v.ByteArray)))
		for _, b := range v.ByteArray {
			buf.WriteByte(byte(b))
		}
	case TagString:
		buf.WriteStringUShort(v.Str)
	case TagList:
		itemTag := TagEnd
		if len(v.List) > 0 {
			itemTag = v.List[0].Tag
		}
		buf.WriteByte(byte(itemTag))
		buf.WriteInt(int32(len(v.List)))
		for _, item := range v.List {
			encodePayload(buf, item)
		}
	case TagCompound:
		for name, item := range v.Compound {
			buf.WriteByte(byte(item.Tag))
			buf.WriteStringUShort(name)
			encodePayload(buf, item)
		}
		buf.WriteByte(byte(TagEnd))
	case TagIntArray:
		buf.WriteInt(int32(len(v.IntArray)))
		for _, i := range v.IntArray {
			buf.WriteInt(i)
		}
	case TagLongArray:
		buf.WriteInt(int32(len(v.LongArray)))
		for _, l := range v.LongArray {
			buf.WriteLong(l)
		}
	}
}

// SNBT renders v as stringified NBT for diagnostics: suffix letters
// b/s/i/l/f/d for scalars, typed-array prefixes for *Array tags, bracketed
// lists, and braced compounds. Never round-trip-parsed.
func (v Value) SNBT() string {
	switch v.Tag {
	case TagEnd:
		return ""
	case TagByte:
		return strconv.FormatInt(int64(v.Byte), 10) + "b"
	case TagShort:
		return strconv.FormatInt(int64(v.Short), 10) + "s"
	case TagInt:
		return strconv.FormatInt(int64(v.Int), 10) + "i"
	case TagLong:
		return strconv.FormatInt(v.Long, 10) + "l"
	case TagFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32) + "f"
	case TagDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64) + "d"
	case TagByteArray:
		parts := make([]string, len(v.ByteArray))
		for i, b := range v.ByteArray {
			parts[i] = strconv.FormatInt(int64(b), 10) + "b"
		}
		return "[B;" + strings.Join(parts, ",") + "]"
	case TagString:
		return strconv.Quote(v.Str)
	case TagList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.SNBT()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case TagCompound:
		parts := make([]string, 0, len(v.Compound))
		for name, item := range v.Compound {
			parts = append(parts, fmt.Sprintf("%s:%s", name, item.SNBT()))
		}
		return "{" + strings.Join(parts, ",") + "}"
	case TagIntArray:
		parts := make([]string, len(v.IntArray))
		for i, n := range v.IntArray {
			parts[i] = strconv.FormatInt(int64(n), 10) + "i"
		}
		return "[I;" + strings.Join(parts, ",") + "]"
	case TagLongArray:
		parts := make([]string, len(v.LongArray))
		for i, n := range v.LongArray {
			parts[i] = strconv.FormatInt(n, 10) + "l"
		}
		return "[L;" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

package nbt

import (
	"testing"

	"miners-go/buffer"
)

// valueEqual compares two Values structurally, ignoring Go map iteration
// order for Compound entries (NBT's Compound entry order is unspecified
// per SPEC_FULL.md §8 property 4).
func valueEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagCompound:
		if len(a.Compound) != len(b.Compound) {
			return false
		}
		for k, av := range a.Compound {
			bv, ok := b.Compound[k]
			if !ok || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	case TagList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valueEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	default:
		return a.SNBT() == b.SNBT()
	}
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []Value{
		{Tag: TagByte, Byte: -12},
		{Tag: TagShort, Short: -3000},
		{Tag: TagInt, Int: 123456},
		{Tag: TagLong, Long: -9876543210},
		{Tag: TagFloat, Float: 1.5},
		{Tag: TagDouble, Double: 2.25},
		{Tag: TagString, Str: "hello"},
	}
	for _, v := range cases {
		buf := buffer.New()
		Encode(buf, "", v)
		got, err := Decode(buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !valueEqual(got, v) {
			t.Errorf("round trip %v -> %v", v.SNBT(), got.SNBT())
		}
	}
}

func TestCompoundRoundTripStructural(t *testing.T) {
	v := Value{
		Tag: TagCompound,
		Compound: map[string]Value{
			"name":   {Tag: TagString, Str: "overworld"},
			"height": {Tag: TagInt, Int: 384},
			"nested": {
				Tag: TagCompound,
				Compound: map[string]Value{
					"flag": {Tag: TagByte, Byte: 1},
				},
			},
		},
	}
	buf := buffer.New()
	Encode(buf, "root", v)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !valueEqual(got, v) {
		t.Errorf("round trip compound mismatch: got %s want %s", got.SNBT(), v.SNBT())
	}
}

func TestListRoundTrip(t *testing.T) {
	v := Value{
		Tag: TagList,
		List: []Value{
			{Tag: TagInt, Int: 1},
			{Tag: TagInt, Int: 2},
			{Tag: TagInt, Int: 3},
		},
	}
	buf := buffer.New()
	Encode(buf, "", v)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !valueEqual(got, v) {
		t.Errorf("round trip list mismatch: got %s want %s", got.SNBT(), v.SNBT())
	}
}

func TestByteArrayAndIntArraySNBT(t *testing.T) {
	ba := Value{Tag: TagByteArray, ByteArray: []int8{1, 2, 3}}
	if got, want := ba.SNBT(), "[B;1b,2b,3b]"; got != want {
		t.Errorf("ByteArray SNBT = %q, want %q", got, want)
	}
	ia := Value{Tag: TagIntArray, IntArray: []int32{10, 20}}
	if got, want := ia.SNBT(), "[I;10i,20i]"; got != want {
		t.Errorf("IntArray SNBT = %q, want %q", got, want)
	}
}

func TestUnknownTagFails(t *testing.T) {
	buf := buffer.FromBytes([]byte{0xFF, 0x00, 0x00})
	if _, err := Decode(buf); err == nil {
		t.Fatal("expected error decoding unknown NBT tag")
	}
}

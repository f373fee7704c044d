package binpack

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

var le = binary.LittleEndian

var (
	_ Codec[bool]    = Bool{}
	_ Codec[uint64]  = Uint64{}
	_ Codec[rune]    = Rune{}
	_ Codec[U128]    = Uint128{}
	_ Codec[float64] = Float64{}
	_ Fixed          = Int128{}
)

// Bool packs a bool as one byte. Any byte other than 0 or 1 fails to decode.
type Bool struct{}

func (Bool) Width() int { return 1 }
func (Bool) Decode(b []byte) (bool, []byte, bool) {
	if len(b) < 1 {
		return false, b, false
	}
	switch b[0] {
	case 0:
		return false, b[1:], true
	case 1:
		return true, b[1:], true
	}
	return false, b, false
}
func (Bool) Encode(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

type Uint8 struct{}

func (Uint8) Width() int { return 1 }
func (Uint8) Decode(b []byte) (uint8, []byte, bool) {
	if len(b) < 1 {
		return 0, b, false
	}
	return b[0], b[1:], true
}
func (Uint8) Encode(buf []byte, v uint8) []byte { return append(buf, v) }

type Int8 struct{}

func (Int8) Width() int { return 1 }
func (Int8) Decode(b []byte) (int8, []byte, bool) {
	if len(b) < 1 {
		return 0, b, false
	}
	return int8(b[0]), b[1:], true
}
func (Int8) Encode(buf []byte, v int8) []byte { return append(buf, byte(v)) }

type Uint16 struct{}

func (Uint16) Width() int { return 2 }
func (Uint16) Decode(b []byte) (uint16, []byte, bool) {
	if len(b) < 2 {
		return 0, b, false
	}
	return le.Uint16(b), b[2:], true
}
func (Uint16) Encode(buf []byte, v uint16) []byte { return le.AppendUint16(buf, v) }

type Int16 struct{}

func (Int16) Width() int { return 2 }
func (Int16) Decode(b []byte) (int16, []byte, bool) {
	v, rest, ok := Uint16{}.Decode(b)
	return int16(v), rest, ok
}
func (Int16) Encode(buf []byte, v int16) []byte { return le.AppendUint16(buf, uint16(v)) }

type Uint32 struct{}

func (Uint32) Width() int { return 4 }
func (Uint32) Decode(b []byte) (uint32, []byte, bool) {
	if len(b) < 4 {
		return 0, b, false
	}
	return le.Uint32(b), b[4:], true
}
func (Uint32) Encode(buf []byte, v uint32) []byte { return le.AppendUint32(buf, v) }

type Int32 struct{}

func (Int32) Width() int { return 4 }
func (Int32) Decode(b []byte) (int32, []byte, bool) {
	v, rest, ok := Uint32{}.Decode(b)
	return int32(v), rest, ok
}
func (Int32) Encode(buf []byte, v int32) []byte { return le.AppendUint32(buf, uint32(v)) }

type Uint64 struct{}

func (Uint64) Width() int { return 8 }
func (Uint64) Decode(b []byte) (uint64, []byte, bool) {
	if len(b) < 8 {
		return 0, b, false
	}
	return le.Uint64(b), b[8:], true
}
func (Uint64) Encode(buf []byte, v uint64) []byte { return le.AppendUint64(buf, v) }

type Int64 struct{}

func (Int64) Width() int { return 8 }
func (Int64) Decode(b []byte) (int64, []byte, bool) {
	v, rest, ok := Uint64{}.Decode(b)
	return int64(v), rest, ok
}
func (Int64) Encode(buf []byte, v int64) []byte { return le.AppendUint64(buf, uint64(v)) }

// Uint packs a uint as 8 bytes regardless of the platform word size.
// Decoding a value that does not fit in uint fails.
type Uint struct{}

func (Uint) Width() int { return 8 }
func (Uint) Decode(b []byte) (uint, []byte, bool) {
	v, rest, ok := Uint64{}.Decode(b)
	if !ok || uint64(uint(v)) != v {
		return 0, b, false
	}
	return uint(v), rest, true
}
func (Uint) Encode(buf []byte, v uint) []byte { return le.AppendUint64(buf, uint64(v)) }

// Int packs an int as 8 bytes regardless of the platform word size.
// Decoding a value that does not fit in int fails.
type Int struct{}

func (Int) Width() int { return 8 }
func (Int) Decode(b []byte) (int, []byte, bool) {
	v, rest, ok := Int64{}.Decode(b)
	if !ok || int64(int(v)) != v {
		return 0, b, false
	}
	return int(v), rest, true
}
func (Int) Encode(buf []byte, v int) []byte { return le.AppendUint64(buf, uint64(v)) }

// U128 is an unsigned 128-bit integer split into 64-bit words.
type U128 struct {
	Lo, Hi uint64
}

// I128 is a two's complement signed 128-bit integer; Hi carries the sign.
type I128 struct {
	Lo uint64
	Hi int64
}

// Uint128 packs a U128 as 16 little-endian bytes: Lo first, then Hi.
type Uint128 struct{}

func (Uint128) Width() int { return 16 }
func (Uint128) Decode(b []byte) (U128, []byte, bool) {
	if len(b) < 16 {
		return U128{}, b, false
	}
	return U128{Lo: le.Uint64(b), Hi: le.Uint64(b[8:])}, b[16:], true
}
func (Uint128) Encode(buf []byte, v U128) []byte {
	return le.AppendUint64(le.AppendUint64(buf, v.Lo), v.Hi)
}

type Int128 struct{}

func (Int128) Width() int { return 16 }
func (Int128) Decode(b []byte) (I128, []byte, bool) {
	u, rest, ok := Uint128{}.Decode(b)
	return I128{Lo: u.Lo, Hi: int64(u.Hi)}, rest, ok
}
func (Int128) Encode(buf []byte, v I128) []byte {
	return Uint128{}.Encode(buf, U128{Lo: v.Lo, Hi: uint64(v.Hi)})
}

type Float32 struct{}

func (Float32) Width() int { return 4 }
func (Float32) Decode(b []byte) (float32, []byte, bool) {
	v, rest, ok := Uint32{}.Decode(b)
	return math.Float32frombits(v), rest, ok
}
func (Float32) Encode(buf []byte, v float32) []byte {
	return le.AppendUint32(buf, math.Float32bits(v))
}

type Float64 struct{}

func (Float64) Width() int { return 8 }
func (Float64) Decode(b []byte) (float64, []byte, bool) {
	v, rest, ok := Uint64{}.Decode(b)
	return math.Float64frombits(v), rest, ok
}
func (Float64) Encode(buf []byte, v float64) []byte {
	return le.AppendUint64(buf, math.Float64bits(v))
}

// Rune packs a Unicode code point as 4 bytes. Surrogate halves and values
// beyond U+10FFFF fail to decode; encoding does not check.
type Rune struct{}

func (Rune) Width() int { return 4 }
func (Rune) Decode(b []byte) (rune, []byte, bool) {
	v, rest, ok := Uint32{}.Decode(b)
	if !ok || v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
		return 0, b, false
	}
	return rune(v), rest, true
}
func (Rune) Encode(buf []byte, v rune) []byte { return le.AppendUint32(buf, uint32(v)) }

// Package binpack implements a compact, schema-less binary encoding for Go values.
// No type information is written: both sides must agree on the type being packed.
//
// Components:
//   - Codec[T]: a Decode/Encode pair for one type. Encode appends to a buffer and
//     never fails; Decode consumes a prefix and returns the rest, or ok=false.
//   - Primitives: Bool, Uint8..Uint128, Int8..Int128, Float32, Float64, Rune.
//     All fixed width, little-endian.
//   - Collections: Slice, Bytes, String, Map, Set (u64 LE count prefix), Array
//     (fixed length, no prefix), Option, Tuple2, Tuple3, Unit.
//   - Derivation: Struct + FieldOf compose field codecs in declaration order.
//     Enum + VariantOf (sealed interfaces) and Consts (value enums) write a one-byte
//     positional tag before the payload. Derive builds the same compositions by
//     reflection.
//
// Wire format:
//
//	scalar        little-endian, natural width (int/uint are always 8 bytes)
//	bool          1 byte, 0 or 1
//	collection    u64 LE count | elements
//	struct        fields in declaration order
//	unit          nothing
//	enum          u8 tag (variant position) | payload
//
// Round trip:
//
//	b := binpack.ToBytes(c, v)
//	v2, err := binpack.FromBytes(c, b) // err == ErrMalformed unless b is exactly one value
package binpack

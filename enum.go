package binpack

import (
	"fmt"
	"reflect"
)

// MaxVariants is the largest number of variants an enum can have; the tag is one byte.
const MaxVariants = 256

// Variant is one alternative of an Enum over T.
type Variant[T any] interface {
	// encodeVariant appends the payload of v and reports whether v belongs to this variant.
	encodeVariant(buf []byte, v T) ([]byte, bool)
	decodeVariant(b []byte) (T, []byte, bool)
}

type variant[T, P any] struct {
	c Codec[P]
}

func (vr variant[T, P]) encodeVariant(buf []byte, v T) ([]byte, bool) {
	p, ok := any(v).(P)
	if !ok {
		return buf, false
	}
	return vr.c.Encode(buf, p), true
}

func (vr variant[T, P]) decodeVariant(b []byte) (T, []byte, bool) {
	p, rest, ok := vr.c.Decode(b)
	if !ok {
		var zero T
		return zero, b, false
	}
	return any(p).(T), rest, true
}

// VariantOf declares P as an alternative of the enum T, packed with c.
// T is normally a sealed interface and P one of its implementations. It panics
// if P is not assignable to T.
func VariantOf[T, P any](c Codec[P]) Variant[T] {
	if pt, t := reflect.TypeOf((*P)(nil)).Elem(), reflect.TypeOf((*T)(nil)).Elem(); !pt.AssignableTo(t) {
		panic(fmt.Sprintf("binpack: variant %v is not assignable to %v", pt, t))
	}
	return variant[T, P]{c: c}
}

type enumCodec[T any] struct {
	variants []Variant[T]
}

// Enum packs T as a one-byte tag followed by the payload of the matching
// variant. The tag is the variant's position in variants, starting at 0.
// Decoding an unknown tag fails. Encoding a value that matches no variant
// (including a nil interface) panics.
func Enum[T any](variants ...Variant[T]) Codec[T] {
	if len(variants) > MaxVariants {
		panic(fmt.Sprintf("binpack: %d variants exceed the limit of %d", len(variants), MaxVariants))
	}
	return enumCodec[T]{variants: append([]Variant[T](nil), variants...)}
}

func (c enumCodec[T]) Width() int { return -1 }

func (c enumCodec[T]) Decode(b []byte) (T, []byte, bool) {
	var zero T
	if len(b) < 1 || int(b[0]) >= len(c.variants) {
		return zero, b, false
	}
	v, rest, ok := c.variants[b[0]].decodeVariant(b[1:])
	if !ok {
		return zero, b, false
	}
	return v, rest, true
}

func (c enumCodec[T]) Encode(buf []byte, v T) []byte {
	for i, vr := range c.variants {
		// the tag must precede the payload; drop it again on a mismatch
		out, ok := vr.encodeVariant(append(buf, byte(i)), v)
		if ok {
			return out
		}
		buf = out[:len(out)-1]
	}
	panic(fmt.Sprintf("binpack: %T matches no variant", v))
}

type constsCodec[T comparable] struct {
	values []T
	tags   map[T]byte
}

// Consts packs a value enum as the position of the value in values. The
// native value never reaches the wire, so gaps and reordering of the
// underlying constants do not matter. Encoding a value not listed panics.
//
//	binpack.Consts(Red, Green, Blue)
func Consts[T comparable](values ...T) Codec[T] {
	if len(values) > MaxVariants {
		panic(fmt.Sprintf("binpack: %d constants exceed the limit of %d", len(values), MaxVariants))
	}
	tags := make(map[T]byte, len(values))
	for i, v := range values {
		if _, dup := tags[v]; dup {
			panic(fmt.Sprintf("binpack: duplicate constant %v", v))
		}
		tags[v] = byte(i)
	}
	return constsCodec[T]{values: append([]T(nil), values...), tags: tags}
}

func (c constsCodec[T]) Width() int { return 1 }

func (c constsCodec[T]) Decode(b []byte) (T, []byte, bool) {
	if len(b) < 1 || int(b[0]) >= len(c.values) {
		var zero T
		return zero, b, false
	}
	return c.values[b[0]], b[1:], true
}

func (c constsCodec[T]) Encode(buf []byte, v T) []byte {
	tag, ok := c.tags[v]
	if !ok {
		panic(fmt.Sprintf("binpack: %v is not a listed constant", v))
	}
	return append(buf, tag)
}

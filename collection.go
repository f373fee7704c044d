package binpack

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// maxPrealloc bounds how many elements a variable-width collection reserves
// before any of them has been decoded.
const maxPrealloc = 4096

// maxZeroWidth caps the declared count of a collection whose elements encode
// to zero bytes, since the input cannot bound it. Elements of unknown width
// that happen to consume nothing count against the same cap.
const maxZeroWidth = 1 << 20

// consumed reports whether decoding one element of unknown width may go on.
// It counts elements that read no bytes in *empty.
func consumed(before, after []byte, empty *int) bool {
	if len(after) < len(before) {
		return true
	}
	*empty++
	return *empty <= maxZeroWidth
}

// allocHint returns how many elements to reserve for a declared count of n
// with avail bytes left. The declared count is never trusted beyond what the
// input could hold.
func allocHint(n uint64, avail, width int) int {
	if width > 0 {
		return int(n) // already checked against avail
	}
	return int(min(n, uint64(avail), maxPrealloc))
}

// readLen reads a u64 count and rejects counts that cannot fit in the rest of
// the input when every element takes at least width bytes.
func readLen(b []byte, width int) (uint64, []byte, bool) {
	n, rest, ok := Uint64{}.Decode(b)
	if !ok {
		return 0, b, false
	}
	switch {
	case width > 0 && n > uint64(len(rest)/width):
		return 0, b, false
	case width == 0 && n > maxZeroWidth:
		return 0, b, false
	}
	return n, rest, true
}

type sliceCodec[T any] struct{ elem Codec[T] }

// Slice packs a []T as a u64 LE element count followed by each element.
// Decoding never reserves more elements than the remaining input can back.
func Slice[T any](elem Codec[T]) Codec[[]T] { return sliceCodec[T]{elem: elem} }

func (c sliceCodec[T]) Width() int { return -1 }

func (c sliceCodec[T]) Decode(b []byte) ([]T, []byte, bool) {
	w := widthOf(c.elem)
	n, rest, ok := readLen(b, w)
	if !ok {
		return nil, b, false
	}
	out := make([]T, 0, allocHint(n, len(rest), w))
	empty := 0
	for i := uint64(0); i < n; i++ {
		v, r, ok := c.elem.Decode(rest)
		if !ok || !consumed(rest, r, &empty) {
			return nil, b, false
		}
		out = append(out, v)
		rest = r
	}
	return out, rest, true
}

func (c sliceCodec[T]) Encode(buf []byte, v []T) []byte {
	buf = Uint64{}.Encode(buf, uint64(len(v)))
	for i := range v {
		buf = c.elem.Encode(buf, v[i])
	}
	return buf
}

type arrayCodec[T any] struct {
	n    int
	elem Codec[T]
}

// Array packs exactly n elements with no length prefix. Encoding a slice of
// any other length panics.
func Array[T any](n int, elem Codec[T]) Codec[[]T] {
	if n < 0 {
		panic("binpack: negative array length")
	}
	return arrayCodec[T]{n: n, elem: elem}
}

func (c arrayCodec[T]) Width() int {
	if c.n == 0 {
		return 0
	}
	w := widthOf(c.elem)
	if w < 0 {
		return -1
	}
	return c.n * w
}

func (c arrayCodec[T]) Decode(b []byte) ([]T, []byte, bool) {
	if w := widthOf(c.elem); w > 0 && len(b)/w < c.n {
		return nil, b, false
	}
	out := make([]T, c.n)
	rest := b
	for i := range out {
		v, r, ok := c.elem.Decode(rest)
		if !ok {
			return nil, b, false
		}
		out[i] = v
		rest = r
	}
	return out, rest, true
}

func (c arrayCodec[T]) Encode(buf []byte, v []T) []byte {
	if len(v) != c.n {
		panic("binpack: array length mismatch")
	}
	for i := range v {
		buf = c.elem.Encode(buf, v[i])
	}
	return buf
}

// Bytes packs a []byte as a u64 LE length and the raw octets. Decoded slices
// are copies and do not alias the input.
type Bytes struct{}

func (Bytes) Width() int { return -1 }
func (Bytes) Decode(b []byte) ([]byte, []byte, bool) {
	n, rest, ok := readLen(b, 1)
	if !ok {
		return nil, b, false
	}
	out := make([]byte, n)
	copy(out, rest)
	return out, rest[n:], true
}
func (Bytes) Encode(buf []byte, v []byte) []byte {
	return append(Uint64{}.Encode(buf, uint64(len(v))), v...)
}

// String packs a string like Bytes. Invalid UTF-8 fails to decode.
type String struct{}

func (String) Width() int { return -1 }
func (String) Decode(b []byte) (string, []byte, bool) {
	n, rest, ok := readLen(b, 1)
	if !ok || !utf8.Valid(rest[:n]) {
		return "", b, false
	}
	return string(rest[:n]), rest[n:], true
}
func (String) Encode(buf []byte, v string) []byte {
	return append(Uint64{}.Encode(buf, uint64(len(v))), v...)
}

type mapCodec[K comparable, V any] struct {
	key Codec[K]
	val Codec[V]
}

// Map packs a map as a u64 LE entry count followed by key/value pairs.
// Entries are written in ascending order of their encoded keys, so equal maps
// produce equal bytes. On decode a repeated key overwrites the earlier one.
func Map[K comparable, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key: key, val: val}
}

func (c mapCodec[K, V]) Width() int { return -1 }

func (c mapCodec[K, V]) Decode(b []byte) (map[K]V, []byte, bool) {
	w := -1
	if kw, vw := widthOf(c.key), widthOf(c.val); kw >= 0 && vw >= 0 {
		w = kw + vw
	}
	n, rest, ok := readLen(b, w)
	if !ok {
		return nil, b, false
	}
	out := make(map[K]V, allocHint(n, len(rest), w))
	empty := 0
	for i := uint64(0); i < n; i++ {
		k, r, ok := c.key.Decode(rest)
		if !ok {
			return nil, b, false
		}
		v, r, ok := c.val.Decode(r)
		if !ok || !consumed(rest, r, &empty) {
			return nil, b, false
		}
		out[k] = v
		rest = r
	}
	return out, rest, true
}

func (c mapCodec[K, V]) Encode(buf []byte, m map[K]V) []byte {
	buf = Uint64{}.Encode(buf, uint64(len(m)))
	if len(m) == 0 {
		return buf
	}
	type entry struct {
		enc []byte
		key K
	}
	entries := make([]entry, 0, len(m))
	for k := range m {
		entries = append(entries, entry{enc: c.key.Encode(nil, k), key: k})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].enc, entries[j].enc) < 0
	})
	for _, e := range entries {
		buf = append(buf, e.enc...)
		buf = c.val.Encode(buf, m[e.key])
	}
	return buf
}

// Set packs a map[K]struct{} like Map with zero-width values.
func Set[K comparable](key Codec[K]) Codec[map[K]struct{}] {
	return mapCodec[K, struct{}]{key: key, val: Unit{}}
}

// Unit packs struct{} as nothing.
type Unit struct{}

func (Unit) Width() int                               { return 0 }
func (Unit) Decode(b []byte) (struct{}, []byte, bool) { return struct{}{}, b, true }
func (Unit) Encode(buf []byte, _ struct{}) []byte     { return buf }

type optionCodec[T any] struct{ elem Codec[T] }

// Option packs a *T as a two-variant enum: tag 0 for nil, tag 1 followed by
// the pointed-to value.
func Option[T any](elem Codec[T]) Codec[*T] { return optionCodec[T]{elem: elem} }

func (c optionCodec[T]) Width() int { return -1 }

func (c optionCodec[T]) Decode(b []byte) (*T, []byte, bool) {
	if len(b) < 1 {
		return nil, b, false
	}
	switch b[0] {
	case 0:
		return nil, b[1:], true
	case 1:
		v, rest, ok := c.elem.Decode(b[1:])
		if !ok {
			return nil, b, false
		}
		return &v, rest, true
	}
	return nil, b, false
}

func (c optionCodec[T]) Encode(buf []byte, v *T) []byte {
	if v == nil {
		return append(buf, 0)
	}
	return c.elem.Encode(append(buf, 1), *v)
}

// Pair is a positional two-field value.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is a positional three-field value.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Tuple2 packs a Pair as its fields in order.
func Tuple2[A, B any](a Codec[A], b Codec[B]) Codec[Pair[A, B]] {
	return Struct(
		FieldOf(func(p *Pair[A, B]) *A { return &p.First }, a),
		FieldOf(func(p *Pair[A, B]) *B { return &p.Second }, b),
	)
}

// Tuple3 packs a Triple as its fields in order.
func Tuple3[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Codec[Triple[A, B, C]] {
	return Struct(
		FieldOf(func(t *Triple[A, B, C]) *A { return &t.First }, a),
		FieldOf(func(t *Triple[A, B, C]) *B { return &t.Second }, b),
		FieldOf(func(t *Triple[A, B, C]) *C { return &t.Third }, c),
	)
}

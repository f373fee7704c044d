// Package fixed builds binpack codecs for fixed-size values whose bytes must
// pass a parser, such as curve points and field scalars.
package fixed

import "github.com/unkn0wn-root/binpack"

type codec[T any] struct {
	size  int
	parse func([]byte) (T, error)
	put   func([]byte, T) []byte
}

// New returns a codec that reads exactly size bytes and hands them to parse.
// A parse error fails the decode. put must append exactly size bytes.
func New[T any](size int, parse func(b []byte) (T, error), put func(buf []byte, v T) []byte) binpack.Codec[T] {
	return codec[T]{size: size, parse: parse, put: put}
}

func (c codec[T]) Width() int { return c.size }

func (c codec[T]) Decode(b []byte) (T, []byte, bool) {
	var zero T
	head, rest, ok := binpack.Take(b, c.size)
	if !ok {
		return zero, b, false
	}
	v, err := c.parse(head)
	if err != nil {
		return zero, b, false
	}
	return v, rest, true
}

func (c codec[T]) Encode(buf []byte, v T) []byte { return c.put(buf, v) }

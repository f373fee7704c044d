// Package ristretto255 packs ristretto255 group elements and scalars for
// binpack. Every encoding is the canonical 32-byte form; decoding rejects
// bytes that are not a canonical point or scalar.
package ristretto255

import (
	r255 "github.com/gtank/ristretto255"

	"github.com/unkn0wn-root/binpack"
	"github.com/unkn0wn-root/binpack/internal/fixed"
)

// Size is the encoded length of an element and of a scalar.
const Size = 32

var (
	// Point packs a group element.
	Point = fixed.New(Size, parsePoint, func(buf []byte, e *r255.Element) []byte {
		return e.Encode(buf)
	})
	// Scalar packs a canonical scalar.
	Scalar = fixed.New(Size, parseScalar, func(buf []byte, s *r255.Scalar) []byte {
		return s.Encode(buf)
	})
)

// Compressed holds an element encoding that has not been checked. It packs as
// its 32 raw bytes and only Decompress validates it.
type Compressed [Size]byte

// Compress returns the encoding of e.
func Compress(e *r255.Element) Compressed {
	var c Compressed
	copy(c[:], e.Encode(nil))
	return c
}

// Decompress parses c into a group element.
func (c Compressed) Decompress() (*r255.Element, error) {
	return parsePoint(c[:])
}

func (c Compressed) Pack(buf []byte) []byte { return append(buf, c[:]...) }

func (c *Compressed) Unpack(b []byte) ([]byte, bool) {
	head, rest, ok := binpack.Take(b, Size)
	if !ok {
		return b, false
	}
	copy(c[:], head)
	return rest, true
}

func parsePoint(b []byte) (*r255.Element, error) {
	e := r255.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, err
	}
	return e, nil
}

func parseScalar(b []byte) (*r255.Scalar, error) {
	s := r255.NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, err
	}
	return s, nil
}

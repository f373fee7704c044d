package codec

import (
	"fmt"

	"github.com/unkn0wn-root/binpack"
)

// Binary stores values in the binpack format. Decoding is strict: the
// payload must hold exactly one value.
type Binary[V any] struct {
	c binpack.Codec[V]
}

// NewBinary derives the binpack codec for V by reflection.
func NewBinary[V any]() (Binary[V], error) {
	c, err := binpack.Derive[V]()
	if err != nil {
		return Binary[V]{}, err
	}
	return Binary[V]{c: c}, nil
}

// MustBinary is like NewBinary but panics on error.
func MustBinary[V any]() Binary[V] {
	b, err := NewBinary[V]()
	if err != nil {
		panic(err)
	}
	return b
}

// NewBinaryWith uses an explicit binpack codec, e.g. one built from
// binpack.Struct or binpack.Enum.
func NewBinaryWith[V any](c binpack.Codec[V]) Binary[V] {
	return Binary[V]{c: c}
}

func (b Binary[V]) Encode(v V) ([]byte, error) { return binpack.ToBytes(b.c, v), nil }

func (b Binary[V]) Decode(p []byte) (V, error) {
	v, err := binpack.FromBytes(b.c, p)
	if err != nil {
		return v, fmt.Errorf("codec: binary payload of %d bytes: %w", len(p), err)
	}
	return v, nil
}

func (Binary[V]) Kind() Kind { return KindBinary }

package binpack

// ToBytes packs v into a fresh buffer.
func ToBytes[T any](c Codec[T], v T) []byte {
	return c.Encode(nil, v)
}

// FromBytes unpacks a T that must span all of b. Leftover bytes after a
// well-formed value are treated like any other malformation.
func FromBytes[T any](c Codec[T], b []byte) (T, error) {
	v, rest, ok := c.Decode(b)
	if !ok || len(rest) != 0 {
		var zero T
		return zero, ErrMalformed
	}
	return v, nil
}

// FromBytesPrefix unpacks a T from the front of b and returns whatever
// follows it.
func FromBytesPrefix[T any](c Codec[T], b []byte) (T, []byte, error) {
	v, rest, ok := c.Decode(b)
	if !ok {
		var zero T
		return zero, b, ErrMalformed
	}
	return v, rest, nil
}

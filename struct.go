package binpack

// Field is one member of a struct codec built with Struct.
type Field[T any] interface {
	encodeField(buf []byte, v *T) []byte
	decodeField(b []byte, v *T) ([]byte, bool)
	width() int
}

type field[T, F any] struct {
	get func(*T) *F
	c   Codec[F]
}

func (f field[T, F]) encodeField(buf []byte, v *T) []byte { return f.c.Encode(buf, *f.get(v)) }
func (f field[T, F]) width() int                          { return widthOf(f.c) }

func (f field[T, F]) decodeField(b []byte, v *T) ([]byte, bool) {
	x, rest, ok := f.c.Decode(b)
	if !ok {
		return b, false
	}
	*f.get(v) = x
	return rest, true
}

// FieldOf describes a field of T: get returns the field's address inside a
// T and c packs it.
//
//	binpack.FieldOf(func(p *Point) *int32 { return &p.X }, binpack.Int32{})
func FieldOf[T, F any](get func(*T) *F, c Codec[F]) Field[T] {
	return field[T, F]{get: get, c: c}
}

type structCodec[T any] struct {
	fields []Field[T]
}

// Struct composes field codecs into a codec for T. Encoding concatenates the
// fields in the order given; decoding reads them in the same order and yields
// nothing if any field fails. With no fields T packs to zero bytes and always
// decodes to its zero value.
func Struct[T any](fields ...Field[T]) Codec[T] {
	return structCodec[T]{fields: append([]Field[T](nil), fields...)}
}

func (c structCodec[T]) Width() int {
	total := 0
	for _, f := range c.fields {
		w := f.width()
		if w < 0 {
			return -1
		}
		total += w
	}
	return total
}

func (c structCodec[T]) Decode(b []byte) (T, []byte, bool) {
	var v T
	rest := b
	for _, f := range c.fields {
		var ok bool
		if rest, ok = f.decodeField(rest, &v); !ok {
			var zero T
			return zero, b, false
		}
	}
	return v, rest, true
}

func (c structCodec[T]) Encode(buf []byte, v T) []byte {
	for _, f := range c.fields {
		buf = f.encodeField(buf, &v)
	}
	return buf
}

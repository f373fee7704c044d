package binpack

// Codec packs values of T to bytes and unpacks them back.
// Implementations are stateless and safe for concurrent use.
type Codec[T any] interface {
	// Decode reads a T from the front of b and returns it together with the
	// unread suffix. ok is false when b does not start with a well-formed T;
	// in that case v and rest are meaningless.
	Decode(b []byte) (v T, rest []byte, ok bool)
	// Encode appends the encoding of v to buf and returns the extended buffer.
	Encode(buf []byte, v T) []byte
}

// Fixed is implemented by codecs that may know their encoded width up front.
// A negative width means the length depends on the value.
type Fixed interface {
	Width() int
}

// Packer is implemented by types that write their own binary form.
type Packer interface {
	Pack(buf []byte) []byte
}

// Unpacker is implemented by pointers to types that read their own binary form.
// Unpack fills the receiver from the front of b and returns the rest.
type Unpacker interface {
	Unpack(b []byte) (rest []byte, ok bool)
}

type funcCodec[T any] struct {
	dec func([]byte) (T, []byte, bool)
	enc func([]byte, T) []byte
}

func (c funcCodec[T]) Decode(b []byte) (T, []byte, bool) { return c.dec(b) }
func (c funcCodec[T]) Encode(buf []byte, v T) []byte     { return c.enc(buf, v) }

// Func builds a Codec from a decode and an encode function.
func Func[T any](dec func(b []byte) (T, []byte, bool), enc func(buf []byte, v T) []byte) Codec[T] {
	return funcCodec[T]{dec: dec, enc: enc}
}

// Take splits the first n bytes off b. It is the building block for
// hand-written fixed-width codecs.
func Take(b []byte, n int) (head, rest []byte, ok bool) {
	if n < 0 || len(b) < n {
		return nil, b, false
	}
	return b[:n:n], b[n:], true
}

type selfCodec[T any, P interface {
	*T
	Unpacker
}] struct{}

func (selfCodec[T, P]) Decode(b []byte) (T, []byte, bool) {
	var v T
	rest, ok := P(&v).Unpack(b)
	if !ok {
		var zero T
		return zero, b, false
	}
	return v, rest, true
}

func (selfCodec[T, P]) Encode(buf []byte, v T) []byte {
	if p, ok := any(v).(Packer); ok {
		return p.Pack(buf)
	}
	return any(P(&v)).(Packer).Pack(buf)
}

// Self returns the codec of a type that packs itself. T (or *T) must
// implement Packer and *T must implement Unpacker.
//
//	c := binpack.Self[Hash, *Hash]()
func Self[T any, P interface {
	*T
	Unpacker
}]() Codec[T] {
	var v T
	if _, ok := any(v).(Packer); !ok {
		if _, ok := any(P(&v)).(Packer); !ok {
			panic("binpack: Self requires T or *T to implement Packer")
		}
	}
	return selfCodec[T, P]{}
}

// widthOf returns the fixed width of c, or -1.
func widthOf(c any) int {
	if f, ok := c.(Fixed); ok {
		return f.Width()
	}
	return -1
}

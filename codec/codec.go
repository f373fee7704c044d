// Package codec turns values into payload bytes for the store and back.
//
// Each adapter reports a Kind. The store writes that byte into every frame
// so that entries written with one codec are never decoded with another.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
	Kind() Kind
}

// Kind identifies the payload format on the wire.
type Kind byte

const (
	KindRaw Kind = iota + 1
	KindJSON
	KindCBOR
	KindMsgpack
	KindProtobuf
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindJSON:
		return "json"
	case KindCBOR:
		return "cbor"
	case KindMsgpack:
		return "msgpack"
	case KindProtobuf:
		return "protobuf"
	case KindBinary:
		return "binary"
	}
	return "unknown"
}

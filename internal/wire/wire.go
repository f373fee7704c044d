// Package wire frames encoded values for storage in a provider.
//
// Every frame starts with a fixed header:
//
//	magic "BNPK" | version u8 | kind u8 | codec u8
//
// A single frame follows it with one length-prefixed payload. A bulk frame
// follows it with a u64 item count and, per item, a length-prefixed key and
// payload. All integers are little-endian binpack encodings.
package wire

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/binpack"
)

const (
	version    byte = 1
	kindSingle byte = 1
	kindBulk   byte = 2

	headerLen = 4 + 1 + 1 + 1
)

var (
	ErrCorrupt = errors.New("binpack: corrupt entry")
	magic      = []byte("BNPK")
)

type header struct {
	Magic   []byte
	Version byte
	Kind    byte
	Codec   byte
}

var headerCodec = binpack.Struct(
	binpack.FieldOf(func(h *header) *[]byte { return &h.Magic }, binpack.Array[byte](len(magic), binpack.Uint8{})),
	binpack.FieldOf(func(h *header) *byte { return &h.Version }, binpack.Codec[byte](binpack.Uint8{})),
	binpack.FieldOf(func(h *header) *byte { return &h.Kind }, binpack.Codec[byte](binpack.Uint8{})),
	binpack.FieldOf(func(h *header) *byte { return &h.Codec }, binpack.Codec[byte](binpack.Uint8{})),
)

// view is binpack.Bytes without the copy: decoded payloads alias the frame.
var view = binpack.Func(
	func(b []byte) ([]byte, []byte, bool) {
		n, rest, ok := binpack.Uint64{}.Decode(b)
		if !ok || n > uint64(len(rest)) {
			return nil, b, false
		}
		p, rest, _ := binpack.Take(rest, int(n))
		return p, rest, true
	},
	func(buf []byte, p []byte) []byte {
		return append(binpack.Uint64{}.Encode(buf, uint64(len(p))), p...)
	},
)

// readHeader checks the header and returns the codec byte and the body.
func readHeader(b []byte, kind byte) (byte, []byte, error) {
	h, rest, ok := headerCodec.Decode(b)
	if !ok || string(h.Magic) != string(magic) || h.Version != version || h.Kind != kind {
		return 0, nil, ErrCorrupt
	}
	return h.Codec, rest, nil
}

func appendHeader(buf []byte, kind, codec byte) []byte {
	return headerCodec.Encode(buf, header{Magic: magic, Version: version, Kind: kind, Codec: codec})
}

// EncodeSingle frames one payload written by the codec identified by codec.
func EncodeSingle(codec byte, payload []byte) []byte {
	buf := make([]byte, 0, headerLen+8+len(payload))
	buf = appendHeader(buf, kindSingle, codec)
	return view.Encode(buf, payload)
}

// DecodeSingle returns the codec byte and payload of a single frame. The
// payload aliases b. Trailing bytes are corruption.
func DecodeSingle(b []byte) (codec byte, payload []byte, err error) {
	codec, body, err := readHeader(b, kindSingle)
	if err != nil {
		return 0, nil, err
	}
	payload, rest, ok := view.Decode(body)
	if !ok || len(rest) != 0 {
		return 0, nil, ErrCorrupt
	}
	return codec, payload, nil
}

type BulkItem struct {
	Key     string
	Payload []byte
}

var itemsCodec = binpack.Slice(binpack.Struct(
	binpack.FieldOf(func(it *BulkItem) *string { return &it.Key }, binpack.Codec[string](binpack.String{})),
	binpack.FieldOf(func(it *BulkItem) *[]byte { return &it.Payload }, view),
))

// EncodeBulk frames items in order. Keys must be non-empty.
func EncodeBulk(codec byte, items []BulkItem) ([]byte, error) {
	total := headerLen + 8
	for i, it := range items {
		if it.Key == "" {
			return nil, fmt.Errorf("wire: bulk item %d has an empty key", i)
		}
		total += 8 + len(it.Key) + 8 + len(it.Payload)
	}
	buf := make([]byte, 0, total)
	buf = appendHeader(buf, kindBulk, codec)
	return itemsCodec.Encode(buf, items), nil
}

// DecodeBulk returns the codec byte and items of a bulk frame, in encoded
// order. Payloads alias b; duplicate keys are preserved.
func DecodeBulk(b []byte) (codec byte, items []BulkItem, err error) {
	codec, body, err := readHeader(b, kindBulk)
	if err != nil {
		return 0, nil, err
	}
	items, rest, ok := itemsCodec.Decode(body)
	if !ok || len(rest) != 0 {
		return 0, nil, ErrCorrupt
	}
	for _, it := range items {
		if it.Key == "" {
			return 0, nil, ErrCorrupt
		}
	}
	return codec, items, nil
}

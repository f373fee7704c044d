package binpack

import (
	"bytes"
	"fmt"
	"testing"
)

type whatsIt interface{ isWhatsIt() }

type goesEr struct {
	Big   U128
	Small uint64
}

type pozer struct {
	C rune
	N int16
}

type whaner struct{}

func (goesEr) isWhatsIt() {}
func (pozer) isWhatsIt()  {}
func (whaner) isWhatsIt() {}

var whatsItCodec = Enum(
	VariantOf[whatsIt](Struct(
		FieldOf(func(g *goesEr) *U128 { return &g.Big }, Codec[U128](Uint128{})),
		FieldOf(func(g *goesEr) *uint64 { return &g.Small }, Codec[uint64](Uint64{})),
	)),
	VariantOf[whatsIt](Struct(
		FieldOf(func(p *pozer) *rune { return &p.C }, Codec[rune](Rune{})),
		FieldOf(func(p *pozer) *int16 { return &p.N }, Codec[int16](Int16{})),
	)),
	VariantOf[whatsIt](Struct[whaner]()),
)

func TestEnumPayloadLayout(t *testing.T) {
	enc := ToBytes(whatsItCodec, whatsIt(pozer{C: 'a', N: -3}))
	want := []byte{0x01, 0x61, 0x00, 0x00, 0x00, 0xFD, 0xFF}
	if !bytes.Equal(enc, want) {
		t.Fatalf("encode = %x, want %x", enc, want)
	}
	got, err := FromBytes(whatsItCodec, enc)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if got != whatsIt(pozer{C: 'a', N: -3}) {
		t.Fatalf("got %#v", got)
	}
}

func TestEnumUnitVariantIsTagOnly(t *testing.T) {
	enc := ToBytes(whatsItCodec, whatsIt(whaner{}))
	if !bytes.Equal(enc, []byte{0x02}) {
		t.Fatalf("unit variant = %x, want 02", enc)
	}
	got, err := FromBytes(whatsItCodec, enc)
	if err != nil || got != whatsIt(whaner{}) {
		t.Fatalf("round trip = (%#v, %v)", got, err)
	}
}

func TestEnumTagDensity(t *testing.T) {
	payload := make([]byte, 24) // enough for the largest variant
	for tag := 0; tag < 256; tag++ {
		in := append([]byte{byte(tag)}, payload...)
		_, _, ok := whatsItCodec.Decode(in)
		if tag < 3 && !ok {
			t.Fatalf("tag %d rejected", tag)
		}
		if tag >= 3 && ok {
			t.Fatalf("tag %d accepted", tag)
		}
	}
	if _, _, ok := whatsItCodec.Decode(nil); ok {
		t.Fatalf("empty input accepted")
	}
}

func TestEnumRoundTripAllVariants(t *testing.T) {
	values := []whatsIt{
		goesEr{Big: U128{Lo: 1, Hi: 1 << 63}, Small: 42},
		pozer{C: '€', N: 32767},
		whaner{},
	}
	for i, v := range values {
		enc := ToBytes(whatsItCodec, v)
		if enc[0] != byte(i) {
			t.Fatalf("%T tag = %d, want %d", v, enc[0], i)
		}
		got, err := FromBytes(whatsItCodec, enc)
		if err != nil || got != v {
			t.Fatalf("%T round trip = (%#v, %v)", v, got, err)
		}
		for n := 0; n < len(enc); n++ {
			if _, _, ok := whatsItCodec.Decode(enc[:n]); ok {
				t.Fatalf("%T: decode of %d/%d bytes succeeded", v, n, len(enc))
			}
		}
	}
}

func TestEnumEncodeUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("encoding a nil enum did not panic")
		}
	}()
	whatsItCodec.Encode(nil, nil)
}

func TestEnumTooManyVariants(t *testing.T) {
	vs := make([]Variant[any], MaxVariants)
	for i := range vs {
		vs[i] = VariantOf[any](Codec[struct{}](Unit{}))
	}
	_ = Enum(vs...) // exactly the limit is fine

	defer func() {
		if recover() == nil {
			t.Fatalf("257 variants did not panic")
		}
	}()
	Enum(append(vs, VariantOf[any](Codec[struct{}](Unit{})))...)
}

func TestVariantOfRejectsForeignType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("VariantOf accepted a type outside the enum")
		}
	}()
	VariantOf[whatsIt](Codec[uint8](Uint8{}))
}

type color uint8

const (
	red   color = 1
	green color = 5
	blue  color = 200
)

func (c color) String() string { return fmt.Sprintf("color(%d)", uint8(c)) }

func TestConstsUsePositionNotValue(t *testing.T) {
	c := Consts(red, green, blue)
	for i, v := range []color{red, green, blue} {
		enc := ToBytes(c, v)
		if !bytes.Equal(enc, []byte{byte(i)}) {
			t.Fatalf("%v = %x, want %02x", v, enc, i)
		}
		got, err := FromBytes(c, enc)
		if err != nil || got != v {
			t.Fatalf("%v round trip = (%v, %v)", v, got, err)
		}
	}
	if _, _, ok := c.Decode([]byte{3}); ok {
		t.Fatalf("tag 3 accepted")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("encoding an unlisted constant did not panic")
		}
	}()
	c.Encode(nil, color(9))
}

func TestConstsRejectDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("duplicate constants did not panic")
		}
	}()
	Consts("a", "b", "a")
}

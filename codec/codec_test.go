package codec

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/unkn0wn-root/binpack"
)

type user struct {
	ID    int64
	Name  string
	Tags  []string
	Score float64
}

func roundTrip[V any](t *testing.T, c Codec[V], in V) V {
	t.Helper()
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("%v encode: %v", c.Kind(), err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("%v decode: %v", c.Kind(), err)
	}
	return out
}

func TestAdaptersRoundTrip(t *testing.T) {
	in := user{ID: 7, Name: "ana", Tags: []string{"x", "y"}, Score: 1.25}

	bin, err := NewBinary[user]()
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	cases := []struct {
		name string
		c    Codec[user]
		kind Kind
	}{
		{"json", JSON[user]{}, KindJSON},
		{"msgpack", Msgpack[user]{}, KindMsgpack},
		{"cbor", MustCBOR[user](false), KindCBOR},
		{"cbor-det", MustCBOR[user](true), KindCBOR},
		{"binary", bin, KindBinary},
	}
	for _, tc := range cases {
		if tc.c.Kind() != tc.kind {
			t.Fatalf("%s: kind = %v, want %v", tc.name, tc.c.Kind(), tc.kind)
		}
		out := roundTrip(t, tc.c, in)
		if diff := cmp.Diff(in, out); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestRawCodecs(t *testing.T) {
	if got := roundTrip[[]byte](t, Bytes{}, []byte{0, 1}); string(got) != "\x00\x01" {
		t.Fatalf("bytes = %x", got)
	}
	if got := roundTrip[string](t, String{}, "héllo"); got != "héllo" {
		t.Fatalf("string = %q", got)
	}
	if (Bytes{}).Kind() != KindRaw || (String{}).Kind() != KindRaw {
		t.Fatalf("raw codecs must report KindRaw")
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	in := wrapperspb.String("payload")
	out := roundTrip[*wrapperspb.StringValue](t, c, in)
	if !proto.Equal(in, out) {
		t.Fatalf("got %v, want %v", out, in)
	}
	if _, err := c.Decode([]byte{0xFF, 0xFF, 0xFF}); err == nil {
		t.Fatalf("decoded garbage")
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := c.Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.Encode(m)
		if string(again) != string(first) {
			t.Fatalf("deterministic CBOR differs between runs")
		}
	}
}

func TestCBORTimeIsRFC3339(t *testing.T) {
	c := MustCBOR[time.Time](false)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 5, time.UTC)
	b, err := c.Encode(ts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(b), "2024-05-01T12:00:00.000000005Z") {
		t.Fatalf("time not encoded as RFC3339Nano: %x", b)
	}
	if got := roundTrip[time.Time](t, c, ts); !got.Equal(ts) {
		t.Fatalf("time = %v, want %v", got, ts)
	}
}

func TestLimit(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}
	if c.Kind() != KindRaw {
		t.Fatalf("Limit must forward Kind")
	}
	if _, err := c.Decode([]byte("12345")); err == nil {
		t.Fatalf("oversized payload accepted")
	}
	if got, err := c.Decode([]byte("1234")); err != nil || got != "1234" {
		t.Fatalf("decode = (%q, %v)", got, err)
	}
	off := Limit[string]{Inner: String{}}
	if _, err := off.Decode(make([]byte, 1<<16)); err != nil {
		t.Fatalf("disabled limit rejected payload: %v", err)
	}
}

type point struct{ X, Y int16 }

func TestBinaryWithCombinators(t *testing.T) {
	pc := binpack.Struct(
		binpack.FieldOf(func(p *point) *int16 { return &p.X }, binpack.Codec[int16](binpack.Int16{})),
		binpack.FieldOf(func(p *point) *int16 { return &p.Y }, binpack.Codec[int16](binpack.Int16{})),
	)
	c := NewBinaryWith(pc)
	b, err := c.Encode(point{X: 1, Y: -1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != "\x01\x00\xff\xff" {
		t.Fatalf("encode = %x", b)
	}

	_, err = c.Decode(append(b, 0))
	if !errors.Is(err, binpack.ErrMalformed) {
		t.Fatalf("trailing byte: err = %v, want ErrMalformed", err)
	}
	if _, err := c.Decode(b[:3]); !errors.Is(err, binpack.ErrMalformed) {
		t.Fatalf("short payload: err = %v, want ErrMalformed", err)
	}
}

func TestNewBinaryRejectsUnderivable(t *testing.T) {
	if _, err := NewBinary[chan int](); err == nil {
		t.Fatalf("derived a codec for a channel")
	}
}

func TestKindString(t *testing.T) {
	if KindBinary.String() != "binary" || Kind(0).String() != "unknown" {
		t.Fatalf("unexpected kind names: %v %v", KindBinary, Kind(0))
	}
}

package bls12381

import (
	"bytes"
	"testing"

	bls "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/unkn0wn-root/binpack"
)

func TestScalarIsLittleEndian(t *testing.T) {
	var s fr.Element
	s.SetUint64(42)
	enc := binpack.ToBytes(Scalar, s)
	want := append([]byte{42}, make([]byte, ScalarSize-1)...)
	if !bytes.Equal(enc, want) {
		t.Fatalf("encoding = %x, want %x", enc, want)
	}
	got, err := binpack.FromBytes(Scalar, enc)
	if err != nil || !got.Equal(&s) {
		t.Fatalf("round trip = (%v, %v)", got.String(), err)
	}
}

func TestScalarRejectsNonCanonical(t *testing.T) {
	if _, _, ok := Scalar.Decode(bytes.Repeat([]byte{0xFF}, ScalarSize)); ok {
		t.Fatalf("decoded a scalar above the modulus")
	}
}

func TestPointsRoundTrip(t *testing.T) {
	g1j, g2j, g1, g2 := bls.Generators()

	enc := binpack.ToBytes(G1Affine, g1)
	if len(enc) != G1Size {
		t.Fatalf("G1 encoded %d bytes", len(enc))
	}
	if got, err := binpack.FromBytes(G1Affine, enc); err != nil || !got.Equal(&g1) {
		t.Fatalf("G1Affine round trip: %v", err)
	}
	if !bytes.Equal(binpack.ToBytes(G1Jac, g1j), enc) {
		t.Fatalf("G1Jac encoding differs from its affine form")
	}
	if got, err := binpack.FromBytes(G1Jac, enc); err != nil || !got.Equal(&g1j) {
		t.Fatalf("G1Jac round trip: %v", err)
	}

	enc = binpack.ToBytes(G2Affine, g2)
	if len(enc) != G2Size {
		t.Fatalf("G2 encoded %d bytes", len(enc))
	}
	if got, err := binpack.FromBytes(G2Affine, enc); err != nil || !got.Equal(&g2) {
		t.Fatalf("G2Affine round trip: %v", err)
	}
	if got, err := binpack.FromBytes(G2Jac, binpack.ToBytes(G2Jac, g2j)); err != nil || !got.Equal(&g2j) {
		t.Fatalf("G2Jac round trip: %v", err)
	}
}

func TestPointsRejectInvalidBytes(t *testing.T) {
	_, _, g1, g2 := bls.Generators()

	b1 := binpack.ToBytes(G1Affine, g1)
	b1[G1Size-1] ^= 1
	if _, _, ok := G1Affine.Decode(b1); ok {
		t.Fatalf("decoded a tampered G1 point")
	}
	if _, _, ok := G1Jac.Decode(b1); ok {
		t.Fatalf("decoded a tampered G1 point as projective")
	}

	b2 := binpack.ToBytes(G2Affine, g2)
	b2[G2Size-1] ^= 1
	if _, _, ok := G2Affine.Decode(b2); ok {
		t.Fatalf("decoded a tampered G2 point")
	}

	if _, _, ok := G1Affine.Decode(make([]byte, G1Size-1)); ok {
		t.Fatalf("decoded a short G1 point")
	}
}

func TestSliceOfPoints(t *testing.T) {
	g1j, _, g1, _ := bls.Generators()
	var j bls.G1Jac
	j.Double(&g1j)
	var twice bls.G1Affine
	twice.FromJacobian(&j)

	c := binpack.Slice(G1Affine)
	got, err := binpack.FromBytes(c, binpack.ToBytes(c, []bls.G1Affine{g1, twice}))
	if err != nil || len(got) != 2 || !got[1].Equal(&twice) {
		t.Fatalf("slice round trip failed: %v", err)
	}
}

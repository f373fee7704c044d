// Package bls12381 packs BLS12-381 scalars and curve points for binpack.
//
// Points use the compressed encoding (48 bytes on G1, 96 on G2); projective
// points are normalized to affine first. Scalars are 32 little-endian bytes.
// Decoding rejects non-canonical scalars, points off the curve and points
// outside the prime-order subgroup.
package bls12381

import (
	bls "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/unkn0wn-root/binpack/internal/fixed"
)

const (
	ScalarSize = fr.Bytes
	G1Size     = bls.SizeOfG1AffineCompressed
	G2Size     = bls.SizeOfG2AffineCompressed
)

var (
	Scalar = fixed.New(ScalarSize, parseScalar, putScalar)

	G1Affine = fixed.New(G1Size, parseG1, putG1)
	G1Jac    = fixed.New(G1Size,
		func(b []byte) (bls.G1Jac, error) {
			var j bls.G1Jac
			a, err := parseG1(b)
			if err != nil {
				return j, err
			}
			j.FromAffine(&a)
			return j, nil
		},
		func(buf []byte, j bls.G1Jac) []byte {
			var a bls.G1Affine
			a.FromJacobian(&j)
			return putG1(buf, a)
		},
	)

	G2Affine = fixed.New(G2Size, parseG2, putG2)
	G2Jac    = fixed.New(G2Size,
		func(b []byte) (bls.G2Jac, error) {
			var j bls.G2Jac
			a, err := parseG2(b)
			if err != nil {
				return j, err
			}
			j.FromAffine(&a)
			return j, nil
		},
		func(buf []byte, j bls.G2Jac) []byte {
			var a bls.G2Affine
			a.FromJacobian(&j)
			return putG2(buf, a)
		},
	)
)

func parseScalar(b []byte) (fr.Element, error) {
	return fr.LittleEndian.Element((*[fr.Bytes]byte)(b))
}

func putScalar(buf []byte, s fr.Element) []byte {
	var b [fr.Bytes]byte
	fr.LittleEndian.PutElement(&b, s)
	return append(buf, b[:]...)
}

func parseG1(b []byte) (bls.G1Affine, error) {
	var p bls.G1Affine
	_, err := p.SetBytes(b)
	return p, err
}

func putG1(buf []byte, p bls.G1Affine) []byte {
	b := p.Bytes()
	return append(buf, b[:]...)
}

func parseG2(b []byte) (bls.G2Affine, error) {
	var p bls.G2Affine
	_, err := p.SetBytes(b)
	return p, err
}

func putG2(buf []byte, p bls.G2Affine) []byte {
	b := p.Bytes()
	return append(buf, b[:]...)
}

// Package blake3 packs BLAKE3 digests for binpack.
package blake3

import (
	"encoding/hex"

	lb "lukechampine.com/blake3"

	"github.com/unkn0wn-root/binpack"
)

// Size is the digest length in bytes.
const Size = 32

// Hash is a BLAKE3-256 digest. It packs as its 32 raw bytes, so Derive and
// Codec produce the same encoding.
type Hash [Size]byte

// Codec packs a Hash.
var Codec = binpack.Self[Hash, *Hash]()

// Sum returns the BLAKE3 digest of data.
func Sum(data []byte) Hash { return Hash(lb.Sum256(data)) }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (h Hash) Pack(buf []byte) []byte { return append(buf, h[:]...) }

func (h *Hash) Unpack(b []byte) ([]byte, bool) {
	head, rest, ok := binpack.Take(b, Size)
	if !ok {
		return b, false
	}
	copy(h[:], head)
	return rest, true
}

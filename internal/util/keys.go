package util

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/binpack"
)

var keyList = binpack.Slice[string](binpack.String{})

// BulkKey returns a deterministic composite key for a set of members. Order
// and duplicates in keys do not matter; epoch is mixed into the hash.
func BulkKey(prefix string, epoch uint64, keys []string) string {
	return BulkKeySorted(prefix, epoch, SortedUnique(keys))
}

// BulkKeySorted is BulkKey for keys that are already sorted and unique.
func BulkKeySorted(prefix string, epoch uint64, sorted []string) string {
	// members are length-prefixed so {"a,b"} and {"a","b"} differ
	material := binpack.Uint64{}.Encode(nil, epoch)
	material = keyList.Encode(material, sorted)
	return fmt.Sprintf("%s:%016x", prefix, xxhash.Sum64(material))
}

// SortedUnique returns a sorted copy of keys without duplicates.
func SortedUnique(keys []string) []string {
	s := slices.Clone(keys)
	slices.Sort(s)
	return slices.Compact(s)
}

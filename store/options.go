package store

import (
	"time"

	"github.com/unkn0wn-root/binpack/codec"
	"github.com/unkn0wn-root/binpack/provider"
)

// SetCostFunc returns the cost passed to Provider.Set for one frame.
// n is the number of values in the frame (1 for singles).
type SetCostFunc func(storageKey string, frame []byte, isBulk bool, n int) int64

type Options[V any] struct {
	// Namespace isolates this store's keys; required.
	Namespace string
	// Provider holds the frames; required.
	Provider provider.Provider
	// Codec turns values into payloads; required. Its Kind is written into
	// every frame and checked on read.
	Codec codec.Codec[V]

	Logger Logger
	Hooks  Hooks

	// DefaultTTL applies to singles when Set is called with ttl 0 (10m).
	DefaultTTL time.Duration
	// BulkTTL applies to bulk frames when SetBulk is called with ttl 0 (10m).
	BulkTTL time.Duration
	// ComputeSetCost defaults to a constant 1.
	ComputeSetCost SetCostFunc

	// Disabled turns every operation into a miss or a no-op.
	Disabled bool
	// DisableBulk stops SetBulk from writing bulk frames and GetBulk from
	// reading them; both work on singles only.
	DisableBulk bool
}

// Package store keeps codec-encoded values in a byte Provider.
//
// Values are framed with a magic, a format version and the codec Kind, so
// an entry written by a different codec, a foreign writer or a truncated
// transfer is detected on read, deleted and reported as a miss.
//
// GetBulk/SetBulk keep one frame per distinct key set next to the single
// entries. Bulk keys mix in a per-Store epoch that starts at a clock-derived
// value and advances on every write, so a bulk frame is only readable by
// the Store that wrote it and only until its next Set, Delete or SetBulk.
// Singles are shared by every Store on the same namespace.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/binpack/codec"
	"github.com/unkn0wn-root/binpack/internal/util"
	"github.com/unkn0wn-root/binpack/internal/wire"
	"github.com/unkn0wn-root/binpack/provider"
)

type Store[V any] struct {
	ns       string
	provider provider.Provider
	codec    codec.Codec[V]
	kind     byte
	log      Logger
	hooks    Hooks

	enabled     bool
	bulkEnabled bool

	defaultTTL     time.Duration
	bulkTTL        time.Duration
	computeSetCost SetCostFunc

	epoch atomic.Uint64
}

func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("store: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("store: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("store: namespace is required")
	}

	s := &Store[V]{
		ns:          opts.Namespace,
		provider:    opts.Provider,
		codec:       opts.Codec,
		kind:        byte(opts.Codec.Kind()),
		enabled:     !opts.Disabled,
		bulkEnabled: !opts.DisableBulk,
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	s.bulkTTL = coalesce(opts.BulkTTL, defaultBulkTTL)
	s.computeSetCost = opts.ComputeSetCost
	if s.computeSetCost == nil {
		s.computeSetCost = unitCost
	}
	s.epoch.Store(uint64(time.Now().UnixNano()))
	return s, nil
}

func (s *Store[V]) Enabled() bool { return s.enabled }

func (s *Store[V]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

// Get returns the value stored under key. Entries that fail validation are
// deleted and reported as a miss; only provider errors are returned.
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !s.enabled {
		return zero, false, nil
	}
	k := s.singleKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil {
		s.hooks.ProviderError("get", k, err)
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	kind, payload, err := wire.DecodeSingle(raw)
	if err != nil {
		s.heal(ctx, k, "corrupt")
		return zero, false, nil
	}
	if kind != s.kind {
		s.heal(ctx, k, "codec_mismatch")
		return zero, false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.log.Debug("single decode failed", Fields{"key": key, "err": err})
		s.heal(ctx, k, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

// Set stores v under key. ttl 0 means DefaultTTL. A write the provider
// rejects under pressure is not an error.
func (s *Store[V]) Set(ctx context.Context, key string, v V, ttl time.Duration) error {
	if !s.enabled {
		return nil
	}
	payload, err := s.codec.Encode(v)
	if err != nil {
		return err
	}
	s.epoch.Add(1)
	return s.setSingle(ctx, key, payload, coalesce(ttl, s.defaultTTL))
}

func (s *Store[V]) Delete(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	s.epoch.Add(1)
	k := s.singleKey(key)
	if err := s.provider.Del(ctx, k); err != nil {
		s.hooks.ProviderError("del", k, err)
		return err
	}
	return nil
}

// GetBulk returns the values found for keys and, in request order, the keys
// that missed. It reads the bulk frame for the key set first and falls back
// to singles when that frame is absent or unusable.
func (s *Store[V]) GetBulk(ctx context.Context, keys []string) (map[string]V, []string, error) {
	out := make(map[string]V, len(keys))
	if !s.enabled {
		return out, append([]string(nil), keys...), nil
	}
	if len(keys) == 0 {
		return out, nil, nil
	}

	if s.bulkEnabled {
		if found, ok := s.readBulk(ctx, keys); ok {
			for k, v := range found {
				out[k] = v
			}
		}
	}

	var missing []string
	for _, k := range keys {
		if _, ok := out[k]; ok {
			continue
		}
		v, ok, err := s.Get(ctx, k)
		if err != nil && ctx.Err() != nil {
			return out, nil, ctx.Err()
		}
		if ok {
			out[k] = v
		} else {
			missing = append(missing, k)
		}
	}
	return out, missing, nil
}

// readBulk returns the decoded bulk frame for keys. ok is false when there
// is no usable frame; a frame that exists but is unusable is deleted.
func (s *Store[V]) readBulk(ctx context.Context, keys []string) (map[string]V, bool) {
	sorted := util.SortedUnique(keys)
	bk := s.bulkKey(sorted)
	raw, ok, err := s.provider.Get(ctx, bk)
	if err != nil {
		s.hooks.ProviderError("get", bk, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	reject := func(reason string) (map[string]V, bool) {
		s.hooks.BulkRejected(s.ns, len(sorted), reason)
		if err := s.provider.Del(ctx, bk); err != nil {
			s.hooks.ProviderError("del", bk, err)
		}
		return nil, false
	}

	kind, items, err := wire.DecodeBulk(raw)
	if err != nil {
		return reject("corrupt")
	}
	if kind != s.kind {
		return reject("codec_mismatch")
	}
	found := make(map[string]V, len(items))
	for _, it := range items {
		v, err := s.codec.Decode(it.Payload)
		if err != nil {
			s.log.Debug("bulk item decode failed", Fields{"key": it.Key, "err": err})
			return reject("value_decode")
		}
		found[it.Key] = v
	}
	for _, k := range sorted {
		if _, ok := found[k]; !ok {
			return reject("incomplete")
		}
	}
	return found, true
}

// SetBulk stores items as one bulk frame (unless DisableBulk) and seeds
// every item as a single. ttl 0 means BulkTTL for the frame; singles always
// use DefaultTTL. Values that fail to encode are skipped, reported in a
// *SetBulkError, and prevent the bulk frame from being written.
func (s *Store[V]) SetBulk(ctx context.Context, items map[string]V, ttl time.Duration) error {
	if !s.enabled || len(items) == 0 {
		return nil
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	keys = util.SortedUnique(keys)

	s.epoch.Add(1)

	var failed map[string]error
	wireItems := make([]wire.BulkItem, 0, len(keys))
	for _, k := range keys {
		payload, err := s.codec.Encode(items[k])
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[k] = err
			continue
		}
		wireItems = append(wireItems, wire.BulkItem{Key: k, Payload: payload})
	}

	var errs []error
	for _, it := range wireItems {
		if err := s.setSingle(ctx, it.Key, it.Payload, s.defaultTTL); err != nil {
			errs = append(errs, err)
		}
	}
	if failed != nil {
		return errors.Join(append(errs, &SetBulkError{Failed: failed})...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if !s.bulkEnabled {
		return nil
	}

	frame, err := wire.EncodeBulk(s.kind, wireItems)
	if err != nil {
		return err
	}
	bk := s.bulkKey(keys)
	ok, err := s.provider.Set(ctx, bk, frame, s.computeSetCost(bk, frame, true, len(wireItems)), coalesce(ttl, s.bulkTTL))
	if err != nil {
		s.hooks.ProviderError("set", bk, err)
		return err
	}
	if !ok {
		s.log.Debug("bulk set rejected by provider", Fields{"bulkKey": bk, "n": len(wireItems)})
		s.hooks.ProviderSetRejected(bk, true)
	}
	return nil
}

func (s *Store[V]) setSingle(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	k := s.singleKey(key)
	frame := wire.EncodeSingle(s.kind, payload)
	ok, err := s.provider.Set(ctx, k, frame, s.computeSetCost(k, frame, false, 1), ttl)
	if err != nil {
		s.hooks.ProviderError("set", k, err)
		return err
	}
	if !ok {
		s.log.Debug("set rejected by provider", Fields{"key": key})
		s.hooks.ProviderSetRejected(k, false)
	}
	return nil
}

func (s *Store[V]) heal(ctx context.Context, storageKey, reason string) {
	s.hooks.SelfHealSingle(storageKey, reason)
	if err := s.provider.Del(ctx, storageKey); err != nil {
		s.log.Warn("self-heal delete failed", Fields{"key": storageKey, "reason": reason, "err": err})
		s.hooks.ProviderError("del", storageKey, err)
	}
}

func (s *Store[V]) singleKey(userKey string) string {
	return "single:" + s.ns + ":" + userKey
}

func (s *Store[V]) bulkKey(sorted []string) string {
	return util.BulkKeySorted("bulk:"+s.ns, s.epoch.Load(), sorted)
}

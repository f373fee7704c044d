package store

import "time"

const (
	defaultTTL     = 10 * time.Minute
	defaultBulkTTL = 10 * time.Minute
)

func unitCost(string, []byte, bool, int) int64 { return 1 }

// coalesce returns def when v is the zero value of T, otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

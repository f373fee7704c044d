package store

// Hooks are callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the store calls them on hot paths.
type Hooks interface {
	// A single entry was deleted on read.
	// reason ∈ {"corrupt", "codec_mismatch", "value_decode"}
	SelfHealSingle(storageKey, reason string)

	// A bulk entry was rejected and the read fell back to singles.
	// reason ∈ {"corrupt", "codec_mismatch", "value_decode", "incomplete"}
	BulkRejected(namespace string, requested int, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string, isBulk bool)

	// Provider returned an error. op ∈ {"get", "set", "del"}
	ProviderError(op, storageKey string, err error)
}

// NopHooks is the default.
type NopHooks struct{}

func (NopHooks) SelfHealSingle(string, string)        {}
func (NopHooks) BulkRejected(string, int, string)     {}
func (NopHooks) ProviderSetRejected(string, bool)     {}
func (NopHooks) ProviderError(string, string, error) {}

package store

import (
	"fmt"
	"sort"
	"strings"
)

// SetBulkError reports the values SetBulk could not encode. The remaining
// values were still written as singles; no bulk frame was written.
type SetBulkError struct {
	Failed map[string]error
}

func (e *SetBulkError) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for k := range e.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("store: %d value(s) failed to encode: %s", len(keys), strings.Join(keys, ", "))
}

func (e *SetBulkError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		out = append(out, err)
	}
	return out
}

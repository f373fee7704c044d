package binpack

import "errors"

// ErrMalformed is the only decode error. Truncated input, an unknown enum tag,
// an invalid bool or rune, a short collection and trailing bytes after a strict
// decode all collapse into it.
var ErrMalformed = errors.New("binpack: malformed input")

package codec

// Bytes passes []byte values through unchanged. Use it when the value is
// already serialized and only the store framing is wanted.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Kind() Kind                       { return KindRaw }

// String stores a Go string as its bytes. No UTF-8 validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
func (String) Kind() Kind                       { return KindRaw }

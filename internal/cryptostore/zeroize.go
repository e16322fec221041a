package cryptostore

// Buffer holds plaintext bytes that must not outlive the call that produced
// them. Callers must invoke Zero as soon as the plaintext is no longer
// needed, including on every error path.
type Buffer struct {
	b []byte
}

// NewBuffer wraps an existing byte slice for zeroizing ownership.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Bytes returns the wrapped plaintext. The returned slice aliases the
// buffer's storage and becomes invalid after Zero is called.
func (z *Buffer) Bytes() []byte {
	if z == nil {
		return nil
	}
	return z.b
}

// String copies the wrapped plaintext into a new string. Prefer Bytes when
// the caller can avoid the extra copy.
func (z *Buffer) String() string {
	if z == nil {
		return ""
	}
	return string(z.b)
}

// Zero overwrites the buffer's storage with zero bytes. Safe to call
// multiple times and on a nil receiver.
func (z *Buffer) Zero() {
	if z == nil {
		return
	}
	for i := range z.b {
		z.b[i] = 0
	}
	z.b = nil
}

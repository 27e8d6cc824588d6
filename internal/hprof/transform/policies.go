package transform

import "strings"

// ZeroPreservingString replaces value with a run of ASCII '0' digits
// sized to value's UTF-8 byte length, not its rune count. The digit is
// chosen deliberately over a NUL placeholder: NUL always re-encodes as
// a 2-byte overlong MUTF-8 sequence, so filling with NUL runes would
// double the wire length of any record containing one, while ASCII '0'
// round-trips through the codec's ASCII fast path as exactly one byte
// each — the only placeholder that holds the record's byte length
// fixed for multi-byte original text too.
func ZeroPreservingString(value string) string {
	return strings.Repeat("0", len(value))
}

// NewZero builds the "Zero" policy: every primitive becomes its zero
// value, every array element becomes its type's zero, and every string
// is replaced by a byte-length-preserving run of ASCII '0' digits (see
// ZeroPreservingString).
func NewZero() *Transformer {
	str := func(value string) *string {
		z := ZeroPreservingString(value)
		return &z
	}
	return &Transformer{
		UTF8String: str,

		Boolean: func(bool) bool { return false },
		Byte:    func(int8) int8 { return 0 },
		Short:   func(int16) int16 { return 0 },
		Char:    func(uint16) uint16 { return 0 },
		Int:     func(int32) int32 { return 0 },
		Long:    func(int64) int64 { return 0 },
		Float:   func(float32) float32 { return 0 },
		Double:  func(float64) float64 { return 0 },
	}
}

// NewZeroStrings builds the "Zero-Strings-Length-Preserving" policy:
// primitives pass through unchanged, strings are replaced by a
// byte-length-preserving placeholder.
func NewZeroStrings() *Transformer {
	str := func(value string) *string {
		if value == "" {
			return nil
		}
		z := ZeroPreservingString(value)
		return &z
	}
	return &Transformer{UTF8String: str}
}

// NewDropStrings builds the "Drop-Strings" policy: primitives pass
// through unchanged, every string becomes empty. This shrinks UTF8
// records and therefore shifts byte offsets downstream of them, unlike
// the two length-preserving policies above.
func NewDropStrings() *Transformer {
	str := func(string) *string {
		empty := ""
		return &empty
	}
	return &Transformer{UTF8String: str}
}

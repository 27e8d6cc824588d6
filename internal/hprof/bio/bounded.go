package bio

import "io"

// Bounded wraps an io.Reader and enforces a declared byte length: reads
// past the limit return io.EOF instead of touching the underlying stream,
// so a heap-dump segment can be walked structurally without a length
// prefix on each sub-record while still catching a wire error that runs
// past the segment boundary.
type Bounded struct {
	src       io.Reader
	remaining int64
}

// NewBounded wraps src, allowing exactly limit further bytes to be read
// through it.
func NewBounded(src io.Reader, limit int64) *Bounded {
	return &Bounded{src: src, remaining: limit}
}

// Remaining reports the outstanding-byte counter: how many bytes of the
// limit have not yet been pulled from the underlying stream. A buffering
// reader layered on top can pull the whole limit in one call, so this can
// reach zero before that reader's callers have consumed those bytes; the
// sub-record walkers therefore stop on the layered Reader's Consumed()
// count instead.
func (b *Bounded) Remaining() int64 { return b.remaining }

func (b *Bounded) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.src.Read(p)
	b.remaining -= int64(n)
	return n, err
}

package hprof

import (
	"fmt"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
)

// checkRecordConsumed asserts that a top-level record's handler
// consumed exactly tag(1) + time(4) + length(4) + length bytes from r
// since start. It is skipped for HEAP_DUMP/HEAP_DUMP_SEGMENT, whose own
// consumed-vs-declared-length check already gives this guarantee for
// their body.
func checkRecordConsumed(r *bio.Reader, start int64, length uint32) error {
	want := int64(9) + int64(length)
	got := r.Consumed() - start
	if got != want {
		return formatErrorf("record framing mismatch: handler consumed %d bytes, header declared %d", got, want)
	}
	return nil
}

// FormatError reports a wire-framing violation: an unsupported id size,
// an unknown record or sub-record tag, a record length inconsistent
// with its declared shape, or a heap-dump segment whose sub-records
// didn't consume exactly its declared length. These are always fatal —
// pass 2 aborts with no partial-commit guarantee on the output.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "hprof format error: " + e.Msg }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// TypeError reports an unsupported primitive-type code encountered in a
// class dump, static field, constant-pool entry, or primitive-array
// dump. Fatal, like FormatError.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "hprof type error: " + e.Msg }

func typeErrorf(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// EncodingError wraps a recoverable MUTF-8 decode failure on a UTF8
// record body. Pass 2's UTF8 handler recovers from the decode failure by
// emitting the record's original bytes verbatim instead of aborting the
// run, and builds this value only to hand it to Options.OnDecodeError.
type EncodingError struct {
	Cause error
}

func (e *EncodingError) Error() string { return "modified UTF-8 decode failed: " + e.Cause.Error() }
func (e *EncodingError) Unwrap() error { return e.Cause }

// Package bio provides big-endian typed reads/writes over the octet
// streams that make up an HPROF file, plus the bounded sub-reader used to
// walk length-framed heap-dump segments.
package bio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

// Reader wraps an io.Reader with HPROF's big-endian, width-polymorphic
// primitives. Identifier width is fixed once via SetIDSize and applies to
// every subsequent ReadID call.
type Reader struct {
	r        *bufio.Reader
	idSize   uint32
	consumed int64
}

// NewReader wraps src for HPROF decoding. Identifier size defaults to 4
// until SetIDSize is called (normally right after the header is parsed).
func NewReader(src io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(src), idSize: 4}
}

// SetIDSize fixes the width used by ReadID. Only 4 and 8 are legal; other
// values are only rejected lazily, at the next ReadID call, matching the
// Java reference which never validates eagerly either.
func (r *Reader) SetIDSize(idSize uint32) { r.idSize = idSize }

// IDSize returns the currently configured identifier width.
func (r *Reader) IDSize() uint32 { return r.idSize }

// Consumed reports the total byte count read (or skipped) through this
// Reader since it was created. The top-level record loops use this to
// assert that a record's declared length matches what its own handler
// actually consumed, independent of the segment-remaining check already
// performed for heap-dump sub-records.
func (r *Reader) Consumed() int64 { return r.consumed }

// Underlying exposes the raw buffered stream so a caller can layer a
// Bounded sub-reader on top of it to walk a length-framed segment
// without double-buffering.
func (r *Reader) Underlying() io.Reader { return r.r }

// ReadTag reads the one-byte tag that opens a top-level record. Unlike
// ReadU1, running out of input here is the ordinary way a well-formed
// stream ends, so io.EOF is returned unwrapped for the caller's loop
// condition.
func (r *Reader) ReadTag() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.consumed++
	return b, nil
}

func (r *Reader) ReadU1() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, wrapEOF(err)
	}
	r.consumed++
	return b, nil
}

func (r *Reader) ReadU2() (uint16, error) {
	buf, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

func (r *Reader) ReadU4() (uint32, error) {
	buf, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func (r *Reader) ReadU8() (uint64, error) {
	buf, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// ReadID reads an identifier at the currently configured width.
func (r *Reader) ReadID() (model.ID, error) {
	switch r.idSize {
	case 4:
		v, err := r.ReadU4()
		return model.ID(v), err
	case 8:
		v, err := r.ReadU8()
		return model.ID(v), err
	default:
		return 0, fmt.Errorf("unsupported id size: %d", r.idSize)
	}
}

// ReadN reads exactly n bytes, failing with io.ErrUnexpectedEOF if the
// stream ends early.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, wrapEOF(err)
	}
	r.consumed += int64(n)
	return buf, nil
}

// ReadNullTerminated reads bytes up to and including the next 0x00,
// returning all of them, the 0x00 included. Used for the HPROF magic
// string.
func (r *Reader) ReadNullTerminated() ([]byte, error) {
	raw, err := r.r.ReadBytes(0x00)
	if err != nil {
		return nil, wrapEOF(err)
	}
	r.consumed += int64(len(raw))
	return raw, nil
}

// Skip advances the stream by n bytes without materializing them. It
// tries the underlying reader's Discard first and falls back to
// single-byte reads if that's unavailable or refuses to skip the full
// amount — the fallback is what makes Skip work uniformly over any
// io.Reader, including a Bounded one.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	discarded, err := r.r.Discard(n)
	if err == nil && discarded == n {
		r.consumed += int64(n)
		return nil
	}
	remaining := n - discarded
	for remaining > 0 {
		if _, err := r.r.ReadByte(); err != nil {
			return wrapEOF(err)
		}
		remaining--
	}
	r.consumed += int64(n)
	return nil
}

func wrapEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

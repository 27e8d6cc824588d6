package bio

import (
	"bytes"
	"io"
	"testing"

	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

func TestReaderWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetIDSize(8)
	if err := w.WriteU1(0xAB); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU2(0x1234); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU4(0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU8(0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteID(model.ID(0x1122334455667788)); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	r.SetIDSize(8)
	if v, err := r.ReadU1(); err != nil || v != 0xAB {
		t.Fatalf("ReadU1: %v, %v", v, err)
	}
	if v, err := r.ReadU2(); err != nil || v != 0x1234 {
		t.Fatalf("ReadU2: %v, %v", v, err)
	}
	if v, err := r.ReadU4(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadU4: %v, %v", v, err)
	}
	if v, err := r.ReadU8(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadU8: %v, %v", v, err)
	}
	if v, err := r.ReadID(); err != nil || v != model.ID(0x1122334455667788) {
		t.Fatalf("ReadID: %v, %v", v, err)
	}
}

func TestReadIDWidthFour(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetIDSize(4)
	if err := w.WriteID(model.ID(0xCAFEBABE)); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	r := NewReader(&buf)
	r.SetIDSize(4)
	v, err := r.ReadID()
	if err != nil || v != model.ID(0xCAFEBABE) {
		t.Fatalf("got %v, %v", v, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected exactly 4 bytes consumed, %d left", buf.Len())
	}
}

func TestReadTagReturnsUnwrappedEOFAtStreamEnd(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadTag()
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestReadU1ReturnsUnexpectedEOFAtStreamEnd(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadU1()
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadNTruncatedReturnsUnexpectedEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadN(4)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadNullTerminated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("JAVA PROFILE 1.0.2\x00rest")))
	got, err := r.ReadNullTerminated()
	if err != nil {
		t.Fatal(err)
	}
	want := "JAVA PROFILE 1.0.2\x00"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSkip(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	if err := r.Skip(3); err != nil {
		t.Fatal(err)
	}
	v, err := r.ReadU1()
	if err != nil || v != 4 {
		t.Fatalf("got %v, %v, want 4", v, err)
	}
}

func TestSkipPastEndFails(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	if err := r.Skip(5); err == nil {
		t.Fatal("expected error skipping past end of stream")
	}
}

func TestConsumedTracksAllReadKinds(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	if r.Consumed() != 0 {
		t.Fatalf("fresh reader Consumed() = %d, want 0", r.Consumed())
	}
	if _, err := r.ReadTag(); err != nil { // 1 byte
		t.Fatal(err)
	}
	if _, err := r.ReadU1(); err != nil { // 1 byte
		t.Fatal(err)
	}
	if _, err := r.ReadU2(); err != nil { // 2 bytes
		t.Fatal(err)
	}
	if err := r.Skip(3); err != nil { // 3 bytes
		t.Fatal(err)
	}
	if _, err := r.ReadU4(); err != nil { // 4 bytes
		t.Fatal(err)
	}
	if got := r.Consumed(); got != 11 {
		t.Fatalf("Consumed() = %d, want 11", got)
	}
}

func TestBoundedStopsAtLimit(t *testing.T) {
	src := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	b := NewBounded(src, 3)

	buf := make([]byte, 10)
	n, err := b.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got n=%d, want 3", n)
	}
	if b.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", b.Remaining())
	}

	n, err = b.Read(buf)
	if err != io.EOF || n != 0 {
		t.Fatalf("got n=%d err=%v, want 0, io.EOF", n, err)
	}
}

func TestBoundedLayeredOnReader(t *testing.T) {
	// Mirrors how a heap-dump segment is walked: a Bounded sub-reader
	// wraps the outer Reader's Underlying() stream, then a fresh Reader
	// wraps that so typed reads work inside the bound.
	outer := NewReader(bytes.NewReader([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}))
	bounded := NewBounded(outer.Underlying(), 2)
	inner := NewReader(bounded)

	v1, err := inner.ReadU1()
	if err != nil || v1 != 0xAA {
		t.Fatalf("got %v, %v", v1, err)
	}
	v2, err := inner.ReadU1()
	if err != nil || v2 != 0xBB {
		t.Fatalf("got %v, %v", v2, err)
	}
	if bounded.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", bounded.Remaining())
	}

	// Reading a 3rd byte through Bounded fails even though the outer
	// stream still has bytes left.
	if _, err := inner.ReadU1(); err == nil {
		t.Fatal("expected error reading past the segment bound")
	}

	// The outer reader can resume right where Bounded left off.
	v3, err := outer.ReadU1()
	if err != nil || v3 != 0xCC {
		t.Fatalf("got %v, %v, want 0xCC", v3, err)
	}
}

// TestBoundedRemainingGoesToZeroBeforeConsumersCatchUp documents why a
// sub-record walker layered over Bounded through a bio.Reader must not
// use Bounded.Remaining() as its loop condition. bio.Reader wraps its
// source in its own internal bufio buffer, so its first read can pull
// the *entire* bound out of Bounded in one fill call whenever the
// underlying stream already has that much data ready — leaving
// Bounded.Remaining() at zero while most of the bound sits unread in
// the wrapping Reader's own buffer, still valid to read.
func TestBoundedRemainingGoesToZeroBeforeConsumersCatchUp(t *testing.T) {
	outer := NewReader(bytes.NewReader([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}))
	bounded := NewBounded(outer.Underlying(), 4)
	inner := NewReader(bounded)

	v1, err := inner.ReadU1()
	if err != nil || v1 != 0xAA {
		t.Fatalf("got %v, %v", v1, err)
	}
	if bounded.Remaining() != 0 {
		t.Fatalf("Remaining() = %d after a single byte read, want 0 (the whole bound was pulled into inner's buffer)", bounded.Remaining())
	}
	if inner.Consumed() != 1 {
		t.Fatalf("Consumed() = %d, want 1", inner.Consumed())
	}

	// Despite Remaining() already reporting 0, three more in-bound bytes
	// are still validly readable through inner.
	for i, want := range []byte{0xBB, 0xCC, 0xDD} {
		v, err := inner.ReadU1()
		if err != nil || v != want {
			t.Fatalf("byte %d: got %v, %v, want %#x", i, v, err, want)
		}
	}
	if inner.Consumed() != 4 {
		t.Fatalf("Consumed() = %d, want 4", inner.Consumed())
	}
}

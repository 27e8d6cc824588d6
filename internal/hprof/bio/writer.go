package bio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

// Writer wraps an io.Writer with HPROF's big-endian, width-polymorphic
// primitives, mirroring Reader.
type Writer struct {
	w      *bufio.Writer
	idSize uint32
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(dst), idSize: 4}
}

func (w *Writer) SetIDSize(idSize uint32) { w.idSize = idSize }

func (w *Writer) WriteU1(v byte) error { return w.w.WriteByte(v) }

func (w *Writer) WriteU2(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.w.Write(buf[:])
	return err
}

func (w *Writer) WriteU4(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.w.Write(buf[:])
	return err
}

func (w *Writer) WriteU8(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.w.Write(buf[:])
	return err
}

// WriteID writes an identifier at the currently configured width.
func (w *Writer) WriteID(v model.ID) error {
	switch w.idSize {
	case 4:
		return w.WriteU4(uint32(v))
	case 8:
		return w.WriteU8(uint64(v))
	default:
		return fmt.Errorf("unsupported id size: %d", w.idSize)
	}
}

func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

// Flush must be called once at the end of a successful filter run; the
// pipeline never flushes mid-stream.
func (w *Writer) Flush() error { return w.w.Flush() }

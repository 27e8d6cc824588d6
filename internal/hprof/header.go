package hprof

import (
	"fmt"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

// readHeader reads the null-terminated magic, id size, and timestamp
// that open every HPROF stream, and fixes r's identifier width for
// everything that follows.
func readHeader(r *bio.Reader) (model.Header, error) {
	magic, err := r.ReadNullTerminated()
	if err != nil {
		return model.Header{}, fmt.Errorf("reading header magic: %w", err)
	}
	idSize, err := r.ReadU4()
	if err != nil {
		return model.Header{}, fmt.Errorf("reading id size: %w", err)
	}
	if idSize != 4 && idSize != 8 {
		return model.Header{}, formatErrorf("unsupported id size: %d", idSize)
	}
	ts, err := r.ReadU8()
	if err != nil {
		return model.Header{}, fmt.Errorf("reading timestamp: %w", err)
	}
	r.SetIDSize(idSize)
	return model.Header{Magic: magic, IdentifierSize: idSize, TimestampMs: ts}, nil
}

// writeHeader mirrors readHeader on the output side and fixes w's
// identifier width to match.
func writeHeader(w *bio.Writer, h model.Header) error {
	if err := w.WriteBytes(h.Magic); err != nil {
		return fmt.Errorf("writing header magic: %w", err)
	}
	if err := w.WriteU4(h.IdentifierSize); err != nil {
		return fmt.Errorf("writing id size: %w", err)
	}
	if err := w.WriteU8(h.TimestampMs); err != nil {
		return fmt.Errorf("writing timestamp: %w", err)
	}
	w.SetIDSize(h.IdentifierSize)
	return nil
}

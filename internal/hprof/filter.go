// Package hprof implements the two-pass HPROF rewriter: pass one scans
// an input stream to build class-layout and symbol-role metadata, pass
// two re-reads the same input and writes a transformed copy driven by a
// pluggable transform.Transformer.
package hprof

import (
	"fmt"
	"io"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/classinfo"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/namekind"
	"github.com/parttimenerd/hprof-redact/internal/hprof/transform"
)

// Options configures a Filter run beyond the transformer itself.
type Options struct {
	// OnChange, if set, is invoked once per UTF8 record whose string
	// was actually rewritten — the verbose side channel.
	OnChange func(id model.ID, kind namekind.Kind, before, after string)

	// OnBytes, if set, is invoked periodically during each pass with
	// the pass number (1 or 2) and cumulative bytes consumed from the
	// input stream. It exists so a caller can drive a progress bar
	// without this package depending on any UI library.
	OnBytes func(pass int, bytesRead int64)

	// OnDecodeError, if set, is invoked once per UTF8 record whose body
	// failed modified UTF-8 decoding. The record is never dropped or
	// aborted on this: its original bytes are always written back
	// verbatim, so this callback exists purely as a diagnostic side
	// channel for callers who want to know it happened.
	OnDecodeError func(id model.ID, err *EncodingError)
}

// Opener produces a fresh readable stream over the same logical input
// each time it's called. The driver calls it twice — once per pass —
// so it must not be backed by a one-shot, non-seekable pipe; a caller
// holding only stdin should reject the request rather than pass a
// pipe-backed Opener here.
type Opener func() (io.ReadCloser, error)

// Filter runs the full two-pass rewrite: it calls open once to scan
// metadata, then calls it again to perform the transforming copy into
// out. Nothing is written to out during pass one. Pass two writes through
// a buffer that passes data on to out whenever it fills, and is flushed
// once the last record has been rewritten, so an error partway through
// pass two may still have written a prefix to out, which callers must
// treat as non-atomic.
func Filter(open Opener, out io.Writer, transformer *transform.Transformer, opts Options) (*Stats, error) {
	classes := classinfo.NewStore()
	names := namekind.NewClassifier()

	if err := runScanPass(open, classes, names, opts); err != nil {
		return nil, fmt.Errorf("pass 1 (metadata scan): %w", err)
	}

	stats := newStats()
	if err := runRewritePass(open, out, transformer, classes, names, opts, stats); err != nil {
		return nil, fmt.Errorf("pass 2 (rewrite): %w", err)
	}
	return stats, nil
}

// countingReader wraps a reader with a running byte count, reported to
// onBytes after every Read call.
type countingReader struct {
	src     io.Reader
	pass    int
	total   int64
	onBytes func(pass int, bytesRead int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.total += int64(n)
	if c.onBytes != nil {
		c.onBytes(c.pass, c.total)
	}
	return n, err
}

func runScanPass(open Opener, classes *classinfo.Store, names *namekind.Classifier, opts Options) error {
	in, err := open()
	if err != nil {
		return fmt.Errorf("opening input for scan pass: %w", err)
	}
	defer in.Close()

	var src io.Reader = in
	if opts.OnBytes != nil {
		src = &countingReader{src: in, pass: 1, onBytes: opts.OnBytes}
	}
	r := bio.NewReader(src)
	header, err := readHeader(r)
	if err != nil {
		return err
	}
	return scanForMetadata(r, header.IdentifierSize, &scanState{classes: classes, names: names})
}

func runRewritePass(open Opener, out io.Writer, transformer *transform.Transformer, classes *classinfo.Store, names *namekind.Classifier, opts Options, stats *Stats) error {
	in, err := open()
	if err != nil {
		return fmt.Errorf("opening input for rewrite pass: %w", err)
	}
	defer in.Close()

	var src io.Reader = in
	if opts.OnBytes != nil {
		src = &countingReader{src: in, pass: 2, onBytes: opts.OnBytes}
	}
	r := bio.NewReader(src)
	header, err := readHeader(r)
	if err != nil {
		return err
	}

	w := bio.NewWriter(out)
	if err := writeHeader(w, header); err != nil {
		return err
	}

	st := &rewriteState{
		classes:       classes,
		names:         names,
		transformer:   transformer,
		onChange:      opts.OnChange,
		onDecodeError: opts.OnDecodeError,
		stats:         stats,
	}
	if err := writeRecords(r, w, header.IdentifierSize, st); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

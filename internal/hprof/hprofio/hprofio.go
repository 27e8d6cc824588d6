// Package hprofio opens HPROF input/output streams, transparently
// sniffing gzip on the input side and wrapping gzip on the output side
// by file extension. It is external collaborator code the core rewriter
// never imports; the driver wires it in at the boundary.
package hprofio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

var gzipMagic = [2]byte{0x1f, 0x8b}

// OpenInput opens path and wraps it for gzip if its first two bytes are
// the gzip magic, regardless of the file's name. The returned
// io.ReadCloser must be closed by the caller; closing it also closes the
// underlying file.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %q: %w", path, err)
	}
	rc, err := WrapInput(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{rc, f}, nil
}

// WrapInput peeks the first two bytes of src to decide whether to layer
// a gzip.Reader on top. src is buffered internally so the peek doesn't
// consume bytes the caller still needs.
func WrapInput(src io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	peek, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sniffing input: %w", err)
	}
	if len(peek) == 2 && peek[0] == gzipMagic[0] && peek[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip input: %w", err)
		}
		return gz, nil
	}
	return io.NopCloser(br), nil
}

// OpenOutput opens (creating or truncating) path for writing, wrapping
// it with gzip when the name ends in ".gz" (case-insensitive). Closing
// the returned io.WriteCloser flushes the gzip trailer, if any, and then
// the underlying file.
func OpenOutput(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output %q: %w", path, err)
	}
	if IsGzipPath(path) {
		return &gzipFile{gz: gzip.NewWriter(f), f: f}, nil
	}
	return f, nil
}

// IsGzipPath reports whether path's extension indicates gzip framing.
func IsGzipPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

type gzipFile struct {
	gz *gzip.Writer
	f  *os.File
}

func (g *gzipFile) Write(p []byte) (int, error) { return g.gz.Write(p) }

func (g *gzipFile) Close() error {
	if err := g.gz.Close(); err != nil {
		g.f.Close()
		return fmt.Errorf("closing gzip output: %w", err)
	}
	return g.f.Close()
}

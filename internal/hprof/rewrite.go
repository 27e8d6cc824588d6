package hprof

import (
	"fmt"
	"io"
	"sort"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/classinfo"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/mutf8"
	"github.com/parttimenerd/hprof-redact/internal/hprof/namekind"
	"github.com/parttimenerd/hprof-redact/internal/hprof/transform"
)

// rewriteState carries pass two's inputs: the metadata pass one built,
// the active transformer, and an optional verbose sink.
type rewriteState struct {
	classes       *classinfo.Store
	names         *namekind.Classifier
	transformer   *transform.Transformer
	onChange      func(id model.ID, kind namekind.Kind, before, after string)
	onDecodeError func(id model.ID, err *EncodingError)
	stats         *Stats
}

// Stats counts, per top-level record tag, how many top-level records
// were rewritten (touched by the transformer) versus copied verbatim.
// It's purely informational: the summary the CLI's --verbose flag
// prints at the end of a run.
type Stats struct {
	Rewritten map[model.RecordTag]int
	Copied    map[model.RecordTag]int
}

func newStats() *Stats {
	return &Stats{Rewritten: make(map[model.RecordTag]int), Copied: make(map[model.RecordTag]int)}
}

func (s *Stats) rewrote(tag model.RecordTag) { s.Rewritten[tag]++ }
func (s *Stats) copied(tag model.RecordTag)  { s.Copied[tag]++ }

// RewrittenCount and CopiedCount let callers (the CLI's progress
// summary) read the counters without reaching into the maps directly.
func (s *Stats) RewrittenCount(tag model.RecordTag) int { return s.Rewritten[tag] }
func (s *Stats) CopiedCount(tag model.RecordTag) int    { return s.Copied[tag] }

// Tags returns every record tag observed, sorted for stable output.
func (s *Stats) Tags() []model.RecordTag {
	seen := make(map[model.RecordTag]struct{})
	for tag := range s.Rewritten {
		seen[tag] = struct{}{}
	}
	for tag := range s.Copied {
		seen[tag] = struct{}{}
	}
	tags := make([]model.RecordTag, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// writeRecords is pass two's top-level loop: it dispatches every record
// exactly like scanForMetadata's, but produces output and consults the
// transformer.
func writeRecords(r *bio.Reader, w *bio.Writer, idSize uint32, st *rewriteState) error {
	for {
		start := r.Consumed()
		tagByte, err := r.ReadTag()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		time, err := r.ReadU4()
		if err != nil {
			return err
		}
		length, err := r.ReadU4()
		if err != nil {
			return err
		}
		tag := model.RecordTag(tagByte)

		switch tag {
		case model.TagUTF8:
			if err := handleUTF8Record(r, w, time, length, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
		case model.TagHeapDump, model.TagHeapDumpSegment:
			if err := writeRecordHeader(w, tagByte, time, length); err != nil {
				return err
			}
			if err := handleHeapDumpSegment(r, w, uint64(length), idSize, st); err != nil {
				return err
			}
			st.stats.rewrote(tag)
		case model.TagLoadClass:
			if err := handleLoadClass(r, w, time, length, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
			st.stats.copied(tag)
		case model.TagStartThread:
			if err := handleStartThread(r, w, time, length, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
			st.stats.copied(tag)
		case model.TagFrame:
			if err := handleFrame(r, w, time, length, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
			st.stats.copied(tag)
		default:
			if err := writeRecordHeader(w, tagByte, time, length); err != nil {
				return err
			}
			if err := copyBytes(r, w, int(length)); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
			st.stats.copied(tag)
		}
	}
}

func writeRecordHeader(w *bio.Writer, tag byte, time, length uint32) error {
	if err := w.WriteU1(tag); err != nil {
		return err
	}
	if err := w.WriteU4(time); err != nil {
		return err
	}
	return w.WriteU4(length)
}

func copyBytes(r *bio.Reader, w *bio.Writer, length int) error {
	if length == 0 {
		return nil
	}
	buf, err := r.ReadN(length)
	if err != nil {
		return fmt.Errorf("copying record body: %w", err)
	}
	return w.WriteBytes(buf)
}

// handleUTF8Record decodes the symbol, transforms it by its classified
// role, and either re-encodes it (recomputing the record length) or
// preserves the original bytes verbatim when the transformer signals no
// change or decoding fails. A MUTF-8 decode failure is locally
// recovered here, never propagated: it is the one place spec.md
// requires the rewriter to keep going rather than abort.
func handleUTF8Record(r *bio.Reader, w *bio.Writer, time, length, idSize uint32, st *rewriteState) error {
	id, err := r.ReadID()
	if err != nil {
		return err
	}
	if length < idSize {
		return formatErrorf("UTF8 record length %d smaller than id size %d", length, idSize)
	}
	bodyLen := int(length - idSize)
	data, err := r.ReadN(bodyLen)
	if err != nil {
		return err
	}

	writeVerbatim := func() error {
		if err := writeRecordHeader(w, byte(model.TagUTF8), time, length); err != nil {
			return err
		}
		if err := w.WriteID(id); err != nil {
			return err
		}
		return w.WriteBytes(data)
	}

	original, decodeErr := mutf8.Decode(data)
	if decodeErr != nil {
		st.stats.copied(model.TagUTF8)
		if st.onDecodeError != nil {
			st.onDecodeError(id, &EncodingError{Cause: decodeErr})
		}
		return writeVerbatim()
	}

	kind := st.names.Lookup(id)
	transformed, changed := st.transformer.TransformString(kind, original)
	if !changed {
		st.stats.copied(model.TagUTF8)
		return writeVerbatim()
	}

	outBytes := mutf8.Encode(transformed)
	newLength := uint64(idSize) + uint64(len(outBytes))
	if newLength > 0xFFFFFFFF {
		return formatErrorf("transformed UTF8 length too large: %d", newLength)
	}

	if err := writeRecordHeader(w, byte(model.TagUTF8), time, uint32(newLength)); err != nil {
		return err
	}
	if err := w.WriteID(id); err != nil {
		return err
	}
	if err := w.WriteBytes(outBytes); err != nil {
		return err
	}
	st.stats.rewrote(model.TagUTF8)
	if st.onChange != nil {
		st.onChange(id, kind, original, transformed)
	}
	return nil
}

func handleLoadClass(r *bio.Reader, w *bio.Writer, time, length, idSize uint32, st *rewriteState) error {
	if length != 4+idSize+4+idSize {
		return formatErrorf("unexpected LOAD_CLASS length: %d", length)
	}
	classSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	classID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	nameID, err := r.ReadID()
	if err != nil {
		return err
	}

	if err := writeRecordHeader(w, byte(model.TagLoadClass), time, length); err != nil {
		return err
	}
	if err := w.WriteU4(classSerial); err != nil {
		return err
	}
	if err := w.WriteID(classID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	return w.WriteID(nameID)
}

func handleStartThread(r *bio.Reader, w *bio.Writer, time, length, idSize uint32, st *rewriteState) error {
	if length != 4+idSize+4+idSize+idSize+idSize {
		return formatErrorf("unexpected START_THREAD length: %d", length)
	}
	threadSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	threadObjectID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	threadName, err := r.ReadID()
	if err != nil {
		return err
	}
	groupName, err := r.ReadID()
	if err != nil {
		return err
	}
	parentName, err := r.ReadID()
	if err != nil {
		return err
	}

	if err := writeRecordHeader(w, byte(model.TagStartThread), time, length); err != nil {
		return err
	}
	if err := w.WriteU4(threadSerial); err != nil {
		return err
	}
	if err := w.WriteID(threadObjectID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	if err := w.WriteID(threadName); err != nil {
		return err
	}
	if err := w.WriteID(groupName); err != nil {
		return err
	}
	return w.WriteID(parentName)
}

func handleFrame(r *bio.Reader, w *bio.Writer, time, length, idSize uint32, st *rewriteState) error {
	if length != idSize+idSize+idSize+idSize+4+4 {
		return formatErrorf("unexpected FRAME length: %d", length)
	}
	frameID, err := r.ReadID()
	if err != nil {
		return err
	}
	methodName, err := r.ReadID()
	if err != nil {
		return err
	}
	methodSig, err := r.ReadID()
	if err != nil {
		return err
	}
	sourceFile, err := r.ReadID()
	if err != nil {
		return err
	}
	classSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	lineNumber, err := r.ReadU4()
	if err != nil {
		return err
	}

	if err := writeRecordHeader(w, byte(model.TagFrame), time, length); err != nil {
		return err
	}
	if err := w.WriteID(frameID); err != nil {
		return err
	}
	if err := w.WriteID(methodName); err != nil {
		return err
	}
	if err := w.WriteID(methodSig); err != nil {
		return err
	}
	if err := w.WriteID(sourceFile); err != nil {
		return err
	}
	if err := w.WriteU4(classSerial); err != nil {
		return err
	}
	return w.WriteU4(lineNumber)
}

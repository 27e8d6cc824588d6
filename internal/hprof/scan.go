package hprof

import (
	"fmt"
	"io"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/classinfo"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/namekind"
)

// scanState is what pass one populates for pass two to consult:
// per-class field layout and the first-observed role of every symbol
// id. Pass one never looks at the transformer.
type scanState struct {
	classes *classinfo.Store
	names   *namekind.Classifier
}

// scanForMetadata walks every top-level record once, without producing
// output, feeding the class-metadata store and name-kind classifier.
// Pass two depends on this having run to completion first, since a
// symbol's role or a class's layout may be defined by a record that
// appears after the record referencing it.
func scanForMetadata(r *bio.Reader, idSize uint32, st *scanState) error {
	for {
		start := r.Consumed()
		tag, err := r.ReadTag()
		if err == io.EOF {
			return nil // clean EOF: end of stream
		}
		if err != nil {
			return err
		}
		if _, err := r.ReadU4(); err != nil { // time
			return err
		}
		length, err := r.ReadU4()
		if err != nil {
			return err
		}

		switch model.RecordTag(tag) {
		case model.TagLoadClass:
			if err := scanLoadClass(r, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
		case model.TagStartThread:
			if err := scanStartThread(r, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
		case model.TagFrame:
			if err := scanFrame(r, idSize, st); err != nil {
				return err
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
		case model.TagHeapDump, model.TagHeapDumpSegment:
			// scanHeapDumpSegment's own consumed-vs-declared-length check
			// (Testable Property 5) already asserts its body was consumed
			// to the byte; r.Consumed() can't observe it directly since
			// the segment is walked through a Bounded reader layered
			// separately over r's underlying stream.
			if err := scanHeapDumpSegment(r, uint64(length), idSize, st); err != nil {
				return err
			}
		default:
			if err := r.Skip(int(length)); err != nil {
				return fmt.Errorf("skipping record body: %w", err)
			}
			if err := checkRecordConsumed(r, start, length); err != nil {
				return err
			}
		}
	}
}

func scanLoadClass(r *bio.Reader, idSize uint32, st *scanState) error {
	if err := r.Skip(4); err != nil {
		return err
	}
	if err := r.Skip(int(idSize)); err != nil {
		return err
	}
	if err := r.Skip(4); err != nil {
		return err
	}
	nameID, err := r.ReadID()
	if err != nil {
		return err
	}
	st.names.Observe(nameID, namekind.ClassName)
	return nil
}

func scanStartThread(r *bio.Reader, idSize uint32, st *scanState) error {
	if err := r.Skip(4); err != nil {
		return err
	}
	if err := r.Skip(int(idSize)); err != nil {
		return err
	}
	if err := r.Skip(4); err != nil {
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
	st.names.Observe(threadName, namekind.ThreadName)
	st.names.Observe(groupName, namekind.ThreadGroupName)
	st.names.Observe(parentName, namekind.ThreadGroupParentName)
	return nil
}

func scanFrame(r *bio.Reader, idSize uint32, st *scanState) error {
	if err := r.Skip(int(idSize)); err != nil { // frameId
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
	if err := r.Skip(8); err != nil { // class serial, line number
		return err
	}
	st.names.Observe(methodName, namekind.MethodName)
	st.names.Observe(methodSig, namekind.MethodSignature)
	st.names.Observe(sourceFile, namekind.SourceFileName)
	return nil
}

func scanHeapDumpSegment(r *bio.Reader, length uint64, idSize uint32, st *scanState) error {
	bounded := bio.NewBounded(r.Underlying(), int64(length))
	segIn := bio.NewReader(bounded)
	segIn.SetIDSize(idSize)

	// segIn's own internal buffering can pull the entire bounded region
	// out of Bounded in a single fill, so bounded.Remaining() can reach
	// zero long before segIn has actually handed that many bytes back to
	// its callers. segIn.Consumed() tracks exactly that, so it's the
	// only reliable stopping condition here.
	for segIn.Consumed() < int64(length) {
		subTag, err := segIn.ReadU1()
		if err != nil {
			return err
		}
		switch model.SubRecordTag(subTag) {
		case model.SubRootUnknown, model.SubRootStickyClass, model.SubRootMonitorUsed:
			err = segIn.Skip(int(idSize))
		case model.SubRootJNIGlobal:
			err = segIn.Skip(int(idSize) * 2)
		case model.SubRootJNILocal, model.SubRootJavaFrame, model.SubRootThreadObj:
			err = segIn.Skip(int(idSize) + 8)
		case model.SubRootNativeStack, model.SubRootThreadBlock:
			err = segIn.Skip(int(idSize) + 4)
		case model.SubClassDump:
			err = scanClassDump(segIn, idSize, st)
		case model.SubInstanceDump:
			err = skipInstanceDump(segIn, idSize)
		case model.SubObjArrayDump:
			err = skipObjectArrayDump(segIn, idSize)
		case model.SubPrimArrayDump:
			err = skipPrimitiveArrayDump(segIn, idSize)
		default:
			err = formatErrorf("unsupported heap dump sub-record tag: 0x%02x", subTag)
		}
		if err != nil {
			return err
		}
	}
	if segIn.Consumed() != int64(length) {
		return formatErrorf("heap dump segment length mismatch: consumed %d of %d declared bytes", segIn.Consumed(), length)
	}
	return nil
}

func scanClassDump(r *bio.Reader, idSize uint32, st *scanState) error {
	classID, err := r.ReadID()
	if err != nil {
		return err
	}
	if err := r.Skip(4); err != nil { // stack trace serial
		return err
	}
	superClassID, err := r.ReadID()
	if err != nil {
		return err
	}
	if err := r.Skip(int(idSize) * 5); err != nil { // loader, signers, protDomain, reserved1, reserved2
		return err
	}
	if err := r.Skip(4); err != nil { // instance size
		return err
	}

	cpSize, err := r.ReadU2()
	if err != nil {
		return err
	}
	for i := 0; i < int(cpSize); i++ {
		if err := r.Skip(2); err != nil { // constant pool index
			return err
		}
		typeCode, err := r.ReadU1()
		if err != nil {
			return err
		}
		if err := skipValueByType(r, typeCode, idSize); err != nil {
			return err
		}
	}

	staticCount, err := r.ReadU2()
	if err != nil {
		return err
	}
	for i := 0; i < int(staticCount); i++ {
		nameID, err := r.ReadID()
		if err != nil {
			return err
		}
		typeCode, err := r.ReadU1()
		if err != nil {
			return err
		}
		if err := skipValueByType(r, typeCode, idSize); err != nil {
			return err
		}
		st.names.Observe(nameID, namekind.FieldName)
	}

	instanceCount, err := r.ReadU2()
	if err != nil {
		return err
	}
	fields := make([]classinfo.FieldDef, 0, instanceCount)
	for i := 0; i < int(instanceCount); i++ {
		nameID, err := r.ReadID()
		if err != nil {
			return err
		}
		typeCode, err := r.ReadU1()
		if err != nil {
			return err
		}
		typ, err := model.ParsePrimitiveType(typeCode)
		if err != nil {
			return typeErrorf("%s", err)
		}
		fields = append(fields, classinfo.FieldDef{NameID: nameID, Type: typ})
		st.names.Observe(nameID, namekind.FieldName)
	}

	st.classes.Put(&classinfo.ClassInfo{ClassID: classID, SuperClassID: superClassID, InstanceFields: fields})
	return nil
}

func skipInstanceDump(r *bio.Reader, idSize uint32) error {
	if err := r.Skip(int(idSize) + 4 + int(idSize)); err != nil {
		return err
	}
	dataLength, err := r.ReadU4()
	if err != nil {
		return err
	}
	return r.Skip(int(dataLength))
}

func skipObjectArrayDump(r *bio.Reader, idSize uint32) error {
	if err := r.Skip(int(idSize) + 4); err != nil {
		return err
	}
	numElements, err := r.ReadU4()
	if err != nil {
		return err
	}
	if err := r.Skip(int(idSize)); err != nil { // array class id
		return err
	}
	return r.Skip(int(numElements) * int(idSize))
}

func skipPrimitiveArrayDump(r *bio.Reader, idSize uint32) error {
	if err := r.Skip(int(idSize) + 4); err != nil {
		return err
	}
	numElements, err := r.ReadU4()
	if err != nil {
		return err
	}
	typeCode, err := r.ReadU1()
	if err != nil {
		return err
	}
	typ, err := model.ParsePrimitiveType(typeCode)
	if err != nil {
		return typeErrorf("%s", err)
	}
	elemSize, err := typ.Size(idSize)
	if err != nil {
		return typeErrorf("%s", err)
	}
	return r.Skip(int(numElements) * int(elemSize))
}

func skipValueByType(r *bio.Reader, typeCode byte, idSize uint32) error {
	typ, err := model.ParsePrimitiveType(typeCode)
	if err != nil {
		return typeErrorf("%s", err)
	}
	size, err := typ.Size(idSize)
	if err != nil {
		return typeErrorf("%s", err)
	}
	return r.Skip(int(size))
}

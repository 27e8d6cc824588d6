package hprof

import (
	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/classinfo"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

// handleHeapDumpSegment walks a HEAP_DUMP(_SEGMENT) body sub-record by
// sub-record, transforming class dumps, instance dumps, and primitive
// arrays while copying GC-root records and object-array identities
// unchanged.
func handleHeapDumpSegment(r *bio.Reader, w *bio.Writer, length uint64, idSize uint32, st *rewriteState) error {
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
		if err := w.WriteU1(subTag); err != nil {
			return err
		}

		switch model.SubRecordTag(subTag) {
		case model.SubRootUnknown, model.SubRootStickyClass, model.SubRootMonitorUsed:
			err = copyBytes(segIn, w, int(idSize))
		case model.SubRootJNIGlobal:
			err = copyBytes(segIn, w, int(idSize)*2)
		case model.SubRootJNILocal, model.SubRootJavaFrame, model.SubRootThreadObj:
			err = copyBytes(segIn, w, int(idSize)+8)
		case model.SubRootNativeStack, model.SubRootThreadBlock:
			err = copyBytes(segIn, w, int(idSize)+4)
		case model.SubClassDump:
			err = handleClassDump(segIn, w, idSize, st)
		case model.SubInstanceDump:
			err = handleInstanceDump(segIn, w, idSize, st)
		case model.SubObjArrayDump:
			err = handleObjectArrayDump(segIn, w, idSize)
		case model.SubPrimArrayDump:
			err = handlePrimitiveArrayDump(segIn, w, idSize, st)
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

func handleClassDump(r *bio.Reader, w *bio.Writer, idSize uint32, st *rewriteState) error {
	classID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	superClassID, err := r.ReadID()
	if err != nil {
		return err
	}
	classLoaderID, err := r.ReadID()
	if err != nil {
		return err
	}
	signersID, err := r.ReadID()
	if err != nil {
		return err
	}
	protectionDomainID, err := r.ReadID()
	if err != nil {
		return err
	}
	reserved1, err := r.ReadID()
	if err != nil {
		return err
	}
	reserved2, err := r.ReadID()
	if err != nil {
		return err
	}
	instanceSize, err := r.ReadU4()
	if err != nil {
		return err
	}

	if err := w.WriteID(classID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	if err := w.WriteID(superClassID); err != nil {
		return err
	}
	if err := w.WriteID(classLoaderID); err != nil {
		return err
	}
	if err := w.WriteID(signersID); err != nil {
		return err
	}
	if err := w.WriteID(protectionDomainID); err != nil {
		return err
	}
	if err := w.WriteID(reserved1); err != nil {
		return err
	}
	if err := w.WriteID(reserved2); err != nil {
		return err
	}
	if err := w.WriteU4(instanceSize); err != nil {
		return err
	}

	cpSize, err := r.ReadU2()
	if err != nil {
		return err
	}
	if err := w.WriteU2(cpSize); err != nil {
		return err
	}
	for i := 0; i < int(cpSize); i++ {
		index, err := r.ReadU2()
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
		if err := w.WriteU2(index); err != nil {
			return err
		}
		if err := w.WriteU1(byte(typ)); err != nil {
			return err
		}
		if err := transformValueByType(r, w, st.transformer, typ); err != nil {
			return err
		}
	}

	staticCount, err := r.ReadU2()
	if err != nil {
		return err
	}
	if err := w.WriteU2(staticCount); err != nil {
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
		typ, err := model.ParsePrimitiveType(typeCode)
		if err != nil {
			return typeErrorf("%s", err)
		}
		if err := w.WriteID(nameID); err != nil {
			return err
		}
		if err := w.WriteU1(byte(typ)); err != nil {
			return err
		}
		if err := transformValueByType(r, w, st.transformer, typ); err != nil {
			return err
		}
	}

	instanceCount, err := r.ReadU2()
	if err != nil {
		return err
	}
	if err := w.WriteU2(instanceCount); err != nil {
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
		if err := w.WriteID(nameID); err != nil {
			return err
		}
		if err := w.WriteU1(byte(typ)); err != nil {
			return err
		}
		fields = append(fields, classinfo.FieldDef{NameID: nameID, Type: typ})
	}

	st.classes.Put(&classinfo.ClassInfo{ClassID: classID, SuperClassID: superClassID, InstanceFields: fields})
	return nil
}

func handleInstanceDump(r *bio.Reader, w *bio.Writer, idSize uint32, st *rewriteState) error {
	objectID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	classID, err := r.ReadID()
	if err != nil {
		return err
	}
	dataLength, err := r.ReadU4()
	if err != nil {
		return err
	}

	if err := w.WriteID(objectID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	if err := w.WriteID(classID); err != nil {
		return err
	}
	if err := w.WriteU4(dataLength); err != nil {
		return err
	}

	flattened, ok := st.classes.Flatten(classID)
	if !ok {
		// Class chain unresolved: can't safely decode fields, copy verbatim.
		return copyBytes(r, w, int(dataLength))
	}

	var expected uint32
	for _, f := range flattened {
		size, err := f.Type.Size(idSize)
		if err != nil {
			return typeErrorf("%s", err)
		}
		expected += size
	}
	if expected != dataLength {
		return formatErrorf("instance dump length mismatch: expected %d but was %d", expected, dataLength)
	}

	for _, f := range flattened {
		if err := transformValueByType(r, w, st.transformer, f.Type); err != nil {
			return err
		}
	}
	return nil
}

func handleObjectArrayDump(r *bio.Reader, w *bio.Writer, idSize uint32) error {
	arrayID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
		return err
	}
	numElements, err := r.ReadU4()
	if err != nil {
		return err
	}
	arrayClassID, err := r.ReadID()
	if err != nil {
		return err
	}

	if err := w.WriteID(arrayID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	if err := w.WriteU4(numElements); err != nil {
		return err
	}
	if err := w.WriteID(arrayClassID); err != nil {
		return err
	}

	for i := uint32(0); i < numElements; i++ {
		if err := copyID(r, w); err != nil {
			return err
		}
	}
	return nil
}

func handlePrimitiveArrayDump(r *bio.Reader, w *bio.Writer, idSize uint32, st *rewriteState) error {
	arrayID, err := r.ReadID()
	if err != nil {
		return err
	}
	stackTraceSerial, err := r.ReadU4()
	if err != nil {
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

	if err := w.WriteID(arrayID); err != nil {
		return err
	}
	if err := w.WriteU4(stackTraceSerial); err != nil {
		return err
	}
	if err := w.WriteU4(numElements); err != nil {
		return err
	}
	if err := w.WriteU1(byte(typ)); err != nil {
		return err
	}

	return transformPrimitiveArray(r, w, st.transformer, typ, numElements)
}

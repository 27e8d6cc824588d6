// Package model defines the wire-level constants and value types shared by
// the HPROF reader, writer, and rewriter.
package model

import "fmt"

// RecordTag is the one-byte tag prefixing every top-level HPROF record.
type RecordTag byte

const (
	TagUTF8             RecordTag = 0x01
	TagLoadClass        RecordTag = 0x02
	TagUnloadClass      RecordTag = 0x03
	TagFrame            RecordTag = 0x04
	TagTrace            RecordTag = 0x05
	TagAllocSites       RecordTag = 0x06
	TagHeapSummary      RecordTag = 0x07
	TagStartThread      RecordTag = 0x0A
	TagEndThread        RecordTag = 0x0B
	TagHeapDump         RecordTag = 0x0C
	TagCPUSamples       RecordTag = 0x0D
	TagControlSettings  RecordTag = 0x0E
	TagHeapDumpSegment  RecordTag = 0x1C
	TagHeapDumpEnd      RecordTag = 0x2C
)

func (t RecordTag) String() string {
	switch t {
	case TagUTF8:
		return "UTF8"
	case TagLoadClass:
		return "LOAD_CLASS"
	case TagUnloadClass:
		return "UNLOAD_CLASS"
	case TagFrame:
		return "FRAME"
	case TagTrace:
		return "TRACE"
	case TagAllocSites:
		return "ALLOC_SITES"
	case TagHeapSummary:
		return "HEAP_SUMMARY"
	case TagStartThread:
		return "START_THREAD"
	case TagEndThread:
		return "END_THREAD"
	case TagHeapDump:
		return "HEAP_DUMP"
	case TagCPUSamples:
		return "CPU_SAMPLES"
	case TagControlSettings:
		return "CONTROL_SETTINGS"
	case TagHeapDumpSegment:
		return "HEAP_DUMP_SEGMENT"
	case TagHeapDumpEnd:
		return "HEAP_DUMP_END"
	default:
		return fmt.Sprintf("RecordTag(0x%02x)", byte(t))
	}
}

// SubRecordTag is the one-byte tag prefixing a sub-record inside a
// HEAP_DUMP or HEAP_DUMP_SEGMENT body.
type SubRecordTag byte

const (
	SubRootUnknown     SubRecordTag = 0xFF
	SubRootJNIGlobal   SubRecordTag = 0x01
	SubRootJNILocal    SubRecordTag = 0x02
	SubRootJavaFrame   SubRecordTag = 0x03
	SubRootNativeStack SubRecordTag = 0x04
	SubRootStickyClass SubRecordTag = 0x05
	SubRootThreadBlock SubRecordTag = 0x06
	SubRootMonitorUsed SubRecordTag = 0x07
	SubRootThreadObj   SubRecordTag = 0x08
	SubClassDump       SubRecordTag = 0x20
	SubInstanceDump    SubRecordTag = 0x21
	SubObjArrayDump    SubRecordTag = 0x22
	SubPrimArrayDump   SubRecordTag = 0x23
)

func (t SubRecordTag) String() string {
	switch t {
	case SubRootUnknown:
		return "GC_ROOT_UNKNOWN"
	case SubRootJNIGlobal:
		return "GC_ROOT_JNI_GLOBAL"
	case SubRootJNILocal:
		return "GC_ROOT_JNI_LOCAL"
	case SubRootJavaFrame:
		return "GC_ROOT_JAVA_FRAME"
	case SubRootNativeStack:
		return "GC_ROOT_NATIVE_STACK"
	case SubRootStickyClass:
		return "GC_ROOT_STICKY_CLASS"
	case SubRootThreadBlock:
		return "GC_ROOT_THREAD_BLOCK"
	case SubRootMonitorUsed:
		return "GC_ROOT_MONITOR_USED"
	case SubRootThreadObj:
		return "GC_ROOT_THREAD_OBJ"
	case SubClassDump:
		return "GC_CLASS_DUMP"
	case SubInstanceDump:
		return "GC_INSTANCE_DUMP"
	case SubObjArrayDump:
		return "GC_OBJ_ARRAY_DUMP"
	case SubPrimArrayDump:
		return "GC_PRIM_ARRAY_DUMP"
	default:
		return fmt.Sprintf("SubRecordTag(0x%02x)", byte(t))
	}
}

// PrimitiveType is the one-byte type tag used for field, static, constant
// pool, and primitive-array element values.
type PrimitiveType byte

const (
	TypeArrayObject PrimitiveType = 0x01
	TypeObject      PrimitiveType = 0x02
	TypeBoolean     PrimitiveType = 0x04
	TypeChar        PrimitiveType = 0x05
	TypeFloat       PrimitiveType = 0x06
	TypeDouble      PrimitiveType = 0x07
	TypeByte        PrimitiveType = 0x08
	TypeShort       PrimitiveType = 0x09
	TypeInt         PrimitiveType = 0x0A
	TypeLong        PrimitiveType = 0x0B
)

func (t PrimitiveType) String() string {
	switch t {
	case TypeArrayObject:
		return "array-object"
	case TypeObject:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeChar:
		return "char"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	default:
		return fmt.Sprintf("PrimitiveType(0x%02x)", byte(t))
	}
}

// ParsePrimitiveType validates a raw wire byte against the known type
// tags, failing with an unsupported-type error for anything else.
func ParsePrimitiveType(code byte) (PrimitiveType, error) {
	switch PrimitiveType(code) {
	case TypeArrayObject, TypeObject, TypeBoolean, TypeChar, TypeFloat,
		TypeDouble, TypeByte, TypeShort, TypeInt, TypeLong:
		return PrimitiveType(code), nil
	default:
		return 0, fmt.Errorf("unsupported primitive type: 0x%02x", code)
	}
}

// Size returns the on-wire width of a value of this type, given the
// stream's identifier size (4 or 8). HPROF is tightly packed: no
// alignment or padding is ever inserted between values.
func (t PrimitiveType) Size(idSize uint32) (uint32, error) {
	switch t {
	case TypeObject, TypeArrayObject:
		return idSize, nil
	case TypeBoolean, TypeByte:
		return 1, nil
	case TypeChar, TypeShort:
		return 2, nil
	case TypeInt, TypeFloat:
		return 4, nil
	case TypeLong, TypeDouble:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported primitive type: %s", t)
	}
}

// ID is an object/class identifier; its wire width (4 or 8 bytes) is
// fixed by the header for the lifetime of a stream.
type ID uint64

// SerialNum is a plain u4 counter (stack trace serial, thread serial, ...).
type SerialNum uint32

// Header holds the immutable HPROF preamble.
type Header struct {
	Magic          []byte // raw null-terminated magic bytes, e.g. "JAVA PROFILE 1.0.2\x00"
	IdentifierSize uint32 // 4 or 8
	TimestampMs    uint64 // milliseconds since the epoch
}

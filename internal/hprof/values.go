package hprof

import (
	"math"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/transform"
)

// copyID reads one identifier from r and writes it to w unchanged. Used
// for object/array-object element values, which are never routed
// through the transformer (identities are always preserved).
func copyID(r *bio.Reader, w *bio.Writer) error {
	id, err := r.ReadID()
	if err != nil {
		return err
	}
	return w.WriteID(id)
}

// transformValueByType reads one value of typ from r, passes it through
// t's matching scalar hook, and writes the result to w. Object and
// array-object values bypass the transformer entirely per spec: object
// identity is never rewritten.
func transformValueByType(r *bio.Reader, w *bio.Writer, t *transform.Transformer, typ model.PrimitiveType) error {
	switch typ {
	case model.TypeObject, model.TypeArrayObject:
		return copyID(r, w)
	case model.TypeBoolean:
		raw, err := r.ReadU1()
		if err != nil {
			return err
		}
		original := raw != 0
		transformed := t.TransformBoolean(original)
		if transformed == original {
			return w.WriteU1(raw)
		}
		if transformed {
			return w.WriteU1(1)
		}
		return w.WriteU1(0)
	case model.TypeByte:
		raw, err := r.ReadU1()
		if err != nil {
			return err
		}
		return w.WriteU1(byte(t.TransformByte(int8(raw))))
	case model.TypeChar:
		raw, err := r.ReadU2()
		if err != nil {
			return err
		}
		return w.WriteU2(t.TransformChar(raw))
	case model.TypeShort:
		raw, err := r.ReadU2()
		if err != nil {
			return err
		}
		return w.WriteU2(uint16(t.TransformShort(int16(raw))))
	case model.TypeInt:
		raw, err := r.ReadU4()
		if err != nil {
			return err
		}
		return w.WriteU4(uint32(t.TransformInt(int32(raw))))
	case model.TypeLong:
		raw, err := r.ReadU8()
		if err != nil {
			return err
		}
		return w.WriteU8(uint64(t.TransformLong(int64(raw))))
	case model.TypeFloat:
		raw, err := r.ReadU4()
		if err != nil {
			return err
		}
		value := math.Float32frombits(raw)
		out := t.TransformFloat(value)
		return w.WriteU4(math.Float32bits(out))
	case model.TypeDouble:
		raw, err := r.ReadU8()
		if err != nil {
			return err
		}
		value := math.Float64frombits(raw)
		out := t.TransformDouble(value)
		return w.WriteU8(math.Float64bits(out))
	default:
		return typeErrorf("unsupported primitive type: %s", typ)
	}
}

package hprof

import (
	"math"

	"github.com/parttimenerd/hprof-redact/internal/hprof/bio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/transform"
)

// transformPrimitiveArray materializes a whole primitive-array dump's
// elements into a typed Go slice, applies t's whole-array hook (which
// defaults to per-element application, see transform.Transformer), and
// writes the result. Object-typed arrays never reach here: the caller
// dispatches array-object dumps through a separate, identity-preserving
// path.
func transformPrimitiveArray(r *bio.Reader, w *bio.Writer, t *transform.Transformer, typ model.PrimitiveType, numElements uint32) error {
	switch typ {
	case model.TypeBoolean:
		vals := make([]bool, numElements)
		for i := range vals {
			raw, err := r.ReadU1()
			if err != nil {
				return err
			}
			vals[i] = raw != 0
		}
		out := t.TransformBooleanArray(vals)
		for _, v := range out {
			if v {
				if err := w.WriteU1(1); err != nil {
					return err
				}
			} else if err := w.WriteU1(0); err != nil {
				return err
			}
		}
		return nil
	case model.TypeByte:
		vals := make([]int8, numElements)
		for i := range vals {
			raw, err := r.ReadU1()
			if err != nil {
				return err
			}
			vals[i] = int8(raw)
		}
		out := t.TransformByteArray(vals)
		for _, v := range out {
			if err := w.WriteU1(byte(v)); err != nil {
				return err
			}
		}
		return nil
	case model.TypeChar:
		vals := make([]uint16, numElements)
		for i := range vals {
			raw, err := r.ReadU2()
			if err != nil {
				return err
			}
			vals[i] = raw
		}
		out := t.TransformCharArray(vals)
		for _, v := range out {
			if err := w.WriteU2(v); err != nil {
				return err
			}
		}
		return nil
	case model.TypeShort:
		vals := make([]int16, numElements)
		for i := range vals {
			raw, err := r.ReadU2()
			if err != nil {
				return err
			}
			vals[i] = int16(raw)
		}
		out := t.TransformShortArray(vals)
		for _, v := range out {
			if err := w.WriteU2(uint16(v)); err != nil {
				return err
			}
		}
		return nil
	case model.TypeInt:
		vals := make([]int32, numElements)
		for i := range vals {
			raw, err := r.ReadU4()
			if err != nil {
				return err
			}
			vals[i] = int32(raw)
		}
		out := t.TransformIntArray(vals)
		for _, v := range out {
			if err := w.WriteU4(uint32(v)); err != nil {
				return err
			}
		}
		return nil
	case model.TypeLong:
		vals := make([]int64, numElements)
		for i := range vals {
			raw, err := r.ReadU8()
			if err != nil {
				return err
			}
			vals[i] = int64(raw)
		}
		out := t.TransformLongArray(vals)
		for _, v := range out {
			if err := w.WriteU8(uint64(v)); err != nil {
				return err
			}
		}
		return nil
	case model.TypeFloat:
		vals := make([]float32, numElements)
		for i := range vals {
			raw, err := r.ReadU4()
			if err != nil {
				return err
			}
			vals[i] = math.Float32frombits(raw)
		}
		out := t.TransformFloatArray(vals)
		for _, v := range out {
			if err := w.WriteU4(math.Float32bits(v)); err != nil {
				return err
			}
		}
		return nil
	case model.TypeDouble:
		vals := make([]float64, numElements)
		for i := range vals {
			raw, err := r.ReadU8()
			if err != nil {
				return err
			}
			vals[i] = math.Float64frombits(raw)
		}
		out := t.TransformDoubleArray(vals)
		for _, v := range out {
			if err := w.WriteU8(math.Float64bits(v)); err != nil {
				return err
			}
		}
		return nil
	default:
		return typeErrorf("unsupported primitive array element type: %s", typ)
	}
}

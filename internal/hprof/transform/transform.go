// Package transform defines the pluggable value-transformer contract the
// rewriter consults in pass two, plus the three concrete policies named
// in the specification: Zero, Zero-Strings-Length-Preserving, and
// Drop-Strings.
//
// A Transformer is a record of function-valued hooks, not an interface:
// concrete policies build one by filling in only the hooks they care
// about and leaving the rest nil. A nil hook is the default no-op,
// mirroring the reference implementation's default interface methods
// without requiring every policy to re-implement identity passthrough
// for the hooks it doesn't touch.
package transform

import "github.com/parttimenerd/hprof-redact/internal/hprof/namekind"

// StringHook maps an original symbol string to a replacement. Returning
// nil, or a pointer to a string equal to the input, is the "no change"
// signal: the caller must then emit the original bytes verbatim rather
// than re-encode the returned value, so representations the codec would
// otherwise normalize are left untouched.
type StringHook func(value string) *string

// Transformer is the full set of hooks the rewriter may invoke. Every
// field is optional; leaving it nil selects the described default.
type Transformer struct {
	// UTF8String is the generic string hook: it transforms method
	// names, method signatures, and any symbol with no observed
	// name-kind role. It is also the fallback for every per-kind hook
	// below that is left nil.
	UTF8String StringHook

	ClassName             StringHook
	FieldName             StringHook
	SourceFileName        StringHook
	ThreadName            StringHook
	ThreadGroupName       StringHook
	ThreadGroupParentName StringHook

	Boolean func(bool) bool
	Byte    func(int8) int8
	Short   func(int16) int16
	Char    func(uint16) uint16
	Int     func(int32) int32
	Long    func(int64) int64
	Float   func(float32) float32
	Double  func(float64) float64

	// *Array hooks are whole-array bulk operations, invoked once per
	// primitive-array dump instead of once per element. Leaving one nil
	// falls back to applying the matching scalar hook to every element
	// in ascending index order.
	BooleanArray func([]bool) []bool
	ByteArray    func([]int8) []int8
	CharArray    func([]uint16) []uint16
	ShortArray   func([]int16) []int16
	IntArray     func([]int32) []int32
	LongArray    func([]int64) []int64
	FloatArray   func([]float32) []float32
	DoubleArray  func([]float64) []float64
}

// TransformString dispatches to the hook matching kind, falling back to
// the generic UTF8String hook, and returns (newValue, changed). changed
// is false when the hook is unset, returns nil, or returns a value equal
// to the input — in every such case the caller must preserve the
// original bytes rather than re-encode value.
func (t *Transformer) TransformString(kind namekind.Kind, value string) (string, bool) {
	if t == nil {
		return value, false
	}
	hook := t.hookFor(kind)
	if hook == nil {
		hook = t.UTF8String
	}
	if hook == nil {
		return value, false
	}
	result := hook(value)
	if result == nil || *result == value {
		return value, false
	}
	return *result, true
}

func (t *Transformer) hookFor(kind namekind.Kind) StringHook {
	switch kind {
	case namekind.ClassName:
		return t.ClassName
	case namekind.FieldName:
		return t.FieldName
	case namekind.SourceFileName:
		return t.SourceFileName
	case namekind.ThreadName:
		return t.ThreadName
	case namekind.ThreadGroupName:
		return t.ThreadGroupName
	case namekind.ThreadGroupParentName:
		return t.ThreadGroupParentName
	default:
		return nil
	}
}

func (t *Transformer) transformBoolean(v bool) bool {
	if t == nil || t.Boolean == nil {
		return v
	}
	return t.Boolean(v)
}

func (t *Transformer) transformByte(v int8) int8 {
	if t == nil || t.Byte == nil {
		return v
	}
	return t.Byte(v)
}

func (t *Transformer) transformShort(v int16) int16 {
	if t == nil || t.Short == nil {
		return v
	}
	return t.Short(v)
}

func (t *Transformer) transformChar(v uint16) uint16 {
	if t == nil || t.Char == nil {
		return v
	}
	return t.Char(v)
}

func (t *Transformer) transformInt(v int32) int32 {
	if t == nil || t.Int == nil {
		return v
	}
	return t.Int(v)
}

func (t *Transformer) transformLong(v int64) int64 {
	if t == nil || t.Long == nil {
		return v
	}
	return t.Long(v)
}

func (t *Transformer) transformFloat(v float32) float32 {
	if t == nil || t.Float == nil {
		return v
	}
	return t.Float(v)
}

func (t *Transformer) transformDouble(v float64) float64 {
	if t == nil || t.Double == nil {
		return v
	}
	return t.Double(v)
}

// TransformBooleanArray applies BooleanArray if set, otherwise Boolean
// element-wise in ascending index order.
func (t *Transformer) TransformBooleanArray(v []bool) []bool {
	if t != nil && t.BooleanArray != nil {
		return t.BooleanArray(v)
	}
	out := make([]bool, len(v))
	for i, e := range v {
		out[i] = t.transformBoolean(e)
	}
	return out
}

func (t *Transformer) TransformByteArray(v []int8) []int8 {
	if t != nil && t.ByteArray != nil {
		return t.ByteArray(v)
	}
	out := make([]int8, len(v))
	for i, e := range v {
		out[i] = t.transformByte(e)
	}
	return out
}

func (t *Transformer) TransformCharArray(v []uint16) []uint16 {
	if t != nil && t.CharArray != nil {
		return t.CharArray(v)
	}
	out := make([]uint16, len(v))
	for i, e := range v {
		out[i] = t.transformChar(e)
	}
	return out
}

func (t *Transformer) TransformShortArray(v []int16) []int16 {
	if t != nil && t.ShortArray != nil {
		return t.ShortArray(v)
	}
	out := make([]int16, len(v))
	for i, e := range v {
		out[i] = t.transformShort(e)
	}
	return out
}

func (t *Transformer) TransformIntArray(v []int32) []int32 {
	if t != nil && t.IntArray != nil {
		return t.IntArray(v)
	}
	out := make([]int32, len(v))
	for i, e := range v {
		out[i] = t.transformInt(e)
	}
	return out
}

func (t *Transformer) TransformLongArray(v []int64) []int64 {
	if t != nil && t.LongArray != nil {
		return t.LongArray(v)
	}
	out := make([]int64, len(v))
	for i, e := range v {
		out[i] = t.transformLong(e)
	}
	return out
}

func (t *Transformer) TransformFloatArray(v []float32) []float32 {
	if t != nil && t.FloatArray != nil {
		return t.FloatArray(v)
	}
	out := make([]float32, len(v))
	for i, e := range v {
		out[i] = t.transformFloat(e)
	}
	return out
}

func (t *Transformer) TransformDoubleArray(v []float64) []float64 {
	if t != nil && t.DoubleArray != nil {
		return t.DoubleArray(v)
	}
	out := make([]float64, len(v))
	for i, e := range v {
		out[i] = t.transformDouble(e)
	}
	return out
}

// TransformBoolean, TransformByte, ... expose the scalar hooks for
// callers (the field/static-value walker) that transform one value at a
// time outside of an array context.
func (t *Transformer) TransformBoolean(v bool) bool     { return t.transformBoolean(v) }
func (t *Transformer) TransformByte(v int8) int8        { return t.transformByte(v) }
func (t *Transformer) TransformShort(v int16) int16     { return t.transformShort(v) }
func (t *Transformer) TransformChar(v uint16) uint16    { return t.transformChar(v) }
func (t *Transformer) TransformInt(v int32) int32       { return t.transformInt(v) }
func (t *Transformer) TransformLong(v int64) int64      { return t.transformLong(v) }
func (t *Transformer) TransformFloat(v float32) float32 { return t.transformFloat(v) }
func (t *Transformer) TransformDouble(v float64) float64 { return t.transformDouble(v) }

package transform

import (
	"testing"

	"github.com/parttimenerd/hprof-redact/internal/hprof/namekind"
)

func TestZeroPolicyPrimitives(t *testing.T) {
	tr := NewZero()
	if tr.TransformBoolean(true) != false {
		t.Error("boolean")
	}
	if tr.TransformInt(123456) != 0 {
		t.Error("int")
	}
	if tr.TransformLong(1) != 0 {
		t.Error("long")
	}
}

func TestZeroPolicyStringPreservesByteLength(t *testing.T) {
	tr := NewZero()
	original := "MyClass"
	got, changed := tr.TransformString(namekind.ClassName, original)
	if !changed {
		t.Fatal("expected change")
	}
	if len(got) != len(original) {
		t.Fatalf("length %d, want %d", len(got), len(original))
	}
	if got != "0000000" {
		t.Fatalf("got %q, want literal zero digits", got)
	}
}

func TestZeroPolicyStringPreservesByteLengthForMultiByteInput(t *testing.T) {
	// "Café" is 4 runes but 5 UTF-8 bytes (é takes 2). The placeholder
	// must match the BYTE length, not the rune count, or a record
	// containing multi-byte text would change size under a policy
	// documented as length-preserving.
	tr := NewZero()
	original := "Café"
	if len(original) != 5 {
		t.Fatalf("test fixture assumption broken: len(%q) = %d", original, len(original))
	}
	got, changed := tr.TransformString(namekind.ClassName, original)
	if !changed {
		t.Fatal("expected change")
	}
	if len(got) != 5 || got != "00000" {
		t.Fatalf("got %q (len %d), want 5 zero digits", got, len(got))
	}
}

func TestZeroStringsPreservesPrimitives(t *testing.T) {
	tr := NewZeroStrings()
	if tr.TransformInt(42) != 42 {
		t.Error("primitives must pass through unchanged")
	}
	got, changed := tr.TransformString(namekind.FieldName, "value")
	if !changed || len(got) != len("value") {
		t.Fatalf("got %q changed=%v", got, changed)
	}
}

func TestZeroStringsEmptyInputNoChange(t *testing.T) {
	tr := NewZeroStrings()
	_, changed := tr.TransformString(namekind.Unknown, "")
	if changed {
		t.Fatal("empty string must be a no-op so original bytes are preserved")
	}
}

func TestDropStringsEmptiesAndShrinks(t *testing.T) {
	tr := NewDropStrings()
	got, changed := tr.TransformString(namekind.Unknown, "hello")
	if !changed || got != "" {
		t.Fatalf("got %q changed=%v", got, changed)
	}
	if tr.TransformInt(7) != 7 {
		t.Error("primitives must pass through unchanged")
	}
}

func TestNoOpTransformerIsIdentity(t *testing.T) {
	var tr *Transformer
	got, changed := tr.TransformString(namekind.ClassName, "MyClass")
	if changed || got != "MyClass" {
		t.Fatalf("nil transformer must be a full no-op, got %q changed=%v", got, changed)
	}
	if tr.TransformInt(5) != 5 {
		t.Error("nil transformer must pass primitives through")
	}
}

func TestBulkArrayDefaultsToScalarHook(t *testing.T) {
	tr := NewZero()
	out := tr.TransformIntArray([]int32{1, 2, 3})
	for _, v := range out {
		if v != 0 {
			t.Fatalf("got %v, want all zero", out)
		}
	}
}

func TestMethodNameAndSignatureRouteThroughGenericHook(t *testing.T) {
	tr := &Transformer{
		UTF8String: func(string) *string { s := "M"; return &s },
		ClassName:  func(string) *string { s := "C"; return &s },
	}
	// Neither MethodName nor MethodSignature has a dedicated hook: both
	// must fall back to the generic UTF8String hook.
	got, changed := tr.TransformString(namekind.MethodName, "foo")
	if !changed || got != "M" {
		t.Fatalf("got %q changed=%v", got, changed)
	}
	got, changed = tr.TransformString(namekind.MethodSignature, "()V")
	if !changed || got != "M" {
		t.Fatalf("got %q changed=%v", got, changed)
	}
}

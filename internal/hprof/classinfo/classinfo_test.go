package classinfo

import (
	"testing"

	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
)

func TestFlattenSingleClass(t *testing.T) {
	s := NewStore()
	s.Put(&ClassInfo{
		ClassID: 0x100,
		InstanceFields: []FieldDef{
			{NameID: 1, Type: model.TypeInt},
		},
	})

	fields, ok := s.Flatten(0x100)
	if !ok {
		t.Fatal("expected resolvable")
	}
	if len(fields) != 1 || fields[0].Type != model.TypeInt {
		t.Fatalf("got %+v", fields)
	}
}

func TestFlattenInheritedOrder(t *testing.T) {
	s := NewStore()
	s.Put(&ClassInfo{
		ClassID:        0x1,
		InstanceFields: []FieldDef{{NameID: 10, Type: model.TypeInt}},
	})
	s.Put(&ClassInfo{
		ClassID:        0x2,
		SuperClassID:   0x1,
		InstanceFields: []FieldDef{{NameID: 20, Type: model.TypeLong}},
	})

	fields, ok := s.Flatten(0x2)
	if !ok {
		t.Fatal("expected resolvable")
	}
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].NameID != 10 || fields[1].NameID != 20 {
		t.Fatalf("got wrong order: %+v", fields)
	}
}

func TestFlattenUnresolvedAncestor(t *testing.T) {
	s := NewStore()
	s.Put(&ClassInfo{ClassID: 0x2, SuperClassID: 0x1})

	if _, ok := s.Flatten(0x2); ok {
		t.Fatal("expected unresolved when superclass unknown")
	}
	if _, ok := s.Flatten(0x999); ok {
		t.Fatal("expected unresolved for unknown class")
	}
}

func TestFlattenZeroClassIDIsEmpty(t *testing.T) {
	s := NewStore()
	fields, ok := s.Flatten(0)
	if !ok || len(fields) != 0 {
		t.Fatalf("got %+v, %v", fields, ok)
	}
}

func TestPutInvalidatesCache(t *testing.T) {
	s := NewStore()
	s.Put(&ClassInfo{ClassID: 0x1, InstanceFields: []FieldDef{{NameID: 1, Type: model.TypeInt}}})
	if _, ok := s.Flatten(0x1); !ok {
		t.Fatal("expected resolvable")
	}
	s.Put(&ClassInfo{ClassID: 0x1, InstanceFields: []FieldDef{{NameID: 1, Type: model.TypeInt}, {NameID: 2, Type: model.TypeLong}}})
	fields, ok := s.Flatten(0x1)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected re-dump to be reflected, got %+v", fields)
	}
}

// Package classinfo tracks per-class instance field layout across a
// HPROF stream and flattens each class's inherited-plus-own fields into
// the order instance dumps store their values in.
package classinfo

import "github.com/parttimenerd/hprof-redact/internal/hprof/model"

// FieldDef names one instance field: the symbol id of its name and its
// wire type.
type FieldDef struct {
	NameID model.ID
	Type   model.PrimitiveType
}

// ClassInfo is what a single CLASS_DUMP sub-record contributes: the
// class's own identity, its superclass, and its own (non-inherited)
// instance fields in declaration order.
type ClassInfo struct {
	ClassID        model.ID
	SuperClassID   model.ID
	InstanceFields []FieldDef
}

// Store accumulates ClassInfo as CLASS_DUMP sub-records are observed and
// answers flattened-layout queries. It is not safe for concurrent use;
// the pipeline drives it from a single goroutine per pass.
type Store struct {
	classes map[model.ID]*ClassInfo
	flatten map[model.ID][]FieldDef
}

func NewStore() *Store {
	return &Store{
		classes: make(map[model.ID]*ClassInfo),
		flatten: make(map[model.ID][]FieldDef),
	}
}

// Put records or replaces a class's layout. A HPROF stream may in
// principle redump a class (e.g. across two heap dump segments produced
// by different collectors); the memoized flattening for exactly that
// class id is invalidated, matching the reference filter's behavior of
// only ever dropping the one cache entry it just replaced.
func (s *Store) Put(info *ClassInfo) {
	s.classes[info.ClassID] = info
	delete(s.flatten, info.ClassID)
}

// Get returns the raw (non-flattened) info for a class id, if known.
func (s *Store) Get(classID model.ID) (*ClassInfo, bool) {
	info, ok := s.classes[classID]
	return info, ok
}

// Flatten returns classID's instance fields in superclass-to-subclass
// order, memoized. It reports ok=false when classID or any ancestor in
// its chain has not been observed via Put yet — the "unresolved"
// sentinel a caller must treat as "cannot safely walk this instance's
// fields", since the flattened layout would otherwise be incomplete.
// classID == 0 (java.lang.Object's implicit root) flattens to no fields.
func (s *Store) Flatten(classID model.ID) ([]FieldDef, bool) {
	if classID == 0 {
		return nil, true
	}
	if cached, ok := s.flatten[classID]; ok {
		return cached, true
	}
	info, ok := s.classes[classID]
	if !ok {
		return nil, false
	}

	var result []FieldDef
	if info.SuperClassID != 0 {
		parent, ok := s.Flatten(info.SuperClassID)
		if !ok {
			return nil, false
		}
		result = append(result, parent...)
	}
	result = append(result, info.InstanceFields...)

	s.flatten[classID] = result
	return result, true
}

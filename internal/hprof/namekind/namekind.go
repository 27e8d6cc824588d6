// Package namekind classifies each UTF-8 symbol id observed during pass
// one by the semantic role it plays the first time it's seen, so pass
// two can route the corresponding string to the right transformer hook.
package namekind

import "github.com/parttimenerd/hprof-redact/internal/hprof/model"

// Kind is a symbol's semantic role. The zero value, Unknown, means "seen
// only as a generic UTF-8 record with no recognized use" and routes to
// the transformer's generic string hook.
type Kind int

const (
	Unknown Kind = iota
	ClassName
	FieldName
	MethodName
	MethodSignature
	SourceFileName
	ThreadName
	ThreadGroupName
	ThreadGroupParentName
)

// Classifier remembers the first-observed Kind per symbol id. Later
// observations of a different kind for the same id never overwrite the
// first, mirroring putIfAbsent semantics: a symbol reused across two
// roles keeps whichever role pass one saw first.
type Classifier struct {
	kinds map[model.ID]Kind
}

func NewClassifier() *Classifier {
	return &Classifier{kinds: make(map[model.ID]Kind)}
}

// Observe records id as playing kind, unless a role was already recorded
// for it.
func (c *Classifier) Observe(id model.ID, kind Kind) {
	if id == 0 {
		return
	}
	if _, ok := c.kinds[id]; !ok {
		c.kinds[id] = kind
	}
}

// Lookup returns the recorded role for id, or Unknown if none was ever
// observed.
func (c *Classifier) Lookup(id model.ID) Kind {
	return c.kinds[id]
}

package namekind

import "testing"

func TestObserveFirstWins(t *testing.T) {
	c := NewClassifier()
	c.Observe(1, ClassName)
	c.Observe(1, FieldName) // must not overwrite

	if got := c.Lookup(1); got != ClassName {
		t.Fatalf("got %v, want ClassName", got)
	}
}

func TestLookupUnknownDefault(t *testing.T) {
	c := NewClassifier()
	if got := c.Lookup(42); got != Unknown {
		t.Fatalf("got %v, want Unknown", got)
	}
}

func TestObserveZeroIDIgnored(t *testing.T) {
	c := NewClassifier()
	c.Observe(0, ClassName)
	if got := c.Lookup(0); got != Unknown {
		t.Fatalf("got %v, want Unknown", got)
	}
}

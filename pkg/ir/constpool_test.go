package ir

import "testing"

func TestInternDeduplicates(t *testing.T) {
	pool := NewConstPool()
	a := pool.Intern([]interface{}{3, "click"})
	b := pool.Intern([]interface{}{3, "click"})
	if a != b {
		t.Errorf("structurally equal values must share an index: %d vs %d", a, b)
	}
	if pool.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", pool.Len())
	}
}

func TestInternDistinguishesValues(t *testing.T) {
	pool := NewConstPool()
	a := pool.Intern([]interface{}{1, "title"})
	b := pool.Intern([]interface{}{1, "href"})
	if a == b {
		t.Errorf("distinct values must not share an index")
	}
	if pool.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", pool.Len())
	}
}

func TestInternCanonicalizesMapKeysButKeepsOriginal(t *testing.T) {
	pool := NewConstPool()
	first := map[string]interface{}{"b": 2, "a": 1}
	second := map[string]interface{}{"a": 1, "b": 2}
	i := pool.Intern(first)
	j := pool.Intern(second)
	if i != j {
		t.Errorf("key order must not affect equality: %d vs %d", i, j)
	}
	stored, ok := pool.Values()[i].(map[string]interface{})
	if !ok || stored["b"] != 2 {
		t.Errorf("original value must be stored, got %#v", pool.Values()[i])
	}
}

func TestInternPreservesInsertionOrder(t *testing.T) {
	pool := NewConstPool()
	pool.Intern("first")
	pool.Intern("second")
	pool.Intern("first")
	vals := pool.Values()
	if len(vals) != 2 || vals[0] != "first" || vals[1] != "second" {
		t.Errorf("pool order wrong: %#v", vals)
	}
}

func TestConstsEntryMarkerOrdering(t *testing.T) {
	entry := ConstsEntry{
		StaticPairs:  [][2]string{{"id", "x"}},
		Properties:   []string{"title"},
		TemplateOnly: []string{"click"},
		StyleClass:   []string{"width"},
	}
	got := entry.Value()
	want := []interface{}{"id", "x", 1, "title", 3, "click", 5, "width"}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestEmptyConstsEntry(t *testing.T) {
	if !(ConstsEntry{}).Empty() {
		t.Errorf("zero entry must report empty")
	}
	if (ConstsEntry{Properties: []string{"a"}}).Empty() {
		t.Errorf("entry with properties must not report empty")
	}
}

package ir

import (
	"fmt"
	"sort"
)

// ConstPool is the per-component constant pool: an
// arena of JSON-like literal values plus a hash-to-index side table for
// O(1) structural-equality interning.
type ConstPool struct {
	values []interface{}
	index  map[string]int
}

// NewConstPool returns an empty pool.
func NewConstPool() *ConstPool {
	return &ConstPool{index: map[string]int{}}
}

// Intern deduplicates v by structural equality and returns its pool index.
// Values are canonicalized before hashing (sorted object keys) but the
// ORIGINAL value, with its source key order, is what gets stored — only
// the hash key is canonical.
func (c *ConstPool) Intern(v interface{}) int {
	key := canonicalKey(v)
	if idx, ok := c.index[key]; ok {
		return idx
	}
	idx := len(c.values)
	c.values = append(c.values, v)
	c.index[key] = idx
	return idx
}

// Values returns the pool in insertion order.
func (c *ConstPool) Values() []interface{} { return c.values }

// Len reports the number of distinct entries.
func (c *ConstPool) Len() int { return len(c.values) }

// canonicalKey renders v into a stable string for hashing: object keys are
// sorted, everything else follows Go's default formatting, which is
// deterministic for the plain numbers/strings/bools/arrays/maps this pool
// ever stores.
func canonicalKey(v interface{}) string {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := "{"
		for i, k := range keys {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf("%q:%s", k, canonicalKey(t[k]))
		}
		return s + "}"
	case []interface{}:
		s := "["
		for i, e := range t {
			if i > 0 {
				s += ","
			}
			s += canonicalKey(e)
		}
		return s + "]"
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

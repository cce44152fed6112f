// Package registry keeps pipeline stages in a densely orderable sequence.
//
// Every entry is addressed by a rational Key. New entries get a key between
// their neighbors, so inserting never renumbers existing entries.
package registry

import (
	"fmt"
	"slices"
)

// UnknownKeyError is the panic value raised when an operation names a key
// that is not in the registry.
type UnknownKeyError struct {
	Key Key
	Op  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("registry: %s on unknown key %s", e.Op, e.Key)
}

type entry[V any] struct {
	key     Key
	value   V
	ignored bool
}

// Registry is an ordered mapping from Key to value. The head entry always
// exists. A Registry is not safe for concurrent use.
type Registry[V any] struct {
	entries []entry[V]
}

// New creates a registry holding only the head entry.
func New[V any](head V) *Registry[V] {
	return &Registry[V]{
		entries: []entry[V]{{key: Head, value: head}},
	}
}

func (r *Registry[V]) find(key Key) (int, bool) {
	return slices.BinarySearchFunc(r.entries, key, func(e entry[V], k Key) int {
		return e.key.Compare(k)
	})
}

func (r *Registry[V]) index(op string, key Key) int {
	i, ok := r.find(key)
	if !ok {
		panic(&UnknownKeyError{Key: key, Op: op})
	}
	return i
}

// InsertAdjacent adds v right after key and returns the new key.
func (r *Registry[V]) InsertAdjacent(key Key, v V) Key {
	i := r.index("insert", key)

	var next Key
	if i == len(r.entries)-1 {
		next = key.Succ()
	} else {
		next = Mediant(key, r.entries[i+1].key)
	}

	r.entries = slices.Insert(r.entries, i+1, entry[V]{key: next, value: v})
	return next
}

// Navigate walks |up-down| entries from key toward the head (up > down) or
// the tail (down > up), stopping at either end.
func (r *Registry[V]) Navigate(key Key, up, down int) Key {
	i := r.index("navigate", key)
	j := i + down - up
	j = max(0, min(j, len(r.entries)-1))
	return r.entries[j].key
}

// Remove deletes key and returns its predecessor. Removing the head does
// nothing and returns the head.
func (r *Registry[V]) Remove(key Key) Key {
	i := r.index("remove", key)
	if i == 0 {
		return Head
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return r.entries[i-1].key
}

// ShrinkToFit removes entries from the tail until at most limit remain and
// returns the removed keys, last first. The head is never removed.
func (r *Registry[V]) ShrinkToFit(limit int) []Key {
	keep := max(limit, 1)

	var removed []Key
	for len(r.entries) > keep {
		last := len(r.entries) - 1
		removed = append(removed, r.entries[last].key)
		r.entries = r.entries[:last]
	}
	return removed
}

// ToggleIgnore flips the ignored flag of key and returns the new value.
func (r *Registry[V]) ToggleIgnore(key Key) bool {
	i := r.index("toggle", key)
	r.entries[i].ignored = !r.entries[i].ignored
	return r.entries[i].ignored
}

// Ignored reports whether key is excluded from submission.
func (r *Registry[V]) Ignored(key Key) bool {
	return r.entries[r.index("ignored", key)].ignored
}

// Get returns the value stored at key.
func (r *Registry[V]) Get(key Key) V {
	return r.entries[r.index("get", key)].value
}

// Has reports whether key is present.
func (r *Registry[V]) Has(key Key) bool {
	_, ok := r.find(key)
	return ok
}

// Len returns the number of entries, head included.
func (r *Registry[V]) Len() int {
	return len(r.entries)
}

// Last returns the greatest key.
func (r *Registry[V]) Last() Key {
	return r.entries[len(r.entries)-1].key
}

// Keys returns all keys in order.
func (r *Registry[V]) Keys() []Key {
	keys := make([]Key, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Each calls fn for every entry in key order.
func (r *Registry[V]) Each(fn func(key Key, v V, ignored bool)) {
	for _, e := range r.entries {
		fn(e.key, e.value, e.ignored)
	}
}

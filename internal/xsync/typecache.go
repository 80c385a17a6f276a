//go:build go1.23

// Package xsync provides strongly-typed, lock-free wrappers over the
// standard library's concurrency primitives: [Map] backs pkg/registry's
// three per-format tables, and [TypeCache] backs pkg/classify's memoized
// classification plans and pkg/desc's descriptors, per spec.md §5's "populated once, read-mostly,
// safe for concurrent readers" contract.
package xsync

import (
	"reflect"

	"github.com/dolthub/maphash"
)

// TypeCache memoizes a value of type V per [reflect.Type].
//
// It exists because pkg/classify and pkg/desc both need to go from a
// concrete Go type to a precomputed value (a classification plan, or a
// field descriptor) on every single save/load call; hashing a
// reflect.Type with the stdlib map implementation means going through its
// interface equality machinery on every lookup. [maphash.Hasher] computes a
// stable 64-bit hash of the interface value once per Load and lets the
// cache use that as a plain map key instead.
type TypeCache[V any] struct {
	hasher maphash.Hasher[reflect.Type]
	bucket Map[uint64, []typeEntry[V]]
}

type typeEntry[V any] struct {
	typ reflect.Type
	val V
}

// NewTypeCache constructs an empty cache.
func NewTypeCache[V any]() *TypeCache[V] {
	return &TypeCache[V]{hasher: maphash.NewHasher[reflect.Type]()}
}

// Load returns the cached value for t, if any.
func (c *TypeCache[V]) Load(t reflect.Type) (V, bool) {
	h := c.hasher.Hash(t)

	entries, ok := c.bucket.Load(h)
	if !ok {
		var zero V
		return zero, false
	}

	for _, e := range entries {
		if e.typ == t {
			return e.val, true
		}
	}

	var zero V
	return zero, false
}

// LoadOrStore returns the cached value for t, computing and storing it with
// make if absent.
//
// make may be called more than once for the same t under concurrent
// first use. Each racing caller stores and returns its own result, so the
// last store wins; a concurrent store into the same hash bucket can also
// drop another type's entry, which is then recomputed on its next use.
func (c *TypeCache[V]) LoadOrStore(t reflect.Type, make func() V) V {
	if v, ok := c.Load(t); ok {
		return v
	}

	h := c.hasher.Hash(t)
	v := make()

	entries, _ := c.bucket.Load(h)
	for _, e := range entries {
		if e.typ == t {
			return e.val
		}
	}

	c.bucket.Store(h, append(append([]typeEntry[V]{}, entries...), typeEntry[V]{t, v}))

	return v
}

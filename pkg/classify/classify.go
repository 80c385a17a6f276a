// Package classify implements the archiver type classifier (C1): it sorts
// any Go type into exactly one serialization strategy, in the priority
// order spec.md §4.1 lays out.
//
// Go has no template specialization, so "compile-time dispatch" is realized
// here as a classification performed once per [reflect.Type] and memoized in
// a [github.com/flier/archiver/internal/xsync.TypeCache] — the same
// memoize-on-first-use idiom goutil uses for its flag-parsing caches, just
// keyed by type instead of by flag name.
package classify

import (
	"encoding"
	"reflect"

	"github.com/flier/archiver/internal/xsync"
)

// Category is one of the ten serialization strategies of spec.md §4.1, in
// priority order.
type Category int

const (
	// Primitive covers arithmetic numbers, booleans, strings, the empty-sum
	// placeholder (struct{}), enumerations, and types implementing
	// encoding.TextMarshaler/TextUnmarshaler (the Go realization of
	// spec.md's "designated single-string domain types").
	Primitive Category = iota + 1
	// Sequence is an ordered container with no key type (a Go slice).
	Sequence
	// Map is an associative container with a key and a mapped value type.
	Map
	// Set is an associative container with a key type and no mapped value
	// (a Go map[K]struct{}).
	Set
	// Array is a fixed-size element sequence of statically known length.
	Array
	// Tuple is a statically sized heterogeneous sequence of known arity.
	Tuple
	// Optional holds zero or one value of a known element type.
	Optional
	// Variant is a finite alternative set, exactly one active at a time.
	Variant
	// OwnedUnique is exclusive ownership of a target value.
	OwnedUnique
	// OwnedShared is shared ownership of a target value, possibly behind a
	// base abstraction resolved through the polymorphic registry.
	OwnedShared
	// Aggregate is a reflectable struct with a member descriptor.
	Aggregate
	// Pointer is a non-owning raw pointer to a reflectable aggregate: valid
	// to save, rejected on load (see [Plan.LoadRejected]).
	Pointer
)

func (c Category) String() string {
	switch c {
	case Primitive:
		return "Primitive"
	case Sequence:
		return "Sequence"
	case Map:
		return "Map"
	case Set:
		return "Set"
	case Array:
		return "Array"
	case Tuple:
		return "Tuple"
	case Optional:
		return "Optional"
	case Variant:
		return "Variant"
	case OwnedUnique:
		return "OwnedUnique"
	case OwnedShared:
		return "OwnedShared"
	case Aggregate:
		return "Aggregate"
	case Pointer:
		return "Pointer"
	default:
		return "Unknown"
	}
}

// Marker lets a type opt directly into a [Category] instead of being
// detected structurally. pkg/opt, pkg/either, pkg/sum, pkg/tuple, pkg/box
// and pkg/shared all implement it.
type Marker interface {
	ArchiveCategory() Category
}

// Plan is the memoized classification result for one [reflect.Type].
type Plan struct {
	Type Category

	// Elem is the element type for Sequence, Array, Optional, OwnedUnique,
	// OwnedShared and Pointer, and the mapped value type for Map.
	Elem reflect.Type
	// Key is the key type for Map and Set.
	Key reflect.Type

	// ArrayLen is the static length for Array.
	ArrayLen int

	// LoadRejected is true for Pointer: saving is fine, loading is a
	// compile-time error in the source language. Go cannot reject this at
	// compile time for an arbitrary generic Load[T], so classify still
	// produces a Plan for it and pkg/engine.Load checks LoadRejected and
	// fails fast with xerrors.Unsupported instead of attempting anything.
	LoadRejected bool
}

var cache = xsync.NewTypeCache[*Plan]()

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	markerType          = reflect.TypeOf((*Marker)(nil)).Elem()
)

// Of classifies T, memoizing the result for subsequent calls.
func Of[T any]() *Plan {
	var zero T
	t := reflect.TypeOf(&zero).Elem()

	return OfType(t)
}

// OfType classifies a [reflect.Type] directly, for use by code that only
// has a reflect.Type in hand (e.g. recursing into a container's element
// type).
func OfType(t reflect.Type) *Plan {
	return cache.LoadOrStore(t, func() *Plan { return classify(t) })
}

func classify(t reflect.Type) *Plan {
	if isEmptySum(t) {
		return &Plan{Type: Primitive}
	}

	if implementsTextCodec(t) {
		return &Plan{Type: Primitive}
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return &Plan{Type: Primitive}
	}

	if t.Implements(markerType) || reflect.PointerTo(t).Implements(markerType) {
		return classifyMarked(t)
	}

	switch t.Kind() {
	case reflect.Array:
		return &Plan{Type: Array, Elem: t.Elem(), ArrayLen: t.Len()}
	case reflect.Slice:
		return &Plan{Type: Sequence, Elem: t.Elem()}
	case reflect.Map:
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			return &Plan{Type: Set, Key: t.Key()}
		}

		return &Plan{Type: Map, Key: t.Key(), Elem: t.Elem()}
	case reflect.Ptr:
		return &Plan{Type: Pointer, Elem: t.Elem(), LoadRejected: true}
	case reflect.Struct:
		return &Plan{Type: Aggregate}
	default:
		return &Plan{Type: 0}
	}
}

func classifyMarked(t reflect.Type) *Plan {
	var category Category

	if m, ok := reflect.New(t).Elem().Interface().(Marker); ok {
		category = m.ArchiveCategory()
	} else if m, ok := reflect.New(t).Interface().(Marker); ok {
		category = m.ArchiveCategory()
	}

	plan := &Plan{Type: category}

	switch category {
	case Optional, OwnedUnique, OwnedShared:
		if f, ok := t.FieldByName("Value"); ok {
			plan.Elem = f.Type
			if plan.Elem.Kind() == reflect.Ptr {
				plan.Elem = plan.Elem.Elem()
			}
		}
	}

	return plan
}

func implementsTextCodec(t reflect.Type) bool {
	if t.Kind() == reflect.Struct && t.NumField() == 0 {
		return false // the empty-sum placeholder takes priority, see isEmptySum
	}

	return (t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)) &&
		(t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType))
}

func isEmptySum(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

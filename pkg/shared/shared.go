// Package shared provides [Shared], a generic owned-shared handle over a
// base abstraction.
//
// Shared models shared ownership the way a C++ shared_ptr<Base> does: it is
// nullable, and when non-null its dynamic type may be any concrete type
// registered for the base, resolved through
// [github.com/flier/archiver/pkg/registry] (C5) per spec.md §4.4's owned-shared
// save/load algorithm. Unlike [github.com/flier/archiver/pkg/box.Box], saving
// a null Shared is permitted (it writes the empty sentinel).
package shared

import (
	"reflect"

	"github.com/flier/archiver/pkg/classify"
)

// Shared holds a B (typically an interface type, the "base") by shared
// ownership.
//
// Shared implements classify.Marker, so it is archived as the engine's
// OwnedShared category.
type Shared[B any] struct {
	Value B
}

// New wraps value as a Shared.
func New[B any](value B) Shared[B] { return Shared[B]{value} }

// Nil returns a null Shared. Saving one writes the empty sentinel and is not
// an error, unlike box.Box's NullPointer failure.
func Nil[B any]() Shared[B] { var zero B; return Shared[B]{zero} }

// ArchiveCategory implements classify.Marker.
func (Shared[B]) ArchiveCategory() classify.Category { return classify.OwnedShared }

// IsNil reports whether this handle holds nothing.
//
// B is usually an interface type; Shared can't constrain B to be
// comparable-to-nil at the type level (B any also admits non-nilable types
// like int), so nilness is checked through reflection instead, the same way
// encoding/json decides whether an interface value is absent.
func (s Shared[B]) IsNil() bool {
	v := reflect.ValueOf(s.Value)
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// Concrete returns the dynamic type of the held value, or nil if IsNil.
func (s Shared[B]) Concrete() reflect.Type {
	if s.IsNil() {
		return nil
	}

	return reflect.TypeOf(s.Value)
}

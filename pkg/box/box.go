// Package box provides [Box], a generic owned-unique handle.
//
// Box models exclusive ownership of a target value, the way a C++
// unique_ptr does: it is nullable, and — unlike [github.com/flier/archiver/pkg/opt.Option] —
// saving a null Box is a failure (spec.md §4.4's NullPointer edge case),
// because there is no valid "empty but ownable" state for a handle that is
// supposed to own something.
package box

import (
	"fmt"

	"github.com/flier/archiver/pkg/classify"
)

// Box owns a T exclusively.
//
// Box implements classify.Marker, so it is archived as the engine's
// OwnedUnique category.
type Box[T any] struct {
	Value *T
}

// New boxes value.
func New[T any](value T) Box[T] { return Box[T]{&value} }

// Empty returns a null Box. Saving one fails with xerrors.NullPointer.
func Empty[T any]() Box[T] { return Box[T]{} }

// ArchiveCategory implements classify.Marker.
func (Box[T]) ArchiveCategory() classify.Category { return classify.OwnedUnique }

// IsNil reports whether this Box owns nothing.
func (b Box[T]) IsNil() bool { return b.Value == nil }

func (b Box[T]) String() string {
	if b.IsNil() {
		return "Box(nil)"
	}

	return fmt.Sprintf("Box(%v)", *b.Value)
}

// Get returns the owned value, or panics if the Box is nil.
func (b Box[T]) Get() T {
	if b.IsNil() {
		panic("called Box.Get() on a nil Box")
	}

	return *b.Value
}

// Reset empties the Box, relinquishing ownership.
func (b *Box[T]) Reset() { b.Value = nil }

// Set installs value into the Box, taking ownership of it.
func (b *Box[T]) Set(value T) { b.Value = &value }

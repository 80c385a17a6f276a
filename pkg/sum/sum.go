// Package sum extends [github.com/flier/archiver/pkg/either]'s arity-2 sum
// type to arities 3 and 4, so the engine's Variant-like category is not
// artificially capped at two alternatives.
//
// Sum3 and Sum4 implement classify.Marker the same way Either does: their
// exported pointer fields are the alternatives, in declaration order, and at
// most one is ever non-nil.
package sum

import (
	"fmt"

	"github.com/flier/archiver/pkg/classify"
)

// Sum3 is a general purpose sum type with three cases.
type Sum3[A, B, C any] struct {
	A *A
	B *B
	C *C
}

// A3 constructs a Sum3 holding its first alternative.
func A3[A, B, C any](v A) Sum3[A, B, C] { return Sum3[A, B, C]{A: &v} }

// B3 constructs a Sum3 holding its second alternative.
func B3[A, B, C any](v B) Sum3[A, B, C] { return Sum3[A, B, C]{B: &v} }

// C3 constructs a Sum3 holding its third alternative.
func C3[A, B, C any](v C) Sum3[A, B, C] { return Sum3[A, B, C]{C: &v} }

// ArchiveCategory implements classify.Marker.
func (Sum3[A, B, C]) ArchiveCategory() classify.Category { return classify.Variant }

func (s Sum3[A, B, C]) String() string {
	switch {
	case s.A != nil:
		return fmt.Sprintf("A(%v)", *s.A)
	case s.B != nil:
		return fmt.Sprintf("B(%v)", *s.B)
	case s.C != nil:
		return fmt.Sprintf("C(%v)", *s.C)
	default:
		return "Empty"
	}
}

// Sum4 is a general purpose sum type with four cases.
type Sum4[A, B, C, D any] struct {
	A *A
	B *B
	C *C
	D *D
}

// A4 constructs a Sum4 holding its first alternative.
func A4[A, B, C, D any](v A) Sum4[A, B, C, D] { return Sum4[A, B, C, D]{A: &v} }

// B4 constructs a Sum4 holding its second alternative.
func B4[A, B, C, D any](v B) Sum4[A, B, C, D] { return Sum4[A, B, C, D]{B: &v} }

// C4 constructs a Sum4 holding its third alternative.
func C4[A, B, C, D any](v C) Sum4[A, B, C, D] { return Sum4[A, B, C, D]{C: &v} }

// D4 constructs a Sum4 holding its fourth alternative.
func D4[A, B, C, D any](v D) Sum4[A, B, C, D] { return Sum4[A, B, C, D]{D: &v} }

// ArchiveCategory implements classify.Marker.
func (Sum4[A, B, C, D]) ArchiveCategory() classify.Category { return classify.Variant }

func (s Sum4[A, B, C, D]) String() string {
	switch {
	case s.A != nil:
		return fmt.Sprintf("A(%v)", *s.A)
	case s.B != nil:
		return fmt.Sprintf("B(%v)", *s.B)
	case s.C != nil:
		return fmt.Sprintf("C(%v)", *s.C)
	case s.D != nil:
		return fmt.Sprintf("D(%v)", *s.D)
	default:
		return "Empty"
	}
}

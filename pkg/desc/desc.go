// Package desc implements the archiver reflection descriptor (C3): a
// compile-time-shaped, ordered list of (member-name, member-accessor) pairs
// for a reflectable aggregate, with inheritance realized as list
// concatenation (spec.md §4.3).
//
// The default path uses [reflect.VisibleFields], which already returns an
// embedded (anonymous) struct field's members before the embedding type's
// own members, in declaration order — this is spec.md §9's option (c),
// "embedding the parent as a first field," and it falls out of Go's own
// field-promotion rules for free instead of needing a derive macro.
//
// A type may instead implement [Describer] to hand-author its descriptor,
// which is how spec.md §3's "placeholder entry" (a name with no backing
// field, for reflectable types with no data) is realized in Go.
package desc

import (
	"reflect"
	"strings"

	"github.com/flier/archiver/internal/xsync"
)

// Field is one descriptor entry: a stable member name and the reflected
// struct field it names. A Field with an invalid Index is a placeholder
// entry (spec.md §3): a name with no backing storage.
type Field struct {
	Name  string
	Index []int // reflect.Type.FieldByIndex path; nil for a placeholder
}

// IsPlaceholder reports whether this entry has no backing storage.
func (f Field) IsPlaceholder() bool { return f.Index == nil }

// Get returns the addressable value this field accesses on v, which must be
// a settable struct value (e.g. obtained via reflect.ValueOf(ptr).Elem()).
func (f Field) Get(v reflect.Value) reflect.Value {
	return v.FieldByIndex(f.Index)
}

// Descriptor is the ordered list of entries for one aggregate type.
type Descriptor struct {
	Type   reflect.Type
	Fields []Field
}

// Describer lets a type hand-author its descriptor instead of going through
// automatic reflect.VisibleFields discovery.
type Describer interface {
	ArchiveFields() []Field
}

// Initializer is the spec.md §4.3 `initialize` hook: invoked after a
// reflectable's members have been loaded, never on save.
type Initializer interface {
	AfterLoad() error
}

var cache = xsync.NewTypeCache[*Descriptor]()

// Of returns T's descriptor, memoizing the result.
func Of[T any]() *Descriptor {
	var zero T
	return OfType(reflect.TypeOf(&zero).Elem())
}

// OfType is like Of, but for code that only has a reflect.Type in hand.
func OfType(t reflect.Type) *Descriptor {
	return cache.LoadOrStore(t, func() *Descriptor { return build(t) })
}

func build(t reflect.Type) *Descriptor {
	if d, ok := reflect.New(t).Interface().(Describer); ok {
		return &Descriptor{Type: t, Fields: d.ArchiveFields()}
	}

	visible := reflect.VisibleFields(t)

	fields := make([]Field, 0, len(visible))
	for _, f := range visible {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("archive"); ok {
			if tag == "-" {
				continue
			}

			if comma := strings.IndexByte(tag, ','); comma >= 0 {
				tag = tag[:comma]
			}

			if tag != "" {
				name = tag
			}
		}

		fields = append(fields, Field{Name: name, Index: f.Index})
	}

	return &Descriptor{Type: t, Fields: fields}
}

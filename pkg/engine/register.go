package engine

import (
	"reflect"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/registry"
)

// Register installs T as a concrete type reachable through an owned-shared
// base abstraction (pkg/shared.Shared), under all three archive formats,
// keyed by T's type identity (package path plus type name).
//
// The installed callback defers straight back into the generic traversal
// (saveValue/loadValue), so T needs no hand-written marshaling code to
// participate in polymorphism — this is the Go shape of spec.md §4.4's "if
// the element type is reflectable, save/load the pointee by value" fallback,
// generalized to every category the engine classifies, not just reflectable
// aggregates. Call it once, typically from an init function, before any
// Shared[B] holding a T is saved or loaded.
func Register[T any]() {
	var zero T
	name := typeIdentity(reflect.TypeOf(zero))

	registry.RegisterForAllFormats(name, func(node archive.Node, format registry.Format, value any, isLoad bool) error {
		ctx := &context{format: format, maxDepth: defaultMaxDepth}

		if isLoad {
			var v T
			if err := loadValue(ctx, node, reflect.ValueOf(&v).Elem(), ""); err != nil {
				return err
			}
			reflect.ValueOf(value).Elem().Set(reflect.ValueOf(v))
			return nil
		}

		return saveValue(ctx, node, reflect.ValueOf(value), "")
	})
}

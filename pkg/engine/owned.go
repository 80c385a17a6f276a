package engine

import (
	"reflect"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/desc"
	"github.com/flier/archiver/pkg/registry"
	"github.com/flier/archiver/pkg/xerrors"
)

// valueField returns the "Value" field that every classify.Marker owning
// type (opt.Option, box.Box, shared.Shared) exposes: the load-bearing field
// classify.classifyMarked reflects on to compute Plan.Elem.
func valueField(v reflect.Value) reflect.Value {
	return v.FieldByName("Value")
}

func saveOptional(ctx *context, node archive.Node, v reflect.Value, path string) error {
	field := valueField(v)
	hasValue := !field.IsNil()

	size := 1
	if hasValue {
		size = 2
	}
	if err := node.Resize(size); err != nil {
		return err
	}

	flagChild, err := node.ChildAt(0)
	if err != nil {
		return err
	}
	if err := flagChild.Push(hasValue); err != nil {
		return err
	}

	if hasValue {
		valChild, err := node.ChildAt(1)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, valChild, field.Elem(), path+".Value"); err != nil {
			return err
		}
	}

	return nil
}

func loadOptional(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n, err := node.Size()
	if err != nil {
		return err
	}
	if n < 1 {
		return xerrors.New(xerrors.SizeMismatch, path)
	}

	flagChild, err := node.ChildAt(0)
	if err != nil {
		return err
	}
	var hasValue bool
	if err := flagChild.Pop(&hasValue); err != nil {
		return err
	}

	field := valueField(v)

	if !hasValue {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if n < 2 {
		return xerrors.New(xerrors.SizeMismatch, path)
	}

	valChild, err := node.ChildAt(1)
	if err != nil {
		return err
	}

	elem := reflect.New(field.Type().Elem())
	if err := loadValue(ctx, valChild, elem.Elem(), path+".Value"); err != nil {
		return err
	}
	field.Set(elem)

	return nil
}

func saveVariant(ctx *context, node archive.Node, v reflect.Value, path string) error {
	d := desc.OfType(v.Type())

	active := -1
	for i, f := range d.Fields {
		if !f.Get(v).IsNil() {
			active = i
			break
		}
	}

	if active < 0 {
		return xerrors.New(xerrors.InvalidVariant, path)
	}

	if err := node.PushIndex("Index", active); err != nil {
		return err
	}

	child, err := node.Child("Value")
	if err != nil {
		return err
	}

	return saveValue(ctx, child, d.Fields[active].Get(v).Elem(), path+".Value")
}

func loadVariant(ctx *context, node archive.Node, v reflect.Value, path string) error {
	d := desc.OfType(v.Type())

	tag, err := node.PopIndex("Index")
	if err != nil {
		return err
	}
	if tag < 0 || tag >= len(d.Fields) {
		return xerrors.New(xerrors.InvalidIndex, path)
	}

	for _, f := range d.Fields {
		f.Get(v).Set(reflect.Zero(f.Get(v).Type()))
	}

	child, err := node.Child("Value")
	if err != nil {
		return err
	}

	field := d.Fields[tag].Get(v)
	elem := reflect.New(field.Type().Elem())
	if err := loadValue(ctx, child, elem.Elem(), path+".Value"); err != nil {
		return err
	}
	field.Set(elem)

	return nil
}

func saveOwnedUnique(ctx *context, node archive.Node, v reflect.Value, path string) error {
	field := valueField(v)
	if field.IsNil() {
		return xerrors.New(xerrors.NullPointer, path)
	}

	return saveValue(ctx, node, field.Elem(), path)
}

func loadOwnedUnique(ctx *context, node archive.Node, v reflect.Value, path string) error {
	field := valueField(v)

	elem := reflect.New(field.Type().Elem())
	if err := loadValue(ctx, node, elem.Elem(), path); err != nil {
		return err
	}
	field.Set(elem)

	return nil
}

// saveOwnedShared writes the null sentinel for an empty handle, or the
// pointee's type-identity string followed by its serialized form for a
// populated one. The pointee is always resolved through [registry.Run]: the
// concrete type must have been installed with [Register] (directly, or via
// whatever higher-level registration call wraps it), since nothing short of
// a name→type mapping lets the load side reconstruct an arbitrary concrete
// type from the bare string an archive carries (spec.md §4.4).
func saveOwnedShared(ctx *context, node archive.Node, v reflect.Value, path string) error {
	field := valueField(v)

	if isNilValue(field) {
		return node.PushClassName(NullSentinel)
	}

	concrete := reflect.ValueOf(field.Interface())
	for concrete.Kind() == reflect.Ptr {
		concrete = concrete.Elem()
	}

	name := typeIdentity(concrete.Type())
	if err := node.PushClassName(name); err != nil {
		return err
	}

	return registry.Run(ctx.format, name, node, field.Interface(), false)
}

func loadOwnedShared(ctx *context, node archive.Node, v reflect.Value, path string) error {
	name, err := node.PopClassName()
	if err != nil {
		return err
	}

	field := valueField(v)

	if name == "" || name == NullSentinel {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if !registry.Has(ctx.format, name) {
		return xerrors.New(xerrors.RegistryNotFound, name)
	}

	return registry.Run(ctx.format, name, node, field.Addr().Interface(), true)
}

func isNilValue(v reflect.Value) bool {
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

func typeIdentity(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}

	return t.Name()
}

package engine

import (
	"reflect"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/desc"
	"github.com/flier/archiver/pkg/xerrors"
)

func saveAggregate(ctx *context, node archive.Node, v reflect.Value, path string) error {
	if err := node.PushClassName(typeIdentity(v.Type())); err != nil {
		return err
	}

	d := desc.OfType(v.Type())

	for _, f := range d.Fields {
		if f.IsPlaceholder() {
			continue
		}

		child, err := node.Child(f.Name)
		if err != nil {
			return err
		}

		if err := saveValue(ctx, child, f.Get(v), path+"."+f.Name); err != nil {
			return err
		}
	}

	return nil
}

func loadAggregate(ctx *context, node archive.Node, v reflect.Value, path string) error {
	name, err := node.PopClassName()
	if err != nil {
		return err
	}

	if name == "" {
		return xerrors.New(xerrors.MissingField, path)
	}

	d := desc.OfType(v.Type())

	for _, f := range d.Fields {
		if f.IsPlaceholder() {
			continue
		}

		child, err := node.Child(f.Name)
		if err != nil {
			return err
		}

		if err := loadValue(ctx, child, f.Get(v), path+"."+f.Name); err != nil {
			return err
		}
	}

	if init, ok := v.Addr().Interface().(desc.Initializer); ok {
		if err := init.AfterLoad(); err != nil {
			return err
		}
	}

	return nil
}

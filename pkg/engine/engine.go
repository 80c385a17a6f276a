// Package engine implements the archiver traversal engine (C4): the
// recursive save/load walk that classifies each value via pkg/classify,
// stores/reads primitives and structure through an archive.Node, consults
// pkg/desc for aggregate and tuple member order, and defers to pkg/registry
// for owned-shared values behind a base abstraction.
package engine

import (
	"encoding"
	"reflect"
	"strconv"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/classify"
	"github.com/flier/archiver/pkg/desc"
	"github.com/flier/archiver/pkg/registry"
	"github.com/flier/archiver/pkg/xerrors"
)

// NullSentinel is the textual empty-sentinel written as the class-name
// attribute of a null owned-shared handle (spec.md §4.4/GLOSSARY).
const NullSentinel = "null object!"

const defaultMaxDepth = 1000

// context carries per-call traversal state: the target format (for registry
// lookups) and the recursion depth cap.
type context struct {
	format   registry.Format
	depth    int
	maxDepth int
}

func (c *context) enter(path string) error {
	c.depth++
	if c.depth > c.maxDepth {
		return xerrors.New(xerrors.RecursionLimit, path)
	}
	return nil
}

func (c *context) leave() { c.depth-- }

// Save writes value into node under the given format.
func Save[T any](node archive.Node, format registry.Format, value T, opts ...Option) error {
	ctx := &context{format: format, maxDepth: defaultMaxDepth}
	for _, o := range opts {
		o(ctx)
	}

	return saveValue(ctx, node, reflect.ValueOf(value), "")
}

// Load reads node into *value under the given format.
func Load[T any](node archive.Node, format registry.Format, value *T, opts ...Option) error {
	ctx := &context{format: format, maxDepth: defaultMaxDepth}
	for _, o := range opts {
		o(ctx)
	}

	return loadValue(ctx, node, reflect.ValueOf(value).Elem(), "")
}

func saveValue(ctx *context, node archive.Node, v reflect.Value, path string) error {
	if err := ctx.enter(path); err != nil {
		return err
	}
	defer ctx.leave()

	plan := classify.OfType(v.Type())

	switch plan.Type {
	case classify.Primitive:
		return savePrimitive(v, node)
	case classify.Sequence:
		return saveSequence(ctx, node, v, path)
	case classify.Array:
		return saveArray(ctx, node, v, path)
	case classify.Map:
		return saveMap(ctx, node, v, path)
	case classify.Set:
		return saveSet(ctx, node, v, path)
	case classify.Tuple:
		return saveTuple(ctx, node, v, path)
	case classify.Optional:
		return saveOptional(ctx, node, v, path)
	case classify.Variant:
		return saveVariant(ctx, node, v, path)
	case classify.OwnedUnique:
		return saveOwnedUnique(ctx, node, v, path)
	case classify.OwnedShared:
		return saveOwnedShared(ctx, node, v, path)
	case classify.Aggregate:
		return saveAggregate(ctx, node, v, path)
	case classify.Pointer:
		return saveValue(ctx, node, v.Elem(), path)
	default:
		return xerrors.New(xerrors.Unsupported, path)
	}
}

func loadValue(ctx *context, node archive.Node, v reflect.Value, path string) error {
	if err := ctx.enter(path); err != nil {
		return err
	}
	defer ctx.leave()

	plan := classify.OfType(v.Type())

	switch plan.Type {
	case classify.Primitive:
		return loadPrimitive(v, node)
	case classify.Sequence:
		return loadSequence(ctx, node, v, path)
	case classify.Array:
		return loadArray(ctx, node, v, path)
	case classify.Map:
		return loadMap(ctx, node, v, path)
	case classify.Set:
		return loadSet(ctx, node, v, path)
	case classify.Tuple:
		return loadTuple(ctx, node, v, path)
	case classify.Optional:
		return loadOptional(ctx, node, v, path)
	case classify.Variant:
		return loadVariant(ctx, node, v, path)
	case classify.OwnedUnique:
		return loadOwnedUnique(ctx, node, v, path)
	case classify.OwnedShared:
		return loadOwnedShared(ctx, node, v, path)
	case classify.Aggregate:
		return loadAggregate(ctx, node, v, path)
	case classify.Pointer:
		return xerrors.New(xerrors.Unsupported, path)
	default:
		return xerrors.New(xerrors.Unsupported, path)
	}
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func savePrimitive(v reflect.Value, node archive.Node) error {
	if v.Type().Kind() == reflect.Struct && v.Type().NumField() == 0 {
		return node.Push(struct{}{})
	}

	if tm, ok := textMarshalable(v); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		return node.Push(string(b))
	}

	return node.Push(v.Interface())
}

func loadPrimitive(v reflect.Value, node archive.Node) error {
	if v.Type().Kind() == reflect.Struct && v.Type().NumField() == 0 {
		return node.Pop(&struct{}{})
	}

	if v.CanAddr() {
		if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			var s string
			if err := node.Pop(&s); err != nil {
				return err
			}
			return tu.UnmarshalText([]byte(s))
		}
	}

	return node.Pop(v.Addr().Interface())
}

func textMarshalable(v reflect.Value) (encoding.TextMarshaler, bool) {
	if v.Type().Implements(textMarshalerType) {
		tm, _ := v.Interface().(encoding.TextMarshaler)
		return tm, tm != nil
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		tm, _ := v.Addr().Interface().(encoding.TextMarshaler)
		return tm, tm != nil
	}
	return nil, false
}

func saveSequence(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n := v.Len()
	if err := node.Resize(n); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, child, v.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func loadSequence(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n, err := node.Size()
	if err != nil {
		return err
	}

	out := reflect.MakeSlice(v.Type(), n, n)

	for i := 0; i < n; i++ {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := loadValue(ctx, child, out.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}

	v.Set(out)

	return nil
}

func saveArray(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n := v.Len()
	if err := node.Resize(n); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, child, v.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func loadArray(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n, err := node.Size()
	if err != nil {
		return err
	}

	if n != v.Len() {
		return xerrors.New(xerrors.SizeMismatch, path)
	}

	for i := 0; i < n; i++ {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := loadValue(ctx, child, v.Index(i), indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func saveMap(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n := v.Len()
	if err := node.Resize(2 * n); err != nil {
		return err
	}

	i := 0
	for _, k := range v.MapKeys() {
		keyChild, err := node.ChildAt(2 * i)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, keyChild, k, indexPath(path, 2*i)); err != nil {
			return err
		}

		valChild, err := node.ChildAt(2*i + 1)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, valChild, v.MapIndex(k), indexPath(path, 2*i+1)); err != nil {
			return err
		}

		i++
	}

	return nil
}

func loadMap(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n, err := node.Size()
	if err != nil {
		return err
	}

	if n%2 != 0 {
		return xerrors.New(xerrors.SizeMismatch, path)
	}

	t := v.Type()
	out := reflect.MakeMapWithSize(t, n/2)

	for i := 0; i < n; i += 2 {
		keyChild, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		key := reflect.New(t.Key()).Elem()
		if err := loadValue(ctx, keyChild, key, indexPath(path, i)); err != nil {
			return err
		}

		valChild, err := node.ChildAt(i + 1)
		if err != nil {
			return err
		}
		val := reflect.New(t.Elem()).Elem()
		if err := loadValue(ctx, valChild, val, indexPath(path, i+1)); err != nil {
			return err
		}

		out.SetMapIndex(key, val)
	}

	v.Set(out)

	return nil
}

func saveSet(ctx *context, node archive.Node, v reflect.Value, path string) error {
	keys := v.MapKeys()
	if err := node.Resize(len(keys)); err != nil {
		return err
	}

	for i, k := range keys {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, child, k, indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func loadSet(ctx *context, node archive.Node, v reflect.Value, path string) error {
	n, err := node.Size()
	if err != nil {
		return err
	}

	t := v.Type()
	out := reflect.MakeMapWithSize(t, n)
	empty := reflect.New(t.Elem()).Elem()

	for i := 0; i < n; i++ {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		key := reflect.New(t.Key()).Elem()
		if err := loadValue(ctx, child, key, indexPath(path, i)); err != nil {
			return err
		}
		out.SetMapIndex(key, empty)
	}

	v.Set(out)

	return nil
}

func saveTuple(ctx *context, node archive.Node, v reflect.Value, path string) error {
	d := desc.OfType(v.Type())
	if err := node.Resize(len(d.Fields)); err != nil {
		return err
	}

	for i, f := range d.Fields {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := saveValue(ctx, child, f.Get(v), indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func loadTuple(ctx *context, node archive.Node, v reflect.Value, path string) error {
	d := desc.OfType(v.Type())

	n, err := node.Size()
	if err != nil {
		return err
	}
	if n != len(d.Fields) {
		return xerrors.New(xerrors.SizeMismatch, path)
	}

	for i, f := range d.Fields {
		child, err := node.ChildAt(i)
		if err != nil {
			return err
		}
		if err := loadValue(ctx, child, f.Get(v), indexPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

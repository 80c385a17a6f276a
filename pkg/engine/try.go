package engine

import (
	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/registry"
	"github.com/flier/archiver/pkg/res"
)

// TrySave is Save, returning a res.Result instead of a bare error, for
// callers that prefer to chain over branching on err != nil.
func TrySave[T any](node archive.Node, format registry.Format, value T, opts ...Option) res.Result[struct{}] {
	return res.Wrap(struct{}{}, Save(node, format, value, opts...))
}

// TryLoad is Load, returning the loaded value as a res.Result[T] instead of
// filling a *T and returning a bare error.
func TryLoad[T any](node archive.Node, format registry.Format, opts ...Option) res.Result[T] {
	var value T
	err := Load(node, format, &value, opts...)
	return res.Wrap(value, err)
}

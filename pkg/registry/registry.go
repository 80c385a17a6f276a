// Package registry implements the archiver polymorphic registry (C5): a
// process-wide, per-format table from a type-identity string to a callback
// that can save or load a concrete value behind its base archive.Node
// interface.
//
// One registry exists per format; [RegisterForAllFormats] installs a type's
// callback in all three at once, the same shape as registering a single
// concrete type for every wire encoding it needs to round-trip through.
package registry

import (
	"github.com/flier/archiver/internal/debug"
	"github.com/flier/archiver/internal/xsync"
	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/xerrors"
)

// Format names a registry instance. There is exactly one registry per
// format, never per type.
type Format int

const (
	JSON Format = iota
	XML
	Binary
	numFormats
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case XML:
		return "xml"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Callback saves or loads a concrete value registered under a base
// abstraction (pkg/shared.Shared).
//
// format is the format this invocation is running under — a callback
// registered via [RegisterForAllFormats] is shared across all three
// registries, so it needs this to recurse correctly into any nested
// owned-shared values of its own.
//
// The two directions pass value differently, matching what pkg/engine has
// on hand at each point in the owned-shared save/load algorithm: on save,
// value is the dynamic value currently held by the Shared's interface field
// (read-only, no mutation expected); on load, value is a pointer to that
// same interface field, and the callback is responsible for constructing
// the concrete type, recursively loading it (typically via [engine.Load]),
// and storing it back through the pointer.
type Callback func(node archive.Node, format Format, value any, isLoad bool) error

var registries [numFormats]*xsync.Map[string, Callback]

func init() {
	for i := range registries {
		registries[i] = &xsync.Map[string, Callback]{}
	}
}

// Register installs cb under name in the given format's registry.
//
// Registration is one-time per (name, format): the first registration wins.
// A second registration of the same key is logged as a warning via
// [debug.Log] and otherwise ignored, rather than rejected outright, since
// registration typically happens from package init order that a caller does
// not fully control.
func Register(format Format, name string, cb Callback) {
	t := registries[format]

	if _, exists := t.Load(name); exists {
		debug.Log(nil, "Register", "duplicate registration of %q for format %s ignored", name, format)
		return
	}

	t.LoadOrStore(name, func() Callback { return cb })
}

// RegisterForAllFormats installs cb under name in all three format
// registries at once.
func RegisterForAllFormats(name string, cb Callback) {
	for f := Format(0); f < numFormats; f++ {
		Register(f, name, cb)
	}
}

// Has reports whether name is registered for format.
func Has(format Format, name string) bool {
	_, ok := registries[format].Load(name)
	return ok
}

// Run invokes the registered callback for name under format.
func Run(format Format, name string, node archive.Node, value any, isLoad bool) error {
	cb, ok := registries[format].Load(name)
	if !ok {
		return xerrors.New(xerrors.RegistryNotFound, name)
	}

	return cb(node, format, value, isLoad)
}

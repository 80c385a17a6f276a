// Package archive defines the archiver adapter (C2): a uniform,
// key/index-addressable tree API that each backing (ajson, axml, abin)
// implements over its own representation, per spec.md §4.2's operation
// table.
package archive

// Primitive is the set of value kinds a Node can push/pop directly: the
// spec.md §4.2 primitive encoding contract. bool/int64/uint64/float64/string
// cover every arithmetic width by widening; byte-stream backings narrow on
// the way out if the static type calls for it.
type Primitive any

// Node is one addressable point in an archive tree.
//
// Every operation mirrors spec.md §4.2's table. Implementations: ajson
// (key-value tree), axml (tagged tree), abin (flattened byte stream).
type Node interface {
	// Push stores v as this node's primitive payload.
	Push(v Primitive) error
	// Pop reads this node's primitive payload into v, which must be a
	// pointer to one of the types Primitive allows.
	Pop(v Primitive) error

	// PushClassName attaches the type-identity string s as this node's type
	// attribute.
	PushClassName(s string) error
	// PopClassName reads the type attribute, or "" if absent.
	PopClassName() (string, error)

	// PushIndex attaches a named small-integer attribute (used for the
	// variant tag).
	PushIndex(key string, i int) error
	// PopIndex reads a named small-integer attribute.
	PopIndex(key string) (int, error)

	// Child obtains (creating if absent on writes) the child addressed by a
	// textual name.
	Child(name string) (Node, error)
	// ChildAt obtains the i-th positional child.
	ChildAt(i int) (Node, error)

	// Resize declares that this node will contain n ordered children.
	Resize(n int) error
	// Size reads the declared child count.
	Size() (int, error)
}

// Package ajson implements the archive.Node adapter over a JSON-shaped tree:
// objects are ordered key/value pairs, arrays are ordered slices, and leaves
// are JSON scalars.
//
// Member order is preserved on both save and load, which encoding/json's own
// map-based unmarshaling does not guarantee, so objects are backed by an
// ordered slice of pairs rather than a Go map. Parsing walks the stdlib
// tokenizer ([json.Decoder.Token]) instead of unmarshaling into map[string]any,
// specifically to keep that order.
package ajson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/xerrors"
)

// pair is one ordered object member.
type pair struct {
	Key   string
	Value *Node
}

// classKey is the reserved member name the JSON-shaped backing folds the
// type-identity attribute into, per
// spec.md §3's "attributes folded in as named children" rule.
const classKey = "Class"

// Node is a JSON-shaped archive.Node: exactly one of scalar/members/elems is
// meaningful at a time, matching the dynamic nature of a JSON value.
type Node struct {
	scalar   any // nil, bool, json.Number, or string
	hasValue bool
	isArray  bool
	members  []pair
	elems    []*Node
}

var _ archive.Node = (*Node)(nil)

// New returns the root of a fresh, empty tree.
func New() *Node { return &Node{} }

// Parse decodes JSON text into a tree of Nodes, preserving member order.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseValue(dec)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.Decode, "", err)
	}

	return n, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)

				child, err := parseValue(dec)
				if err != nil {
					return nil, err
				}

				n.members = append(n.members, pair{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{isArray: true}
			for dec.More() {
				child, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				n.elems = append(n.elems, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("ajson: unexpected delimiter %v", t)
		}
	default:
		return &Node{scalar: tok, hasValue: true}, nil
	}
}

// MarshalJSON renders this tree as standard JSON text.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) write(buf *bytes.Buffer) error {
	switch {
	case n.isArray:
		buf.WriteByte('[')
		for i, e := range n.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case n.members != nil:
		buf.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		b, err := json.Marshal(n.scalar)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

func (n *Node) Push(v archive.Primitive) error {
	switch x := v.(type) {
	case nil, struct{}:
		n.scalar = nil
	case bool, string:
		n.scalar = x
	case float32:
		n.scalar = json.Number(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		n.scalar = json.Number(strconv.FormatFloat(x, 'g', -1, 64))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n.scalar = json.Number(fmt.Sprintf("%d", x))
	default:
		return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("ajson: cannot push %T", v))
	}
	n.hasValue = true
	return nil
}

func (n *Node) Pop(v archive.Primitive) error {
	if !n.hasValue {
		return xerrors.New(xerrors.MissingField, "")
	}
	return assign(n.scalar, v)
}

func assign(scalar any, dst archive.Primitive) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: Pop target must be a non-nil pointer, got %T", dst))
	}
	elem := rv.Elem()

	if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
		return nil // empty-sum placeholder: no payload to assign
	}

	switch elem.Kind() {
	case reflect.Bool:
		b, ok := scalar.(bool)
		if !ok {
			return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: expected bool, got %T", scalar))
		}
		elem.SetBool(b)
	case reflect.String:
		s, ok := scalar.(string)
		if !ok {
			return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: expected string, got %T", scalar))
		}
		elem.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		num, ok := scalar.(json.Number)
		if !ok {
			return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: expected number, got %T", scalar))
		}
		i, err := num.Int64()
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		num, ok := scalar.(json.Number)
		if !ok {
			return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: expected number, got %T", scalar))
		}
		i, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetUint(i)
	case reflect.Float32, reflect.Float64:
		num, ok := scalar.(json.Number)
		if !ok {
			return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("ajson: expected number, got %T", scalar))
		}
		f, err := num.Float64()
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetFloat(f)
	default:
		return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("ajson: cannot pop into %s", elem.Kind()))
	}

	return nil
}

// PushClassName folds the type attribute in as an ordinary member named
// "Class", per spec.md §3/§6.
func (n *Node) PushClassName(s string) error {
	child, err := n.Child(classKey)
	if err != nil {
		return err
	}
	return child.Push(s)
}

func (n *Node) PopClassName() (string, error) {
	for _, m := range n.members {
		if m.Key == classKey {
			var s string
			if err := m.Value.Pop(&s); err != nil {
				return "", err
			}
			return s, nil
		}
	}
	return "", nil
}

// PushIndex folds a named small-integer attribute in as an ordinary member.
func (n *Node) PushIndex(key string, i int) error {
	child, err := n.Child(key)
	if err != nil {
		return err
	}
	return child.Push(int64(i))
}

func (n *Node) PopIndex(key string) (int, error) {
	for _, m := range n.members {
		if m.Key == key {
			var i int64
			if err := m.Value.Pop(&i); err != nil {
				return 0, err
			}
			return int(i), nil
		}
	}
	return 0, xerrors.New(xerrors.MissingField, key)
}

func (n *Node) Child(name string) (archive.Node, error) {
	for _, m := range n.members {
		if m.Key == name {
			return m.Value, nil
		}
	}
	child := &Node{}
	n.members = append(n.members, pair{Key: name, Value: child})
	return child, nil
}

func (n *Node) ChildAt(i int) (archive.Node, error) {
	if i < 0 || i >= len(n.elems) {
		return nil, xerrors.New(xerrors.InvalidIndex, strconv.Itoa(i))
	}
	return n.elems[i], nil
}

func (n *Node) Resize(size int) error {
	n.isArray = true
	elems := make([]*Node, size)
	for i := range elems {
		elems[i] = &Node{}
	}
	n.elems = elems
	return nil
}

func (n *Node) Size() (int, error) {
	if n.isArray {
		return len(n.elems), nil
	}
	return len(n.members), nil
}

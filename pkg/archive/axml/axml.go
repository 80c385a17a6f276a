// Package axml implements the archive.Node adapter over a tagged-element
// tree: each Node is an element, named fields become child elements, the
// type identity and variant tag become attributes, and scalar values become
// element character data.
//
// It builds directly on encoding/xml's token-level Encoder/Decoder rather
// than its struct-tag-driven Marshal/Unmarshal, since a Node's shape is only
// known at traversal time, not at compile time.
package axml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"reflect"
	"strconv"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/xerrors"
)

const (
	classAttr = "class"
	sizeAttr  = "size"
)

// defaultRootTag names the root element when no [WithRootTag] option is given.
const defaultRootTag = "value"

// Option configures the root element name written by [Node.WriteXML];
// [Parse] accepts any root element name.
type Option func(*options)

type options struct {
	rootTag string
}

// WithRootTag overrides the default root element name ("value").
func WithRootTag(name string) Option {
	return func(o *options) { o.rootTag = name }
}

func resolve(opts []Option) options {
	o := options{rootTag: defaultRootTag}
	for _, f := range opts {
		f(&o)
	}
	return o
}

type element struct {
	Name string
	Node *Node
}

// Node is a tagged-tree archive.Node backed by an XML element.
type Node struct {
	text     string
	hasValue bool
	class    string
	index    map[string]int
	size     int
	hasSize  bool
	children []element
}

var _ archive.Node = (*Node)(nil)

// New returns a fresh, empty tree.
func New() *Node { return &Node{} }

// Parse decodes XML text, rooted at a single element, into a tree of Nodes.
func Parse(data []byte, opts ...Option) (*Node, error) {
	resolve(opts) // root tag isn't load-bearing for decode: any root name is accepted

	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, xerrors.Wrap(xerrors.Decode, "", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			n, err := parseElement(dec, start)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.Decode, "", err)
			}
			return n, nil
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (*Node, error) {
	n := &Node{}

	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case classAttr:
			n.class = attr.Value
		case sizeAttr:
			size, err := strconv.Atoi(attr.Value)
			if err != nil {
				return nil, err
			}
			n.size = size
			n.hasSize = true
		default:
			idx, err := strconv.Atoi(attr.Value)
			if err != nil {
				continue
			}
			if n.index == nil {
				n.index = make(map[string]int)
			}
			n.index[attr.Name.Local] = idx
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, element{Name: t.Name.Local, Node: child})
		case xml.CharData:
			n.text += string(t)
			n.hasValue = true
		case xml.EndElement:
			return n, nil
		}
	}
}

// WriteXML renders this tree as an XML document.
func (n *Node) WriteXML(opts ...Option) ([]byte, error) {
	o := resolve(opts)

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	if err := n.encode(enc, o.rootTag); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (n *Node) encode(enc *xml.Encoder, name string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	if n.class != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: classAttr}, Value: n.class})
	}
	if n.hasSize {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: sizeAttr}, Value: strconv.Itoa(n.size)})
	}
	for k, v := range n.index {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: strconv.Itoa(v)})
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if n.hasValue {
		if err := enc.EncodeToken(xml.CharData([]byte(n.text))); err != nil {
			return err
		}
	}

	for _, c := range n.children {
		if err := c.Node.encode(enc, c.Name); err != nil {
			return err
		}
	}

	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func (n *Node) Push(v archive.Primitive) error {
	switch x := v.(type) {
	case nil, struct{}:
		n.text = ""
	case bool:
		n.text = strconv.FormatBool(x)
	case string:
		n.text = x
	case float32:
		n.text = strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		n.text = strconv.FormatFloat(x, 'g', -1, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n.text = fmt.Sprintf("%d", x)
	default:
		return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("axml: cannot push %T", v))
	}
	n.hasValue = true
	return nil
}

func (n *Node) Pop(v archive.Primitive) error {
	if !n.hasValue {
		return xerrors.New(xerrors.MissingField, "")
	}
	return assignText(n.text, v)
}

func assignText(text string, dst archive.Primitive) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("axml: Pop target must be a non-nil pointer, got %T", dst))
	}
	elem := rv.Elem()

	if elem.Kind() == reflect.Struct && elem.NumField() == 0 {
		return nil // empty-sum placeholder: no payload to assign
	}

	switch elem.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetBool(b)
	case reflect.String:
		elem.SetString(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetUint(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		elem.SetFloat(f)
	default:
		return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("axml: cannot pop into %s", elem.Kind()))
	}

	return nil
}

func (n *Node) PushClassName(s string) error {
	n.class = s
	return nil
}

func (n *Node) PopClassName() (string, error) {
	return n.class, nil
}

func (n *Node) PushIndex(key string, i int) error {
	if n.index == nil {
		n.index = make(map[string]int)
	}
	n.index[key] = i
	return nil
}

func (n *Node) PopIndex(key string) (int, error) {
	i, ok := n.index[key]
	if !ok {
		return 0, xerrors.New(xerrors.MissingField, key)
	}
	return i, nil
}

func (n *Node) Child(name string) (archive.Node, error) {
	for _, c := range n.children {
		if c.Name == name {
			return c.Node, nil
		}
	}
	child := &Node{}
	n.children = append(n.children, element{Name: name, Node: child})
	return child, nil
}

// ChildAt returns the i-th positional child element, regardless of name.
//
// On load, [Resize] is not called (the element count is simply however many
// child elements were parsed); a declared size attribute greater than the
// number of children actually present is a SizeMismatch per the tagged-tree
// trust-on-read contract.
func (n *Node) ChildAt(i int) (archive.Node, error) {
	if n.hasSize && i >= len(n.children) && i < n.size {
		return nil, xerrors.New(xerrors.SizeMismatch, strconv.Itoa(i))
	}
	if i < 0 || i >= len(n.children) {
		return nil, xerrors.New(xerrors.InvalidIndex, strconv.Itoa(i))
	}
	return n.children[i].Node, nil
}

func (n *Node) Resize(size int) error {
	n.hasSize = true
	n.size = size

	children := make([]element, size)
	for i := range children {
		children[i] = element{Name: "item", Node: &Node{}}
	}
	n.children = children

	return nil
}

func (n *Node) Size() (int, error) {
	if n.hasSize {
		if len(n.children) < n.size {
			return 0, xerrors.New(xerrors.SizeMismatch, "")
		}
		return n.size, nil
	}
	return len(n.children), nil
}

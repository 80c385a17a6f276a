// Package abin implements the archive.Node adapter over a flattened byte
// stream: there are no names or indices on the wire, only the order values
// were pushed in, so every Child/ChildAt call simply continues the same
// cursor instead of addressing a distinct sub-tree.
//
// Decoding is built on [untrust.Reader], goutil's panic-free bounds-checked
// cursor, and string/byte payloads are decoded as [zc.View]s over the input
// buffer instead of being copied, exactly the zero-copy use [zc] already
// existed for.
package abin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/flier/archiver/pkg/archive"
	"github.com/flier/archiver/pkg/untrust"
	"github.com/flier/archiver/pkg/xerrors"
	"github.com/flier/archiver/pkg/zc"
)

// Wire tags for Push/Pop payloads. 0 is reserved for the empty-sum marker
// byte (struct{}), which carries no further payload.
const (
	tagEmpty byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagString
)

// Writer is a write-only abin.Node: an accumulating byte buffer.
//
// Child/ChildAt ignore their argument and return the Writer itself, since a
// flattened stream addresses position only by write order, never by name.
type Writer struct {
	buf     *bytes.Buffer
	size    int
	hasSize bool
}

var _ archive.Node = (*Writer)(nil)

// NewWriter returns a Writer over a fresh, empty buffer.
func NewWriter() *Writer { return &Writer{buf: new(bytes.Buffer)} }

// Bytes returns the accumulated wire bytes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) Push(v archive.Primitive) error {
	switch x := v.(type) {
	case nil, struct{}:
		w.buf.WriteByte(tagEmpty)
	case bool:
		w.buf.WriteByte(tagBool)
		if x {
			w.buf.WriteByte(1)
		} else {
			w.buf.WriteByte(0)
		}
	case int:
		w.pushInt(int64(x))
	case int8:
		w.pushInt(int64(x))
	case int16:
		w.pushInt(int64(x))
	case int32:
		w.pushInt(int64(x))
	case int64:
		w.pushInt(x)
	case uint:
		w.pushUint(uint64(x))
	case uint8:
		w.pushUint(uint64(x))
	case uint16:
		w.pushUint(uint64(x))
	case uint32:
		w.pushUint(uint64(x))
	case uint64:
		w.pushUint(x)
	case float32:
		w.pushFloat(float64(x))
	case float64:
		w.pushFloat(x)
	case string:
		w.pushString(x)
	default:
		return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: cannot push %T", v))
	}
	return nil
}

func (w *Writer) pushInt(v int64) {
	w.buf.WriteByte(tagInt)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *Writer) pushUint(v uint64) {
	w.buf.WriteByte(tagUint)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *Writer) pushFloat(v float64) {
	w.buf.WriteByte(tagFloat)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf.Write(tmp[:])
}

func (w *Writer) pushString(s string) {
	w.buf.WriteByte(tagString)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	w.buf.Write(tmp[:n])
	w.buf.WriteString(s)
}

func (w *Writer) Pop(archive.Primitive) error {
	return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Writer is write-only"))
}

func (w *Writer) PushClassName(s string) error {
	w.pushString(s)
	return nil
}

func (w *Writer) PopClassName() (string, error) {
	return "", xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Writer is write-only"))
}

func (w *Writer) PushIndex(_ string, i int) error {
	if i < 0 || i > math.MaxUint8 {
		return xerrors.New(xerrors.InvalidIndex, strconv.Itoa(i))
	}
	w.buf.WriteByte(byte(i))
	return nil
}

func (w *Writer) PopIndex(string) (int, error) {
	return 0, xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Writer is write-only"))
}

func (w *Writer) Child(string) (archive.Node, error) { return w, nil }

func (w *Writer) ChildAt(int) (archive.Node, error) { return w, nil }

func (w *Writer) Resize(n int) error {
	if n < 0 || n > math.MaxUint32 {
		return xerrors.New(xerrors.SizeMismatch, "")
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	w.buf.Write(tmp[:])
	w.size, w.hasSize = n, true
	return nil
}

func (w *Writer) Size() (int, error) {
	if !w.hasSize {
		return 0, xerrors.New(xerrors.MissingField, "")
	}
	return w.size, nil
}

// Reader is a read-only abin.Node over a decoded byte stream.
//
// Like [Writer], Child/ChildAt ignore their argument and return the Reader
// itself: position is the only addressing the wire format has.
type Reader struct {
	r   *untrust.Reader
	src *byte // first byte of the original input, for zc.View decoding
}

var _ archive.Node = (*Reader)(nil)

// NewReader returns a Reader over previously-written abin bytes.
func NewReader(data []byte) *Reader {
	rd := &Reader{r: untrust.NewReader(untrust.Input(data))}
	if len(data) > 0 {
		rd.src = &data[0]
	}
	return rd
}

func (r *Reader) Push(archive.Primitive) error {
	return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Reader is read-only"))
}

func (r *Reader) Pop(v archive.Primitive) error {
	tag, err := r.r.ReadByte()
	if err != nil {
		return xerrors.Wrap(xerrors.Decode, "", err)
	}

	switch tag {
	case tagEmpty:
		return nil
	case tagBool:
		b, err := r.r.ReadByte()
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		return assignBool(v, b != 0)
	case tagInt:
		n, err := r.readVarint()
		if err != nil {
			return err
		}
		return assignInt(v, n)
	case tagUint:
		n, err := r.readUvarint()
		if err != nil {
			return err
		}
		return assignUint(v, n)
	case tagFloat:
		buf, err := r.r.ReadBytes(8)
		if err != nil {
			return xerrors.Wrap(xerrors.Decode, "", err)
		}
		f := math.Float64frombits(binary.LittleEndian.Uint64(buf.AsSliceLessSafe()))
		return assignFloat(v, f)
	case tagString:
		s, err := r.readString()
		if err != nil {
			return err
		}
		return assignString(v, s)
	default:
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: unknown tag %d", tag))
	}
}

func (r *Reader) readVarint() (int64, error) {
	// untrust.Reader exposes no built-in varint reader, so walk bytes the
	// same way encoding/binary.Varint does, bounded by ReadByte's own checks.
	var raw uint64
	var shift uint
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, xerrors.Wrap(xerrors.Decode, "", err)
		}
		raw |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	x := int64(raw >> 1)
	if raw&1 != 0 {
		x = ^x
	}
	return x, nil
}

func (r *Reader) readUvarint() (uint64, error) {
	var raw uint64
	var shift uint
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, xerrors.Wrap(xerrors.Decode, "", err)
		}
		raw |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	return raw, nil
}

func (r *Reader) readString() (string, error) {
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}

	start, err := r.r.ReadBytes(int(n))
	if err != nil {
		return "", xerrors.Wrap(xerrors.Decode, "", err)
	}

	if r.src == nil || n == 0 {
		return "", nil
	}

	raw := start.AsSliceLessSafe()
	view := zc.New(r.src, &raw[0], len(raw))

	return string(view.Bytes(r.src)), nil
}

func (r *Reader) PushClassName(string) error {
	return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Reader is read-only"))
}

func (r *Reader) PopClassName() (string, error) {
	return r.readString()
}

func (r *Reader) PushIndex(string, int) error {
	return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Reader is read-only"))
}

func (r *Reader) PopIndex(string) (int, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, xerrors.Wrap(xerrors.Decode, "", err)
	}
	return int(b), nil
}

func (r *Reader) Child(string) (archive.Node, error) { return r, nil }

func (r *Reader) ChildAt(int) (archive.Node, error) { return r, nil }

func (r *Reader) Resize(int) error {
	return xerrors.Wrap(xerrors.Unsupported, "", fmt.Errorf("abin: Reader is read-only"))
}

func (r *Reader) Size() (int, error) {
	buf, err := r.r.ReadBytes(4)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.Decode, "", err)
	}
	return int(binary.LittleEndian.Uint32(buf.AsSliceLessSafe())), nil
}

func assignBool(dst archive.Primitive, v bool) error {
	p, ok := dst.(*bool)
	if !ok {
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: expected *bool, got %T", dst))
	}
	*p = v
	return nil
}

func assignString(dst archive.Primitive, v string) error {
	p, ok := dst.(*string)
	if !ok {
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: expected *string, got %T", dst))
	}
	*p = v
	return nil
}

func assignInt(dst archive.Primitive, v int64) error {
	switch p := dst.(type) {
	case *int:
		*p = int(v)
	case *int8:
		*p = int8(v)
	case *int16:
		*p = int16(v)
	case *int32:
		*p = int32(v)
	case *int64:
		*p = v
	default:
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: expected signed integer pointer, got %T", dst))
	}
	return nil
}

func assignUint(dst archive.Primitive, v uint64) error {
	switch p := dst.(type) {
	case *uint:
		*p = uint(v)
	case *uint8:
		*p = uint8(v)
	case *uint16:
		*p = uint16(v)
	case *uint32:
		*p = uint32(v)
	case *uint64:
		*p = v
	default:
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: expected unsigned integer pointer, got %T", dst))
	}
	return nil
}

func assignFloat(dst archive.Primitive, v float64) error {
	switch p := dst.(type) {
	case *float32:
		*p = float32(v)
	case *float64:
		*p = v
	default:
		return xerrors.Wrap(xerrors.Decode, "", fmt.Errorf("abin: expected float pointer, got %T", dst))
	}
	return nil
}

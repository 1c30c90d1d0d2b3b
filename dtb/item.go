package dtb

import (
	"bytes"
	"strings"

	"github.com/joshuapare/dtbkit/internal/buf"
	"github.com/joshuapare/dtbkit/internal/unsafestring"
)

// ItemKind tags the variant held by an Item.
type ItemKind uint8

const (
	ItemBeginNode ItemKind = iota + 1
	ItemProperty
	ItemEndNode
)

func (k ItemKind) String() string {
	switch k {
	case ItemBeginNode:
		return "begin-node"
	case ItemProperty:
		return "property"
	case ItemEndNode:
		return "end-node"
	default:
		return "invalid"
	}
}

// Item is one token of the structure block. Name and Value alias the blob
// the Reader was built from; they are only valid while the blob is
// unmodified.
type Item struct {
	Kind ItemKind
	// Name is the full node name (including any unit address) or the
	// property name. It is empty for ItemEndNode and for the root node.
	Name string
	// Value holds the raw property bytes. It is nil for nodes.
	Value []byte
}

func (it Item) IsBeginNode() bool { return it.Kind == ItemBeginNode }
func (it Item) IsProperty() bool  { return it.Kind == ItemProperty }
func (it Item) IsEndNode() bool   { return it.Kind == ItemEndNode }

// NodeName returns the node name without its unit address, so "uart@1000"
// yields "uart".
func (it Item) NodeName() (string, error) {
	if !it.IsBeginNode() {
		return "", ErrBadStructItemType
	}
	name, _, _ := strings.Cut(it.Name, "@")
	return name, nil
}

// UnitAddress returns the part of the node name after '@', or "".
func (it Item) UnitAddress() (string, error) {
	if !it.IsBeginNode() {
		return "", ErrBadStructItemType
	}
	_, addr, _ := strings.Cut(it.Name, "@")
	return addr, nil
}

// PropertyName returns the name of a property item.
func (it Item) PropertyName() (string, error) {
	if !it.IsProperty() {
		return "", ErrBadStructItemType
	}
	return it.Name, nil
}

// ValueBytes returns the raw value of a property item.
func (it Item) ValueBytes() ([]byte, error) {
	if !it.IsProperty() {
		return nil, ErrBadStructItemType
	}
	return it.Value, nil
}

// ValueStr decodes the value as a single NUL-terminated UTF-8 string. The
// terminator must be the last byte and the only NUL in the value.
func (it Item) ValueStr() (string, error) {
	if !it.IsProperty() {
		return "", ErrBadStructItemType
	}
	v := it.Value
	if len(v) == 0 || bytes.IndexByte(v, 0) != len(v)-1 {
		return "", ErrBadValueStr
	}
	s := v[:len(v)-1]
	if err := checkUTF8(s); err != nil {
		return "", wrapError(CodeBadStrEncoding, err)
	}
	return unsafestring.FromBytes(s), nil
}

// ValueStrList splits the value on NUL into dst[:n]. dst is never grown:
// a value holding more than cap(dst) strings fails with ErrBufferTooSmall.
// An empty value yields an empty list.
func (it Item) ValueStrList(dst []string) ([]string, error) {
	if !it.IsProperty() {
		return nil, ErrBadStructItemType
	}
	v := it.Value
	if len(v) == 0 {
		return dst[:0], nil
	}
	if v[len(v)-1] != 0 {
		return nil, ErrBadValueStr
	}
	if n := bytes.Count(v, []byte{0}); n > cap(dst) {
		return nil, ErrBufferTooSmall
	}
	dst = dst[:0]
	for len(v) > 0 {
		s, rest, _ := bytes.Cut(v, []byte{0})
		if err := checkUTF8(s); err != nil {
			return nil, wrapError(CodeBadStrEncoding, err)
		}
		dst = append(dst, unsafestring.FromBytes(s))
		v = rest
	}
	return dst, nil
}

// ValueU32List decodes the value as big-endian 32-bit cells into dst[:n].
// dst is never grown: more than cap(dst) cells fails with ErrBufferTooSmall.
func (it Item) ValueU32List(dst []uint32) ([]uint32, error) {
	if !it.IsProperty() {
		return nil, ErrBadStructItemType
	}
	v := it.Value
	if len(v)%4 != 0 {
		return nil, ErrBadU32List
	}
	n := len(v) / 4
	if n > cap(dst) {
		return nil, ErrBufferTooSmall
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = buf.U32BE(v[i*4:])
	}
	return dst, nil
}

// ValueU32 decodes a value holding exactly one cell.
func (it Item) ValueU32() (uint32, error) {
	if !it.IsProperty() {
		return 0, ErrBadStructItemType
	}
	if len(it.Value) != 4 {
		return 0, ErrBadU32List
	}
	return buf.U32BE(it.Value), nil
}

// ValueU64 decodes a value holding exactly two cells, most significant first.
func (it Item) ValueU64() (uint64, error) {
	if !it.IsProperty() {
		return 0, ErrBadStructItemType
	}
	if len(it.Value) != 8 {
		return 0, ErrBadU64
	}
	return buf.U64BE(it.Value), nil
}

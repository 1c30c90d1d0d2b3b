package dtb

import (
	"errors"
	"iter"

	"github.com/joshuapare/dtbkit/internal/buf"
	"github.com/joshuapare/dtbkit/internal/format"
	"github.com/joshuapare/dtbkit/internal/unsafestring"
)

// StructIter is a cursor over the structure block. It holds only the
// borrowed blocks and an offset, so copying a StructIter takes an
// independent snapshot of the position.
//
// The iterator is fused: after Next reports an error, including the
// expected ErrNoMoreStructItems, every later call returns the same error
// without reading the blob again.
type StructIter struct {
	structBlock  []byte
	stringsBlock []byte
	off          int
	err          error
}

// Offset returns the cursor position within the structure block.
func (it StructIter) Offset() int { return it.off }

// Next decodes the next token, skipping NOPs.
func (it *StructIter) Next() (Item, error) {
	if it.err != nil {
		return Item{}, it.err
	}
	item, err := it.next()
	if err != nil {
		it.err = err
	}
	return item, err
}

func (it *StructIter) next() (Item, error) {
	for {
		token, ok := buf.U32BEAt(it.structBlock, it.off)
		if !ok {
			return Item{}, structError(CodeUnexpectedEndOfStruct, it.off)
		}
		switch token {
		case format.TokenNop:
			it.off += format.TokenSize
		case format.TokenBeginNode:
			return it.readBeginNode()
		case format.TokenProp:
			return it.readProperty()
		case format.TokenEndNode:
			it.off += format.TokenSize
			return Item{Kind: ItemEndNode}, nil
		case format.TokenEnd:
			return Item{}, ErrNoMoreStructItems
		default:
			return Item{}, structError(CodeBadStructToken, it.off)
		}
	}
}

func (it *StructIter) readBeginNode() (Item, error) {
	nameOff := it.off + format.TokenSize
	name, ok := buf.CString(it.structBlock, nameOff)
	if !ok {
		return Item{}, structError(CodeBadNodeName, it.off)
	}
	if err := checkUTF8(name); err != nil {
		return Item{}, &Error{Code: CodeBadStrEncoding, Offset: it.off, Err: err}
	}
	it.off = format.Align4(nameOff + len(name) + 1)
	return Item{Kind: ItemBeginNode, Name: unsafestring.FromBytes(name)}, nil
}

func (it *StructIter) readProperty() (Item, error) {
	descOff := it.off + format.TokenSize
	desc, ok := buf.Slice(it.structBlock, descOff, format.PropDescSize)
	if !ok {
		return Item{}, structError(CodeUnexpectedEndOfStruct, it.off)
	}
	valueSize := buf.U32BE(desc)
	nameOff := buf.U32BE(desc[4:])

	valueOff := descOff + format.PropDescSize
	if uint64(valueSize) > uint64(len(it.structBlock)) {
		return Item{}, structError(CodeUnexpectedEndOfStruct, it.off)
	}
	value, ok := buf.Slice(it.structBlock, valueOff, int(valueSize))
	if !ok {
		return Item{}, structError(CodeUnexpectedEndOfStruct, it.off)
	}

	if uint64(nameOff) >= uint64(len(it.stringsBlock)) {
		return Item{}, structError(CodeBadPropertyName, it.off)
	}
	name, ok := buf.CString(it.stringsBlock, int(nameOff))
	if !ok {
		return Item{}, structError(CodeBadPropertyName, it.off)
	}
	if err := checkUTF8(name); err != nil {
		return Item{}, &Error{Code: CodeBadStrEncoding, Offset: it.off, Err: err}
	}

	it.off = format.Align4(valueOff + len(value))
	return Item{Kind: ItemProperty, Name: unsafestring.FromBytes(name), Value: value}, nil
}

// Err returns the error that stopped the iterator, or nil when it is still
// live or ended normally with ErrNoMoreStructItems.
func (it *StructIter) Err() error {
	if it.err == nil || errors.Is(it.err, ErrNoMoreStructItems) {
		return nil
	}
	return it.err
}

// All adapts the iterator for range-over-func. Iteration stops at the
// first error; check Err afterwards.
func (it *StructIter) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for {
			item, err := it.Next()
			if err != nil || !yield(item) {
				return
			}
		}
	}
}

// Find returns a query over the tokens following the current position.
// The receiver is copied, so the caller's cursor does not move.
func (it StructIter) Find(path string) PathIter {
	return PathIter{iter: it, path: newPathSplit(path)}
}

// First returns the first match of path after the current position.
func (it StructIter) First(path string) (Item, StructIter, error) {
	p := it.Find(path)
	return p.Next()
}

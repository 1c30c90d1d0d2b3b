package treesrc

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/dtb/printer"
	"github.com/joshuapare/dtbkit/internal/buf"
)

// ErrNoRoot is returned by FromReader for a structure block without nodes.
var ErrNoRoot = errors.New("treesrc: blob has no root node")

// FromReader rebuilds a Tree from a blob. The Tree does not alias the blob.
// Values are typed with the same guesses the printer makes, so a
// string-looking 4-byte value comes back as a string rather than a cell.
func FromReader(r dtb.Reader) (*Tree, error) {
	h := r.Header()
	t := &Tree{BootCPUID: Hex32(h.BootCPUID)}
	rsv := r.ReservedMem()
	for e := range rsv.All() {
		t.ReservedMemory = append(t.ReservedMemory, Reservation{Address: Hex64(e.Address), Size: Hex64(e.Size)})
	}

	it := r.Struct()
	var stack []*Node
	seenRoot := false
	for {
		item, err := it.Next()
		if errors.Is(err, dtb.ErrNoMoreStructItems) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("treesrc: struct offset %#x: %w", it.Offset(), err)
		}
		switch item.Kind {
		case dtb.ItemBeginNode:
			var n *Node
			if len(stack) == 0 {
				if seenRoot {
					return nil, dtb.ErrMultipleRoots
				}
				seenRoot = true
				t.Root = Node{Name: strings.Clone(item.Name)}
				n = &t.Root
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, Node{Name: strings.Clone(item.Name)})
				n = &parent.Children[len(parent.Children)-1]
			}
			stack = append(stack, n)
		case dtb.ItemProperty:
			if len(stack) == 0 {
				return nil, dtb.ErrPropertyOutsideNode
			}
			n := stack[len(stack)-1]
			n.Properties = append(n.Properties, propertyOf(item))
		case dtb.ItemEndNode:
			if len(stack) == 0 {
				return nil, dtb.ErrUnexpectedEndNode
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return nil, dtb.ErrUnbalancedNodes
	}
	if !seenRoot {
		return nil, ErrNoRoot
	}
	return t, nil
}

func propertyOf(item dtb.Item) Property {
	p := Property{Name: strings.Clone(item.Name)}
	v := item.Value
	switch printer.Classify(v) {
	case printer.KindString:
		s := string(v[:len(v)-1])
		p.String = &s
	case printer.KindStrings:
		for s := range bytes.SplitSeq(v[:len(v)-1], []byte{0}) {
			p.Strings = append(p.Strings, string(s))
		}
	case printer.KindCells:
		p.Cells = make([]Hex32, len(v)/4)
		for i := range p.Cells {
			p.Cells[i] = Hex32(buf.U32BE(v[i*4:]))
		}
	case printer.KindBytes:
		p.Bytes = hex.EncodeToString(v)
	}
	return p
}

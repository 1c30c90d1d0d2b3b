package treesrc

import (
	"encoding/hex"
	"fmt"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/format"
)

// EncodedSize returns an upper bound on the blob size Encode produces,
// assuming no property name is shared.
func (t *Tree) EncodedSize() int {
	n := format.HeaderSize + (len(t.ReservedMemory)+1)*format.ReservedEntrySize + format.TokenSize
	return n + t.Root.encodedSize()
}

func (n *Node) encodedSize() int {
	size := format.TokenSize + format.Align4(len(n.Name)+1) + format.TokenSize
	for i := range n.Properties {
		p := &n.Properties[i]
		size += format.TokenSize + format.PropDescSize + format.Align4(p.valueSize())
		size += len(p.Name) + 1
	}
	for i := range n.Children {
		size += n.Children[i].encodedSize()
	}
	return size
}

func (p *Property) valueSize() int {
	switch {
	case p.String != nil:
		return len(*p.String) + 1
	case p.Strings != nil:
		size := 0
		for _, s := range p.Strings {
			size += len(s) + 1
		}
		return size
	case p.Cells != nil:
		return 4 * len(p.Cells)
	case p.U64 != nil:
		return 8
	default:
		return hex.DecodedLen(len(p.Bytes))
	}
}

// Encode builds the blob into dst. dst needs a capacity of at least
// EncodedSize; pass nil to have a buffer of that size allocated.
func (t *Tree) Encode(dst []byte, opts dtb.WriterOptions) ([]byte, error) {
	if dst == nil {
		dst = make([]byte, 0, t.EncodedSize())
	}
	opts.BootCPUID = uint32(t.BootCPUID)
	w := dtb.NewWriter(dst, opts)
	for _, r := range t.ReservedMemory {
		if err := w.AddReservedMem(dtb.ReservedMemEntry{Address: uint64(r.Address), Size: uint64(r.Size)}); err != nil {
			return nil, fmt.Errorf("reserved-memory %#x+%#x: %w", uint64(r.Address), uint64(r.Size), err)
		}
	}
	if err := t.Root.encode(w, "/"); err != nil {
		return nil, err
	}
	return w.Finish()
}

func (n *Node) encode(w *dtb.Writer, path string) error {
	if err := w.BeginNode(n.Name); err != nil {
		return fmt.Errorf("node %s: %w", path, err)
	}
	for i := range n.Properties {
		if err := n.Properties[i].encode(w); err != nil {
			return fmt.Errorf("property %s%s: %w", path, n.Properties[i].Name, err)
		}
	}
	for i := range n.Children {
		c := &n.Children[i]
		if err := c.encode(w, path+c.Name+"/"); err != nil {
			return err
		}
	}
	if err := w.EndNode(); err != nil {
		return fmt.Errorf("node %s: %w", path, err)
	}
	return nil
}

func (p *Property) encode(w *dtb.Writer) error {
	switch {
	case p.String != nil:
		return w.PropertyString(p.Name, *p.String)
	case p.Strings != nil:
		return w.PropertyStrings(p.Name, p.Strings...)
	case p.Cells != nil:
		cells := make([]uint32, len(p.Cells))
		for i, c := range p.Cells {
			cells[i] = uint32(c)
		}
		return w.PropertyU32s(p.Name, cells...)
	case p.U64 != nil:
		return w.PropertyU64(p.Name, uint64(*p.U64))
	case p.Bytes != "":
		value, err := hex.DecodeString(p.Bytes)
		if err != nil {
			return fmt.Errorf("bytes: %w", err)
		}
		return w.Property(p.Name, value)
	default:
		return w.PropertyEmpty(p.Name)
	}
}

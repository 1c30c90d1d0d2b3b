package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/dtbkit/dtb"
)

const (
	DefaultIndentSize    = 4
	DefaultMaxDepth      = 0
	DefaultMaxValueBytes = 64
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs device tree source syntax.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 4
	IndentSize int

	// MaxDepth limits how many levels of nodes are printed below the
	// starting node (0 = unlimited). A MaxDepth of 1 prints the starting
	// node and its properties only.
	// Default: 0 (unlimited)
	MaxDepth int

	// MaxValueBytes limits how many bytes of cell and byte values are
	// displayed (text format only). Longer values are truncated. Set to 0
	// for no limit.
	// Default: 64
	MaxValueBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		IndentSize:    DefaultIndentSize,
		MaxDepth:      DefaultMaxDepth,
		MaxValueBytes: DefaultMaxValueBytes,
	}
}

// Printer renders structure-block items.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	r, _ := dtb.New(blob)
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintTree(r.Struct(), "/cpus")
func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		writer: w,
		opts:   opts,
	}
}

// PrintTree finds the first match of path after it and prints it. A node
// match is printed with its whole subtree.
func (p *Printer) PrintTree(it dtb.StructIter, path string) error {
	item, sub, err := it.First(path)
	if err != nil {
		return fmt.Errorf("find %q: %w", path, err)
	}
	if item.IsProperty() {
		return p.PrintProperty(item)
	}

	var v visitor
	switch p.opts.Format {
	case FormatJSON:
		v = &jsonVisitor{w: p.writer}
	default:
		v = &textVisitor{p: p}
	}
	if err := p.walk(item.Name, sub, v); err != nil {
		return fmt.Errorf("print %q: %w", path, err)
	}
	return v.flush()
}

// PrintProperty prints a single property item.
func (p *Printer) PrintProperty(item dtb.Item) error {
	if !item.IsProperty() {
		return dtb.ErrBadStructItemType
	}
	switch p.opts.Format {
	case FormatJSON:
		return writeJSON(p.writer, newJSONProperty(item))
	default:
		v := &textVisitor{p: p}
		v.property(0, item)
		return v.flush()
	}
}

// visitor receives the events of a subtree walk. depth is 0 for the
// starting node.
type visitor interface {
	openNode(depth int, name string)
	property(depth int, item dtb.Item)
	closeNode(depth int)
	flush() error
}

// walk emits the node named name and everything up to its END_NODE. it
// must be positioned just after the node's BEGIN_NODE.
func (p *Printer) walk(name string, it dtb.StructIter, v visitor) error {
	v.openNode(0, name)
	depth := 1
	hidden := 0
	for depth > 0 {
		item, err := it.Next()
		if err != nil {
			return err
		}
		switch {
		case hidden > 0:
			switch item.Kind {
			case dtb.ItemBeginNode:
				hidden++
			case dtb.ItemEndNode:
				hidden--
			}
		case item.IsBeginNode():
			if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
				hidden = 1
				continue
			}
			v.openNode(depth, item.Name)
			depth++
		case item.IsProperty():
			v.property(depth, item)
		case item.IsEndNode():
			depth--
			v.closeNode(depth)
		}
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "/"
	}
	return name
}

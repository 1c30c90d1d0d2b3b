package printer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/buf"
)

// textVisitor prints device tree source syntax. The first write error
// stops output and is returned by flush.
type textVisitor struct {
	p   *Printer
	err error
}

func (t *textVisitor) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.p.writer, format, args...)
}

func (t *textVisitor) indent(depth int) string {
	return strings.Repeat(" ", depth*t.p.opts.IndentSize)
}

func (t *textVisitor) openNode(depth int, name string) {
	t.printf("%s%s {\n", t.indent(depth), displayName(name))
}

func (t *textVisitor) property(depth int, item dtb.Item) {
	if len(item.Value) == 0 {
		t.printf("%s%s;\n", t.indent(depth), item.Name)
		return
	}
	t.printf("%s%s = %s;\n", t.indent(depth), item.Name, FormatValue(item.Value, t.p.opts.MaxValueBytes))
}

func (t *textVisitor) closeNode(depth int) {
	t.printf("%s};\n", t.indent(depth))
}

func (t *textVisitor) flush() error { return t.err }

// FormatValue renders v in source syntax: "a", "b" for strings, <0x1 0x2>
// for cells and [01 02 03] for anything else. Cells and bytes beyond
// maxBytes (0 = unlimited) are replaced by a trailing comment.
func FormatValue(v []byte, maxBytes int) string {
	kind := Classify(v)
	if kind == KindEmpty {
		return ""
	}
	if kind == KindString || kind == KindStrings {
		var sb strings.Builder
		for i, s := range splitStrings(v) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(s))
		}
		return sb.String()
	}

	shown := v
	if maxBytes > 0 && len(v) > maxBytes {
		shown = v[:maxBytes]
		if kind == KindCells {
			shown = v[:maxBytes&^3]
		}
	}

	var sb strings.Builder
	if kind == KindCells {
		sb.WriteByte('<')
		for i := 0; i+4 <= len(shown); i += 4 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "0x%x", buf.U32BE(shown[i:]))
		}
		sb.WriteByte('>')
	} else {
		sb.WriteByte('[')
		for i, b := range shown {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%02x", b)
		}
		sb.WriteByte(']')
	}
	if len(shown) < len(v) {
		fmt.Fprintf(&sb, " /* truncated, %d total bytes */", len(v))
	}
	return sb.String()
}

// splitStrings returns the NUL-separated strings of a string-list value.
func splitStrings(v []byte) []string {
	var out []string
	for s := range bytes.SplitSeq(v[:len(v)-1], []byte{0}) {
		out = append(out, string(s))
	}
	return out
}

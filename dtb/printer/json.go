package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joshuapare/dtbkit/dtb"
	"github.com/joshuapare/dtbkit/internal/buf"
)

// jsonNode represents a node in JSON format.
type jsonNode struct {
	Name       string         `json:"name"`
	Properties []jsonProperty `json:"properties,omitempty"`
	Children   []*jsonNode    `json:"children,omitempty"`
}

// jsonProperty represents a property in JSON format. Value holds a string,
// a list of strings, a list of cells or a hex string, depending on Type.
type jsonProperty struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

func newJSONProperty(item dtb.Item) jsonProperty {
	kind := Classify(item.Value)
	prop := jsonProperty{Name: item.Name, Type: kind.String()}
	switch kind {
	case KindString:
		prop.Value = splitStrings(item.Value)[0]
	case KindStrings:
		prop.Value = splitStrings(item.Value)
	case KindCells:
		cells := make([]uint32, len(item.Value)/4)
		for i := range cells {
			cells[i] = buf.U32BE(item.Value[i*4:])
		}
		prop.Value = cells
	case KindBytes:
		prop.Value = hex.EncodeToString(item.Value)
	}
	return prop
}

// jsonVisitor collects the walked subtree and marshals it on flush.
type jsonVisitor struct {
	w     io.Writer
	root  *jsonNode
	stack []*jsonNode
}

func (j *jsonVisitor) openNode(depth int, name string) {
	n := &jsonNode{Name: displayName(name)}
	if depth == 0 {
		j.root = n
	} else {
		parent := j.stack[len(j.stack)-1]
		parent.Children = append(parent.Children, n)
	}
	j.stack = append(j.stack, n)
}

func (j *jsonVisitor) property(_ int, item dtb.Item) {
	n := j.stack[len(j.stack)-1]
	n.Properties = append(n.Properties, newJSONProperty(item))
}

func (j *jsonVisitor) closeNode(int) {
	j.stack = j.stack[:len(j.stack)-1]
}

func (j *jsonVisitor) flush() error {
	return writeJSON(j.w, j.root)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// Package treesrc reads and writes a YAML description of a device tree.
//
// A document looks like:
//
//	boot-cpu-id: 0
//	reserved-memory:
//	  - {address: 0x80000000, size: 0x100000}
//	root:
//	  name: ""
//	  properties:
//	    - {name: model, string: "acme,board"}
//	    - {name: compatible, strings: ["acme,board", "acme,soc"]}
//	    - {name: "#address-cells", cells: [0x2]}
//	    - {name: mac, bytes: "deadbeef0001"}
//	    - {name: ranges}
//	  children:
//	    - name: memory@80000000
//	      properties:
//	        - {name: reg, u64: 0x80000000}
//
// A property carries at most one value field; none means an empty value.
package treesrc

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrAmbiguousValue is returned when a property sets more than one value field.
var ErrAmbiguousValue = errors.New("treesrc: property has more than one value")

// Tree is a whole blob: header options, reservations and the root node.
type Tree struct {
	BootCPUID      Hex32         `yaml:"boot-cpu-id,omitempty"`
	ReservedMemory []Reservation `yaml:"reserved-memory,omitempty"`
	Root           Node          `yaml:"root"`
}

// Reservation is one reserved-memory range.
type Reservation struct {
	Address Hex64 `yaml:"address"`
	Size    Hex64 `yaml:"size"`
}

// Node is a device tree node. Properties keep document order.
type Node struct {
	Name       string     `yaml:"name"`
	Properties []Property `yaml:"properties,omitempty"`
	Children   []Node     `yaml:"children,omitempty"`
}

// Property is a named value. Bytes holds hex digits.
type Property struct {
	Name    string   `yaml:"name"`
	String  *string  `yaml:"string,omitempty"`
	Strings []string `yaml:"strings,omitempty,flow"`
	Cells   []Hex32  `yaml:"cells,omitempty,flow"`
	U64     *Hex64   `yaml:"u64,omitempty"`
	Bytes   string   `yaml:"bytes,omitempty"`
}

// Hex32 is a 32-bit number written in hex.
type Hex32 uint32

// MarshalYAML implements yaml.Marshaler.
func (h Hex32) MarshalYAML() (any, error) {
	return hexNode(uint64(h)), nil
}

// Hex64 is a 64-bit number written in hex.
type Hex64 uint64

// MarshalYAML implements yaml.Marshaler.
func (h Hex64) MarshalYAML() (any, error) {
	return hexNode(uint64(h)), nil
}

func hexNode(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%#x", v)}
}

// Parse decodes a YAML document and checks that every property is
// unambiguous.
func Parse(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("treesrc: parse: %w", err)
	}
	if t.Root.Name == "/" {
		t.Root.Name = ""
	}
	if err := t.Root.check("/"); err != nil {
		return nil, err
	}
	return &t, nil
}

func (n *Node) check(path string) error {
	for _, p := range n.Properties {
		if p.valueFields() > 1 {
			return fmt.Errorf("%s%s: %w", path, p.Name, ErrAmbiguousValue)
		}
	}
	for i := range n.Children {
		if err := n.Children[i].check(path + n.Children[i].Name + "/"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Property) valueFields() int {
	n := 0
	if p.String != nil {
		n++
	}
	if p.Strings != nil {
		n++
	}
	if p.Cells != nil {
		n++
	}
	if p.U64 != nil {
		n++
	}
	if p.Bytes != "" {
		n++
	}
	return n
}

// Marshal renders t as a YAML document.
func (t *Tree) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("treesrc: marshal: %w", err)
	}
	return out, nil
}

package treesrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/dtbkit/dtb"
)

const boardYAML = `
boot-cpu-id: 1
reserved-memory:
  - {address: 0x80000000, size: 0x100000}
root:
  name: /
  properties:
    - {name: model, string: "acme,board"}
    - {name: compatible, strings: ["acme,board", "acme,soc"]}
    - {name: "#address-cells", cells: [0x2]}
    - {name: mac, bytes: "deadbeef01"}
    - {name: ranges}
  children:
    - name: memory@80000000
      properties:
        - {name: reg, u64: 0x80000000}
    - name: cpus
      children:
        - name: cpu@0
          properties:
            - {name: reg, cells: [0]}
`

func TestParseAndEncode(t *testing.T) {
	tree, err := Parse([]byte(boardYAML))
	require.NoError(t, err)
	assert.Equal(t, "", tree.Root.Name)
	assert.Equal(t, Hex32(1), tree.BootCPUID)

	blob, err := tree.Encode(nil, dtb.WriterOptions{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(blob), tree.EncodedSize())

	r, err := dtb.NewWithOptions(blob, dtb.Options{Validation: dtb.ValidateEager})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), r.Header().BootCPUID)

	rsv := r.ReservedMem()
	e, ok := rsv.Next()
	require.True(t, ok)
	assert.Equal(t, dtb.ReservedMemEntry{Address: 0x80000000, Size: 0x100000}, e)

	model, err := r.FindProperty("/model")
	require.NoError(t, err)
	s, err := model.ValueStr()
	require.NoError(t, err)
	assert.Equal(t, "acme,board", s)

	mac, err := r.FindProperty("/mac")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x01}, mac.Value)

	reg, err := r.FindProperty("/memory/reg")
	require.NoError(t, err)
	v, err := reg.ValueU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x80000000), v)

	ranges, err := r.FindProperty("/ranges")
	require.NoError(t, err)
	assert.Empty(t, ranges.Value)

	cpuReg, err := r.FindProperty("/cpus/cpu@0/reg")
	require.NoError(t, err)
	cell, err := cpuReg.ValueU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cell)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("root: {name: \"\", properties: [{name: x, string: a, cells: [1]}]}"))
	assert.ErrorIs(t, err, ErrAmbiguousValue)
	assert.Contains(t, err.Error(), "/x")

	_, err = Parse([]byte("root: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("root: {name: \"\", properties: [{name: x, cells: [0x100000000]}]}"))
	assert.Error(t, err)
}

func TestEncode_Errors(t *testing.T) {
	tree, err := Parse([]byte("root: {name: \"\", children: [{name: a, properties: [{name: p, bytes: zz}]}]}"))
	require.NoError(t, err)
	_, err = tree.Encode(nil, dtb.WriterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property /a/p")

	tree, err = Parse([]byte("reserved-memory: [{address: 0, size: 0}]\nroot: {name: \"\"}"))
	require.NoError(t, err)
	_, err = tree.Encode(nil, dtb.WriterOptions{})
	assert.ErrorIs(t, err, dtb.ErrZeroReservedMemEntry)

	tree, err = Parse([]byte("root: {name: \"\"}"))
	require.NoError(t, err)
	_, err = tree.Encode(make([]byte, 0, 10), dtb.WriterOptions{})
	assert.ErrorIs(t, err, dtb.ErrBufferTooSmall)
}

func TestFromReader_RoundTrip(t *testing.T) {
	tree, err := Parse([]byte(boardYAML))
	require.NoError(t, err)
	blob, err := tree.Encode(nil, dtb.WriterOptions{})
	require.NoError(t, err)

	r, err := dtb.New(blob)
	require.NoError(t, err)
	back, err := FromReader(r)
	require.NoError(t, err)

	assert.Equal(t, Hex32(1), back.BootCPUID)
	require.Len(t, back.ReservedMemory, 1)
	require.Len(t, back.Root.Properties, 5)
	assert.Equal(t, "acme,board", *back.Root.Properties[0].String)
	assert.Equal(t, []string{"acme,board", "acme,soc"}, back.Root.Properties[1].Strings)
	assert.Equal(t, []Hex32{2}, back.Root.Properties[2].Cells)
	assert.Equal(t, "deadbeef01", back.Root.Properties[3].Bytes)
	assert.Zero(t, back.Root.Properties[4].valueFields())
	// u64 values read back as two cells
	assert.Equal(t, []Hex32{0, 0x80000000}, back.Root.Children[0].Properties[0].Cells)

	again, err := back.Encode(nil, dtb.WriterOptions{})
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestMarshal(t *testing.T) {
	tree, err := Parse([]byte(boardYAML))
	require.NoError(t, err)
	out, err := tree.Marshal()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "boot-cpu-id: 0x1")
	assert.Contains(t, text, "address: 0x80000000")
	assert.Contains(t, text, "cells: [0x2]")

	parsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, tree, parsed)
}

func TestFromReader_Errors(t *testing.T) {
	w := dtb.NewWriter(make([]byte, 0, 128), dtb.WriterOptions{})
	blob, err := w.Finish()
	require.NoError(t, err)
	r, err := dtb.New(blob)
	require.NoError(t, err)
	_, err = FromReader(r)
	assert.ErrorIs(t, err, ErrNoRoot)
}

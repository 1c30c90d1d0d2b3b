package dtb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/dtbkit/internal/format"
)

// words encodes big-endian 32-bit words.
func words(ws ...uint32) []byte {
	out := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// padded returns s, a NUL and zero padding up to a 4-byte boundary.
func padded(s string) []byte {
	out := make([]byte, format.Align4(len(s)+1))
	copy(out, s)
	return out
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// assemble lays out a header, an empty reservation map, the given
// structure block and strings block, with a consistent header.
func assemble(structBlock, strings []byte) []byte {
	const structOff = format.HeaderSize + format.ReservedEntrySize
	total := structOff + len(structBlock) + len(strings)
	blob := make([]byte, total)
	h := format.Header{
		Magic:             format.Magic,
		TotalSize:         uint32(total),
		StructOffset:      structOff,
		StringsOffset:     uint32(structOff + len(structBlock)),
		ReservedMemOffset: format.HeaderSize,
		Version:           format.DefaultVersion,
		LastCompVersion:   format.CompVersion,
		StringsSize:       uint32(len(strings)),
		StructSize:        uint32(len(structBlock)),
	}
	if err := h.MarshalTo(blob); err != nil {
		panic(err)
	}
	copy(blob[structOff:], structBlock)
	copy(blob[structOff+len(structBlock):], strings)
	return blob
}

// minimalBlob is "/ { };": 40 byte header, map terminator at 40, a 16 byte
// structure block at 56 and an empty strings block at 72.
func minimalBlob() []byte {
	return assemble(cat(words(format.TokenBeginNode), padded(""), words(format.TokenEndNode, format.TokenEnd)), nil)
}

func setHeaderField(blob []byte, off int, v uint32) []byte {
	out := append([]byte(nil), blob...)
	binary.BigEndian.PutUint32(out[off:], v)
	return out
}

func newTestWriter() *Writer {
	return NewWriter(make([]byte, 0, 4096), WriterOptions{})
}

// sampleBlob encodes
//
//	/memreserve/ 0x12345 0x23456;
//	/memreserve/ 0x34567 0x45678;
//	/ {
//	    node1 {
//	        a-string-property = "A string";
//	        a-string-list-property = "first string", "second string";
//	        a-byte-data-property = [01 23 34 56];
//	        child-node1 {
//	            first-child-property;
//	            second-child-property = <1>;
//	            a-string-property = "Hello, world";
//	        };
//	        child-node2 {
//	        };
//	    };
//	    node2 {
//	        an-empty-property;
//	        a-cell-property = <1 2 3 4>;
//	        child-node1 {
//	        };
//	    };
//	};
func sampleBlob(t *testing.T) []byte {
	t.Helper()
	w := newTestWriter()
	require.NoError(t, w.AddReservedMem(ReservedMemEntry{Address: 0x12345, Size: 0x23456}))
	require.NoError(t, w.AddReservedMem(ReservedMemEntry{Address: 0x34567, Size: 0x45678}))
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.BeginNode("node1"))
	require.NoError(t, w.PropertyString("a-string-property", "A string"))
	require.NoError(t, w.PropertyStrings("a-string-list-property", "first string", "second string"))
	require.NoError(t, w.Property("a-byte-data-property", []byte{0x01, 0x23, 0x34, 0x56}))
	require.NoError(t, w.BeginNode("child-node1"))
	require.NoError(t, w.PropertyEmpty("first-child-property"))
	require.NoError(t, w.PropertyU32s("second-child-property", 1))
	require.NoError(t, w.PropertyString("a-string-property", "Hello, world"))
	require.NoError(t, w.EndNode())
	require.NoError(t, w.BeginNode("child-node2"))
	require.NoError(t, w.EndNode())
	require.NoError(t, w.EndNode())
	require.NoError(t, w.BeginNode("node2"))
	require.NoError(t, w.PropertyEmpty("an-empty-property"))
	require.NoError(t, w.PropertyU32s("a-cell-property", 1, 2, 3, 4))
	require.NoError(t, w.BeginNode("child-node1"))
	require.NoError(t, w.EndNode())
	require.NoError(t, w.EndNode())
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	return blob
}

// findBlob encodes
//
//	/ {
//	    foo@1 { bar = "1"; foo@2 { bar = "2"; }; foo@3 { bar = "3"; }; };
//	    foo@4 { bar = "4"; foo@5 { bar = "5"; }; foo@6 { bar = "6"; }; };
//	};
func findBlob(t *testing.T) []byte {
	t.Helper()
	w := newTestWriter()
	require.NoError(t, w.BeginNode(""))
	for _, parent := range [][3]string{{"1", "2", "3"}, {"4", "5", "6"}} {
		require.NoError(t, w.BeginNode("foo@"+parent[0]))
		require.NoError(t, w.PropertyString("bar", parent[0]))
		for _, child := range parent[1:] {
			require.NoError(t, w.BeginNode("foo@"+child))
			require.NoError(t, w.PropertyString("bar", child))
			require.NoError(t, w.EndNode())
		}
		require.NoError(t, w.EndNode())
	}
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	return blob
}

func mustReader(t *testing.T, blob []byte) Reader {
	t.Helper()
	r, err := New(blob)
	require.NoError(t, err)
	return r
}

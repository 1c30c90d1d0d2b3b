package dtb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/dtbkit/internal/format"
)

func TestWriter_MinimalBytes(t *testing.T) {
	w := newTestWriter()
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, minimalBlob(), blob)
}

func TestWriter_HeaderFields(t *testing.T) {
	w := NewWriter(make([]byte, 0, 512), WriterOptions{BootCPUID: 3})
	require.NoError(t, w.AddReservedMem(ReservedMemEntry{Address: 0x1000, Size: 0x10}))
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.PropertyU32s("#address-cells", 2))
	require.NoError(t, w.PropertyU32s("#size-cells", 2))
	require.NoError(t, w.BeginNode("cpus"))
	require.NoError(t, w.PropertyU32s("#address-cells", 1))
	require.NoError(t, w.EndNode())
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)

	r := mustReader(t, blob)
	h := r.Header()
	assert.Equal(t, uint32(len(blob)), h.TotalSize)
	assert.Equal(t, uint32(format.HeaderSize), h.ReservedMemOffset)
	assert.Equal(t, uint32(format.HeaderSize+2*format.ReservedEntrySize), h.StructOffset)
	assert.Equal(t, h.StructOffset+h.StructSize, h.StringsOffset)
	assert.Equal(t, uint32(17), h.Version)
	assert.Equal(t, uint32(16), h.LastCompVersion)
	assert.Equal(t, uint32(3), h.BootCPUID)
	// "#address-cells" is interned once
	assert.Equal(t, uint32(len("#address-cells\x00#size-cells\x00")), h.StringsSize)

	rsv := r.ReservedMem()
	e, ok := rsv.Next()
	require.True(t, ok)
	assert.Equal(t, ReservedMemEntry{Address: 0x1000, Size: 0x10}, e)
	_, ok = rsv.Next()
	assert.False(t, ok)

	require.NoError(t, r.Validate())
}

func TestWriter_ReencodeIsIdentical(t *testing.T) {
	orig := sampleBlob(t)
	r := mustReader(t, orig)

	w := newTestWriter()
	rsv := r.ReservedMem()
	for e := range rsv.All() {
		require.NoError(t, w.AddReservedMem(e))
	}
	it := r.Struct()
	for item := range it.All() {
		require.NoError(t, w.AddItem(item))
	}
	require.NoError(t, it.Err())

	blob, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, orig, blob)
}

func TestWriter_Values(t *testing.T) {
	w := newTestWriter()
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.PropertyU64("reg", 0x1_0000_0002))
	require.NoError(t, w.PropertyStrings("compatible", "a", "bc"))
	require.NoError(t, w.Property("odd", []byte{1, 2, 3}))
	require.NoError(t, w.PropertyEmpty("ranges"))
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)

	r := mustReader(t, blob)
	reg, err := r.FindProperty("/reg")
	require.NoError(t, err)
	v, err := reg.ValueU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1_0000_0002), v)

	compat, err := r.FindProperty("/compatible")
	require.NoError(t, err)
	assert.Equal(t, []byte("a\x00bc\x00"), compat.Value)

	odd, err := r.FindProperty("/odd")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, odd.Value)

	ranges, err := r.FindProperty("/ranges")
	require.NoError(t, err)
	assert.Empty(t, ranges.Value)

	// values are padded so the following token stays aligned
	require.NoError(t, r.Validate())
}

func TestWriter_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(w *Writer) error
		want *Error
	}{
		{"zero reserved entry", func(w *Writer) error {
			return w.AddReservedMem(ReservedMemEntry{})
		}, ErrZeroReservedMemEntry},
		{"reserved entry after struct", func(w *Writer) error {
			_ = w.BeginNode("")
			return w.AddReservedMem(ReservedMemEntry{Address: 1, Size: 1})
		}, ErrWriterState},
		{"second root", func(w *Writer) error {
			_ = w.BeginNode("")
			_ = w.EndNode()
			return w.BeginNode("")
		}, ErrMultipleRoots},
		{"end without begin", func(w *Writer) error {
			return w.EndNode()
		}, ErrUnexpectedEndNode},
		{"property outside node", func(w *Writer) error {
			return w.PropertyEmpty("p")
		}, ErrPropertyOutsideNode},
		{"node name with NUL", func(w *Writer) error {
			return w.BeginNode("a\x00b")
		}, ErrBadNodeName},
		{"property name with NUL", func(w *Writer) error {
			_ = w.BeginNode("")
			return w.PropertyEmpty("a\x00")
		}, ErrBadPropertyName},
		{"invalid UTF-8 name", func(w *Writer) error {
			return w.BeginNode("\xff")
		}, ErrBadStrEncoding},
		{"string value with NUL", func(w *Writer) error {
			_ = w.BeginNode("")
			return w.PropertyStrings("p", "ok", "a\x00b")
		}, ErrBadValueStr},
		{"unbalanced finish", func(w *Writer) error {
			_ = w.BeginNode("")
			_, err := w.Finish()
			return err
		}, ErrUnbalancedNodes},
		{"bad item", func(w *Writer) error {
			return w.AddItem(Item{})
		}, ErrBadStructItemType},
		{"use after finish", func(w *Writer) error {
			_, _ = w.Finish()
			return w.BeginNode("")
		}, ErrWriterState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter()
			err := tt.run(w)
			require.ErrorIs(t, err, tt.want)

			// sticky
			assert.ErrorIs(t, w.BeginNode("later"), tt.want)
			_, err = w.Finish()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriter_OldVersion(t *testing.T) {
	w := NewWriter(make([]byte, 0, 128), WriterOptions{Version: 15})
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.EndNode())
	_, err := w.Finish()
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestWriter_ExplicitVersion16(t *testing.T) {
	w := NewWriter(make([]byte, 0, 128), WriterOptions{Version: 16})
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, uint32(16), mustReader(t, blob).Header().Version)
}

func TestWriter_BufferTooSmall(t *testing.T) {
	w := NewWriter(make([]byte, 0, format.HeaderSize-1), WriterOptions{})
	assert.ErrorIs(t, w.BeginNode(""), ErrBufferTooSmall)

	// header, terminator and BEGIN_NODE fit; the name does not
	dst := make([]byte, 0, 60)
	w = NewWriter(dst, WriterOptions{})
	err := w.BeginNode("")
	require.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, KindValue, err.(*Error).Kind())
	_, err = w.Finish()
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	// exactly enough room
	w = NewWriter(make([]byte, 0, len(minimalBlob())), WriterOptions{})
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, minimalBlob(), blob)
}

func TestWriter_UsesCallerBuffer(t *testing.T) {
	dst := make([]byte, 0, 256)
	w := NewWriter(dst, WriterOptions{})
	require.NoError(t, w.BeginNode(""))
	require.NoError(t, w.EndNode())
	blob, err := w.Finish()
	require.NoError(t, err)
	assert.Same(t, &dst[:1][0], &blob[0])
}

func TestWriter_EmptyTree(t *testing.T) {
	blob, err := newTestWriter().Finish()
	require.NoError(t, err)
	r := mustReader(t, blob)
	assert.Equal(t, uint32(4), r.Header().StructSize)

	it := r.Struct()
	_, err = it.Next()
	assert.ErrorIs(t, err, ErrNoMoreStructItems)
}

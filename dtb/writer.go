package dtb

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"

	"github.com/joshuapare/dtbkit/internal/format"
)

// WriterOptions configures blob construction.
type WriterOptions struct {
	// BootCPUID is stored in the header's boot_cpuid_phys field.
	// Default: 0
	BootCPUID uint32

	// Version is stored in the header. Zero selects version 17. Versions
	// older than the last compatible version (16) are rejected by Finish.
	Version uint32
}

type writerPhase int

const (
	phaseReserved writerPhase = iota
	phaseStruct
	phaseDone
)

// Writer builds a blob into a caller-owned buffer. Calls must follow the
// file order: reserved entries first, then structure tokens, then Finish.
// The first error is sticky. A Writer is not safe for concurrent use.
//
//	w := dtb.NewWriter(make([]byte, 0, 4096), dtb.WriterOptions{})
//	w.AddReservedMem(dtb.ReservedMemEntry{Address: 0x8000_0000, Size: 0x1000})
//	w.BeginNode("")
//	w.PropertyString("compatible", "acme,board")
//	w.EndNode()
//	blob, err := w.Finish()
type Writer struct {
	b       *cryptobyte.Builder
	opts    WriterOptions
	phase   writerPhase
	start   int // structure block offset
	depth   int
	roots   int
	strings []byte
	offsets map[string]uint32
	err     error
}

// NewWriter returns a Writer over dst. The blob always starts at dst[0] and
// may grow up to cap(dst); the buffer is never reallocated, so a blob that
// does not fit fails with ErrBufferTooSmall.
func NewWriter(dst []byte, opts WriterOptions) *Writer {
	if opts.Version == 0 {
		opts.Version = format.DefaultVersion
	}
	w := &Writer{
		b:       cryptobyte.NewFixedBuilder(dst[:0]),
		opts:    opts,
		offsets: make(map[string]uint32),
	}
	var hdr [format.HeaderSize]byte
	w.b.AddBytes(hdr[:])
	w.check()
	return w
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

// check turns a builder overflow into ErrBufferTooSmall.
func (w *Writer) check() error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.b.Bytes(); err != nil {
		return w.fail(wrapError(CodeBufferTooSmall, err))
	}
	return nil
}

func (w *Writer) size() int {
	out, _ := w.b.Bytes()
	return len(out)
}

func (w *Writer) pad(n int) {
	var zero [format.TokenSize]byte
	w.b.AddBytes(zero[:format.Align4(n)-n])
}

func (w *Writer) usable() error {
	if w.err != nil {
		return w.err
	}
	if w.phase == phaseDone {
		return w.fail(ErrWriterState)
	}
	return nil
}

// beginStruct terminates the reservation map on the first structure token.
func (w *Writer) beginStruct() error {
	if w.phase != phaseReserved {
		return nil
	}
	format.AddReservedEntry(w.b, format.ReservedEntry{})
	if err := w.check(); err != nil {
		return err
	}
	w.start = w.size()
	w.phase = phaseStruct
	return nil
}

// AddReservedMem appends one reservation. The all-zero entry is the map
// terminator and cannot be added explicitly.
func (w *Writer) AddReservedMem(e ReservedMemEntry) error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.phase != phaseReserved {
		return w.fail(ErrWriterState)
	}
	if e.Address == 0 && e.Size == 0 {
		return w.fail(ErrZeroReservedMemEntry)
	}
	format.AddReservedEntry(w.b, format.ReservedEntry{Address: e.Address, Size: e.Size})
	return w.check()
}

func checkName(name string, code Code) error {
	if strings.IndexByte(name, 0) >= 0 {
		return newError(code)
	}
	if !utf8.ValidString(name) {
		return wrapError(CodeBadStrEncoding, checkUTF8([]byte(name)))
	}
	return nil
}

// BeginNode opens a node. The root node's name is the empty string.
func (w *Writer) BeginNode(name string) error {
	if err := w.usable(); err != nil {
		return err
	}
	if err := checkName(name, CodeBadNodeName); err != nil {
		return w.fail(err)
	}
	if w.depth == 0 && w.roots > 0 {
		return w.fail(ErrMultipleRoots)
	}
	if err := w.beginStruct(); err != nil {
		return err
	}
	w.b.AddUint32(format.TokenBeginNode)
	w.b.AddBytes([]byte(name))
	w.b.AddUint8(0)
	w.pad(len(name) + 1)
	if err := w.check(); err != nil {
		return err
	}
	if w.depth == 0 {
		w.roots++
	}
	w.depth++
	return nil
}

// EndNode closes the innermost open node.
func (w *Writer) EndNode() error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.depth == 0 {
		return w.fail(ErrUnexpectedEndNode)
	}
	w.b.AddUint32(format.TokenEndNode)
	if err := w.check(); err != nil {
		return err
	}
	w.depth--
	return nil
}

// Property appends a property with a raw value to the open node.
func (w *Writer) Property(name string, value []byte) error {
	return w.property(name, len(value), func(b *cryptobyte.Builder) {
		b.AddBytes(value)
	})
}

// PropertyEmpty appends a property with no value.
func (w *Writer) PropertyEmpty(name string) error {
	return w.property(name, 0, func(*cryptobyte.Builder) {})
}

// PropertyString appends a NUL-terminated string property.
func (w *Writer) PropertyString(name, value string) error {
	return w.PropertyStrings(name, value)
}

// PropertyStrings appends a string-list property. No element may contain NUL.
func (w *Writer) PropertyStrings(name string, values ...string) error {
	size := 0
	for _, v := range values {
		if strings.IndexByte(v, 0) >= 0 {
			if err := w.usable(); err != nil {
				return err
			}
			return w.fail(ErrBadValueStr)
		}
		size += len(v) + 1
	}
	return w.property(name, size, func(b *cryptobyte.Builder) {
		for _, v := range values {
			b.AddBytes([]byte(v))
			b.AddUint8(0)
		}
	})
}

// PropertyU32s appends a list of big-endian 32-bit cells.
func (w *Writer) PropertyU32s(name string, values ...uint32) error {
	return w.property(name, 4*len(values), func(b *cryptobyte.Builder) {
		for _, v := range values {
			b.AddUint32(v)
		}
	})
}

// PropertyU64 appends a 64-bit value as two cells, most significant first.
func (w *Writer) PropertyU64(name string, value uint64) error {
	return w.property(name, 8, func(b *cryptobyte.Builder) {
		b.AddUint64(value)
	})
}

func (w *Writer) property(name string, size int, emit func(*cryptobyte.Builder)) error {
	if err := w.usable(); err != nil {
		return err
	}
	if err := checkName(name, CodeBadPropertyName); err != nil {
		return w.fail(err)
	}
	if w.depth == 0 {
		return w.fail(ErrPropertyOutsideNode)
	}
	if uint64(size) > math.MaxUint32 {
		return w.fail(ErrBufferTooSmall)
	}
	nameOff, err := w.stringOffset(name)
	if err != nil {
		return w.fail(err)
	}
	w.b.AddUint32(format.TokenProp)
	w.b.AddUint32(uint32(size))
	w.b.AddUint32(nameOff)
	emit(w.b)
	w.pad(size)
	return w.check()
}

// stringOffset interns name in the strings block.
func (w *Writer) stringOffset(name string) (uint32, error) {
	if off, ok := w.offsets[name]; ok {
		return off, nil
	}
	if uint64(len(w.strings))+uint64(len(name))+1 > math.MaxUint32 {
		return 0, ErrBufferTooSmall
	}
	off := uint32(len(w.strings))
	w.strings = append(w.strings, name...)
	w.strings = append(w.strings, 0)
	w.offsets[name] = off
	return off, nil
}

// AddItem appends a token decoded by a StructIter, which makes
// re-encoding a tree a loop over Next.
func (w *Writer) AddItem(item Item) error {
	switch item.Kind {
	case ItemBeginNode:
		return w.BeginNode(item.Name)
	case ItemProperty:
		return w.Property(item.Name, item.Value)
	case ItemEndNode:
		return w.EndNode()
	default:
		if err := w.usable(); err != nil {
			return err
		}
		return w.fail(ErrBadStructItemType)
	}
}

// Finish terminates the structure block, appends the strings block and
// writes the header. The returned slice aliases the buffer given to
// NewWriter. The Writer cannot be used afterwards.
func (w *Writer) Finish() ([]byte, error) {
	if err := w.usable(); err != nil {
		return nil, err
	}
	if w.depth != 0 {
		return nil, w.fail(ErrUnbalancedNodes)
	}
	if w.opts.Version < format.CompVersion {
		return nil, w.fail(ErrBadVersion)
	}
	if err := w.beginStruct(); err != nil {
		return nil, err
	}
	w.b.AddUint32(format.TokenEnd)
	if err := w.check(); err != nil {
		return nil, err
	}
	structEnd := w.size()
	w.b.AddBytes(w.strings)
	out, err := w.b.Bytes()
	if err != nil {
		return nil, w.fail(wrapError(CodeBufferTooSmall, err))
	}
	if uint64(len(out)) > math.MaxUint32 {
		return nil, w.fail(ErrBufferTooSmall)
	}

	h := format.Header{
		Magic:             format.Magic,
		TotalSize:         uint32(len(out)),
		StructOffset:      uint32(w.start),
		StringsOffset:     uint32(structEnd),
		ReservedMemOffset: format.HeaderSize,
		Version:           w.opts.Version,
		LastCompVersion:   format.CompVersion,
		BootCPUID:         w.opts.BootCPUID,
		StringsSize:       uint32(len(w.strings)),
		StructSize:        uint32(structEnd - w.start),
	}
	if err := h.MarshalTo(out); err != nil {
		return nil, w.fail(wrapError(CodeBufferTooSmall, err))
	}
	w.phase = phaseDone
	return out, nil
}

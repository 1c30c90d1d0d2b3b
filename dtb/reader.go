package dtb

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/joshuapare/dtbkit/internal/buf"
	"github.com/joshuapare/dtbkit/internal/format"
)

// ValidationMode selects how much of the structure block New checks.
type ValidationMode int

const (
	// ValidateLazy checks only the header and block layout. Token-stream
	// errors surface when the offending token is visited.
	ValidateLazy ValidationMode = iota
	// ValidateEager additionally walks the whole structure block once and
	// checks node nesting.
	ValidateEager
)

// Options controls reader construction.
type Options struct {
	// Validation selects lazy or eager token-stream validation.
	// Default: ValidateLazy
	Validation ValidationMode

	// Logger receives debug records about the decoded header and the
	// validation result. Default: nil (no logging).
	Logger *slog.Logger
}

// DefaultOptions returns lazy validation with no logging.
func DefaultOptions() Options {
	return Options{Validation: ValidateLazy}
}

// Header is the decoded blob header.
type Header struct {
	TotalSize         uint32
	StructOffset      uint32
	StringsOffset     uint32
	ReservedMemOffset uint32
	Version           uint32
	LastCompVersion   uint32
	BootCPUID         uint32
	StringsSize       uint32
	StructSize        uint32
}

// ReservedMemEntry is a physical range the kernel must not allocate over.
type ReservedMemEntry struct {
	Address uint64
	Size    uint64
}

// Reader is a validated view of a blob. It borrows the blob read-only and
// never copies it; a Reader is cheap to copy.
type Reader struct {
	header       Header
	reservedMem  []byte
	structBlock  []byte
	stringsBlock []byte
}

// New validates blob lazily. See NewWithOptions.
func New(blob []byte) (Reader, error) {
	return NewWithOptions(blob, DefaultOptions())
}

// NewWithOptions validates the header and carves blob into its reservation
// map, structure block and strings block. The first violated rule is
// reported.
func NewWithOptions(blob []byte, opts Options) (Reader, error) {
	log := opts.Logger
	debug := log != nil && log.Enabled(context.Background(), slog.LevelDebug)

	h, err := format.ParseHeader(blob)
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return Reader{}, ErrBadMagic
	case err != nil:
		return Reader{}, ErrUnexpectedEndOfBlob
	}
	if h.Version < h.LastCompVersion {
		return Reader{}, ErrBadVersion
	}
	if h.LastCompVersion != format.CompVersion {
		return Reader{}, ErrUnsupportedCompVersion
	}
	if uint64(h.TotalSize) != uint64(len(blob)) {
		return Reader{}, ErrBadTotalSize
	}

	reserved, err := reservedRegion(blob, h)
	if err != nil {
		return Reader{}, err
	}

	if !format.IsAligned(h.StructOffset, format.TokenSize) || !format.IsAligned(h.StructSize, format.TokenSize) {
		return Reader{}, ErrUnalignedStruct
	}
	if !buf.RangeWithin(h.StructOffset, h.StructSize, h.StringsOffset) {
		return Reader{}, ErrOverlappingStruct
	}
	if !buf.RangeWithin(h.StringsOffset, h.StringsSize, h.TotalSize) {
		return Reader{}, ErrOverlappingStrings
	}

	r := Reader{
		header: Header{
			TotalSize:         h.TotalSize,
			StructOffset:      h.StructOffset,
			StringsOffset:     h.StringsOffset,
			ReservedMemOffset: h.ReservedMemOffset,
			Version:           h.Version,
			LastCompVersion:   h.LastCompVersion,
			BootCPUID:         h.BootCPUID,
			StringsSize:       h.StringsSize,
			StructSize:        h.StructSize,
		},
		reservedMem:  reserved,
		structBlock:  blob[h.StructOffset : h.StructOffset+h.StructSize],
		stringsBlock: blob[h.StringsOffset : h.StringsOffset+h.StringsSize],
	}
	if debug {
		log.Debug("dtb header decoded",
			"version", h.Version,
			"total_size", h.TotalSize,
			"reserved_entries", len(reserved)/format.ReservedEntrySize,
			"struct_size", h.StructSize,
			"strings_size", h.StringsSize)
	}

	if opts.Validation == ValidateEager {
		if err := r.Validate(); err != nil {
			if debug {
				log.Debug("dtb eager validation failed", "error", err)
			}
			return Reader{}, err
		}
		if debug {
			log.Debug("dtb eager validation passed")
		}
	}
	return r, nil
}

// reservedRegion returns the reservation map without its terminator.
func reservedRegion(blob []byte, h format.Header) ([]byte, error) {
	if !format.IsAligned(h.ReservedMemOffset, format.ReservedMemAlign) {
		return nil, ErrUnalignedReservedMem
	}
	if h.ReservedMemOffset < format.HeaderSize ||
		!buf.RangeWithin(h.ReservedMemOffset, format.ReservedEntrySize, h.StructOffset) ||
		h.StructOffset > h.TotalSize {
		return nil, ErrOverlappingReservedMem
	}
	region := blob[h.ReservedMemOffset:h.StructOffset]
	idx, ok := format.FindReservedTerminator(region)
	if !ok {
		return nil, ErrNoZeroReservedMemEntry
	}
	return region[:idx*format.ReservedEntrySize], nil
}

// Header returns the decoded header fields.
func (r Reader) Header() Header { return r.header }

// ReservedMem returns a fresh iterator over the reservation map.
func (r Reader) ReservedMem() ReservedMemIter {
	return ReservedMemIter{region: r.reservedMem}
}

// Struct returns a fresh iterator positioned at the start of the structure
// block.
func (r Reader) Struct() StructIter {
	return StructIter{structBlock: r.structBlock, stringsBlock: r.stringsBlock}
}

// FindNode returns the first node matching path, together with an iterator
// positioned just inside it. When nothing matches the terminal query error
// is returned.
func (r Reader) FindNode(path string) (Item, StructIter, error) {
	p := r.Struct().Find(path)
	for {
		item, it, err := p.Next()
		if err != nil || item.IsBeginNode() {
			return item, it, err
		}
	}
}

// FindProperty returns the first property matching path.
func (r Reader) FindProperty(path string) (Item, error) {
	p := r.Struct().Find(path)
	for {
		item, _, err := p.Next()
		if err != nil || item.IsProperty() {
			return item, err
		}
	}
}

// ReservedMemIter walks the reservation map. The terminator is never yielded.
type ReservedMemIter struct {
	region []byte
	off    int
}

// Next returns the next entry, or false once the map is exhausted.
func (it *ReservedMemIter) Next() (ReservedMemEntry, bool) {
	if it.off+format.ReservedEntrySize > len(it.region) {
		return ReservedMemEntry{}, false
	}
	e, _ := format.DecodeReservedEntry(it.region[it.off:])
	it.off += format.ReservedEntrySize
	return ReservedMemEntry{Address: e.Address, Size: e.Size}, true
}

// Len reports how many entries remain.
func (it *ReservedMemIter) Len() int {
	return (len(it.region) - it.off) / format.ReservedEntrySize
}

// All adapts the iterator for range-over-func.
func (it *ReservedMemIter) All() iter.Seq[ReservedMemEntry] {
	return func(yield func(ReservedMemEntry) bool) {
		for {
			e, ok := it.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}


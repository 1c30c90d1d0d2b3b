package format

// Flattened device tree layout constants. Every multi-byte field in a blob
// is big-endian regardless of host byte order.
const (
	// Magic is the first word of every blob.
	Magic uint32 = 0xD00DFEED

	// CompVersion is the only last_comp_version this package understands.
	CompVersion uint32 = 16

	// DefaultVersion is the version the writer stamps into new blobs.
	DefaultVersion uint32 = 17

	// HeaderSize is the size of the ten-word header.
	HeaderSize = 40

	// ReservedEntrySize is the size of one {address, size} reservation.
	ReservedEntrySize = 16

	// ReservedMemAlign is the required alignment of the reservation map.
	ReservedMemAlign = 8

	// TokenSize is the size of a structure-block opcode and its alignment.
	TokenSize = 4

	// PropDescSize is the size of the {len, nameoff} property descriptor.
	PropDescSize = 8
)

// Header field offsets.
const (
	HeaderMagicOffset           = 0x00
	HeaderTotalSizeOffset       = 0x04
	HeaderStructOffsetOffset    = 0x08
	HeaderStringsOffsetOffset   = 0x0C
	HeaderReservedOffsetOffset  = 0x10
	HeaderVersionOffset         = 0x14
	HeaderLastCompVersionOffset = 0x18
	HeaderBootCPUIDOffset       = 0x1C
	HeaderStringsSizeOffset     = 0x20
	HeaderStructSizeOffset      = 0x24
)

// Structure block opcodes.
const (
	TokenBeginNode uint32 = 1
	TokenEndNode   uint32 = 2
	TokenProp      uint32 = 3
	TokenNop       uint32 = 4
	TokenEnd       uint32 = 9
)

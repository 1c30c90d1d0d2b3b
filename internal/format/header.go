package format

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Header is the decoded blob header.
//
//	Offset  Size  Description
//	------  ----  ---------------------------------------------
//	 0x00    4    magic (0xD00DFEED)
//	 0x04    4    totalsize
//	 0x08    4    off_dt_struct
//	 0x0C    4    off_dt_strings
//	 0x10    4    off_mem_rsvmap
//	 0x14    4    version
//	 0x18    4    last_comp_version
//	 0x1C    4    boot_cpuid_phys
//	 0x20    4    size_dt_strings
//	 0x24    4    size_dt_struct
type Header struct {
	Magic             uint32
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

// ParseHeader checks the magic and decodes the header fields. A buffer too
// short to hold the magic, or holding the wrong magic, reports
// ErrSignatureMismatch; a correct magic followed by a short header reports
// ErrTruncated.
func ParseHeader(b []byte) (Header, error) {
	var h Header
	s := cryptobyte.String(b)
	if !s.ReadUint32(&h.Magic) || h.Magic != Magic {
		return Header{}, fmt.Errorf("fdt header: %w", ErrSignatureMismatch)
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("fdt header: %w", ErrTruncated)
	}
	if !s.ReadUint32(&h.TotalSize) ||
		!s.ReadUint32(&h.StructOffset) ||
		!s.ReadUint32(&h.StringsOffset) ||
		!s.ReadUint32(&h.ReservedMemOffset) ||
		!s.ReadUint32(&h.Version) ||
		!s.ReadUint32(&h.LastCompVersion) ||
		!s.ReadUint32(&h.BootCPUID) ||
		!s.ReadUint32(&h.StringsSize) ||
		!s.ReadUint32(&h.StructSize) {
		return Header{}, fmt.Errorf("fdt header: %w", ErrTruncated)
	}
	return h, nil
}

// MarshalTo encodes h big-endian into b[:HeaderSize].
func (h Header) MarshalTo(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("fdt header: %w", ErrTruncated)
	}
	bld := cryptobyte.NewFixedBuilder(b[:0:HeaderSize])
	for _, v := range [...]uint32{
		h.Magic,
		h.TotalSize,
		h.StructOffset,
		h.StringsOffset,
		h.ReservedMemOffset,
		h.Version,
		h.LastCompVersion,
		h.BootCPUID,
		h.StringsSize,
		h.StructSize,
	} {
		bld.AddUint32(v)
	}
	if _, err := bld.Bytes(); err != nil {
		return fmt.Errorf("fdt header: %w", err)
	}
	return nil
}

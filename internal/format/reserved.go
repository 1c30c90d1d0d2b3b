package format

import "golang.org/x/crypto/cryptobyte"

// ReservedEntry is one {address, size} record of the reservation map.
type ReservedEntry struct {
	Address uint64
	Size    uint64
}

// IsZero reports whether e is the all-zero map terminator.
func (e ReservedEntry) IsZero() bool {
	return e.Address == 0 && e.Size == 0
}

// DecodeReservedEntry reads the entry at the start of b.
func DecodeReservedEntry(b []byte) (ReservedEntry, bool) {
	var e ReservedEntry
	s := cryptobyte.String(b)
	if !s.ReadUint64(&e.Address) || !s.ReadUint64(&e.Size) {
		return ReservedEntry{}, false
	}
	return e, true
}

// FindReservedTerminator scans the map region for the all-zero entry and
// returns its index. Trailing bytes that do not form a whole entry are
// ignored.
func FindReservedTerminator(region []byte) (int, bool) {
	for i := 0; (i+1)*ReservedEntrySize <= len(region); i++ {
		e, _ := DecodeReservedEntry(region[i*ReservedEntrySize:])
		if e.IsZero() {
			return i, true
		}
	}
	return 0, false
}

// AddReservedEntry appends e big-endian to b.
func AddReservedEntry(b *cryptobyte.Builder, e ReservedEntry) {
	b.AddUint64(e.Address)
	b.AddUint64(e.Size)
}

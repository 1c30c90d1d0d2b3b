// Package buf contains helpers for bounds-checked, endian-safe decoding routines.
package buf

import "encoding/binary"

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// U64BE reads a big-endian uint64 from b. Returns 0 when b is too short.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// U32BEAt reads the big-endian uint32 at b[off:off+4]. ok is false when
// the word does not fit.
func U32BEAt(b []byte, off int) (uint32, bool) {
	w, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(w), true
}

// PutU32BE writes v big-endian into b[off:off+4]. It reports false instead
// of panicking when the word does not fit.
func PutU32BE(b []byte, off int, v uint32) bool {
	w, ok := Slice(b, off, 4)
	if !ok {
		return false
	}
	binary.BigEndian.PutUint32(w, v)
	return true
}

package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// CString returns the bytes of the NUL-terminated string starting at off,
// without the terminator. ok is false when off is out of range or no NUL
// follows it inside b.
func CString(b []byte, off int) ([]byte, bool) {
	if off < 0 || off >= len(b) {
		return nil, false
	}
	for i, c := range b[off:] {
		if c == 0 {
			return b[off : off+i], true
		}
	}
	return nil, false
}

// RangeWithin reports whether [off, off+n) lies inside [0, limit). The
// arithmetic is done in uint64 so 32-bit header fields can never wrap.
func RangeWithin(off, n, limit uint32) bool {
	return uint64(off)+uint64(n) <= uint64(limit)
}

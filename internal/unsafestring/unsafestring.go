// Package unsafestring converts between byte slices and strings without
// copying.
package unsafestring

import "unsafe"

// FromBytes returns a string sharing b's backing array.
// SAFETY: b must never be written to while the string is reachable.
func FromBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

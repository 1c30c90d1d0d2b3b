package format

// Align4 returns n aligned up to the next 4-byte boundary. Node names and
// property values are padded to this boundary in the structure block.
//
//	Align4(0) = 0
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + TokenSize - 1) &^ (TokenSize - 1)
}

// Align8 returns n aligned up to the next 8-byte boundary.
func Align8(n int) int {
	return (n + ReservedMemAlign - 1) &^ (ReservedMemAlign - 1)
}

// IsAligned reports whether off is a multiple of align, which must be a
// power of two.
func IsAligned(off uint32, align uint32) bool {
	return off&(align-1) == 0
}

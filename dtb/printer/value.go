package printer

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

// ValueKind is the rendering guessed for a raw property value.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindString
	KindStrings
	KindCells
	KindBytes
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindStrings:
		return "strings"
	case KindCells:
		return "cells"
	default:
		return "bytes"
	}
}

// Classify guesses how a value was written, the way dtc does when
// decompiling: printable NUL-terminated strings first, then 32-bit cells
// when the length allows, raw bytes otherwise.
func Classify(v []byte) ValueKind {
	switch n := printableStrings(v); {
	case len(v) == 0:
		return KindEmpty
	case n == 1:
		return KindString
	case n > 1:
		return KindStrings
	case len(v)%4 == 0:
		return KindCells
	default:
		return KindBytes
	}
}

// printableStrings counts the strings in v, or returns 0 when v is not a
// list of non-empty printable strings.
func printableStrings(v []byte) int {
	if len(v) == 0 || v[len(v)-1] != 0 {
		return 0
	}
	n := 0
	for s := range bytes.SplitSeq(v[:len(v)-1], []byte{0}) {
		if len(s) == 0 || !utf8.Valid(s) {
			return 0
		}
		for _, r := range string(s) {
			if !unicode.IsPrint(r) && r != '\t' && r != '\n' && r != '\r' {
				return 0
			}
		}
		n++
	}
	return n
}

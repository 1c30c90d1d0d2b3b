package dtb

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	KindBlob   ErrKind = iota // header and block layout, reported by New
	KindStruct                // token stream, reported lazily by StructIter
	KindQuery                 // path queries
	KindValue                 // typed property decoding
	KindWriter                // blob construction
)

func (k ErrKind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindStruct:
		return "struct"
	case KindQuery:
		return "query"
	case KindValue:
		return "value"
	case KindWriter:
		return "writer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Code identifies one specific failure.
type Code int

const (
	CodeBadMagic Code = iota + 1
	CodeUnexpectedEndOfBlob
	CodeBadVersion
	CodeUnsupportedCompVersion
	CodeBadTotalSize
	CodeUnalignedReservedMem
	CodeOverlappingReservedMem
	CodeNoZeroReservedMemEntry
	CodeUnalignedStruct
	CodeOverlappingStruct
	CodeOverlappingStrings

	CodeUnexpectedEndOfStruct
	CodeBadStructToken
	CodeBadNodeName
	CodeBadPropertyName
	CodeBadStrEncoding
	CodeNoMoreStructItems
	CodeUnbalancedNodes
	CodeUnexpectedEndNode
	CodeMultipleRoots
	CodePropertyOutsideNode

	CodeOutOfParentNode

	CodeBadStructItemType
	CodeBadValueStr
	CodeBadU32List
	CodeBadU64
	CodeBufferTooSmall

	CodeZeroReservedMemEntry
	CodeWriterState
)

var codeText = map[Code]string{
	CodeBadMagic:               "bad magic",
	CodeUnexpectedEndOfBlob:    "unexpected end of blob",
	CodeBadVersion:             "version older than last compatible version",
	CodeUnsupportedCompVersion: "unsupported last compatible version",
	CodeBadTotalSize:           "total size does not match blob length",
	CodeUnalignedReservedMem:   "unaligned reserved memory map",
	CodeOverlappingReservedMem: "overlapping reserved memory map",
	CodeNoZeroReservedMemEntry: "reserved memory map has no terminator",
	CodeUnalignedStruct:        "unaligned structure block",
	CodeOverlappingStruct:      "overlapping structure block",
	CodeOverlappingStrings:     "overlapping strings block",
	CodeUnexpectedEndOfStruct:  "unexpected end of structure block",
	CodeBadStructToken:         "bad structure token",
	CodeBadNodeName:            "bad node name",
	CodeBadPropertyName:        "bad property name",
	CodeBadStrEncoding:         "bad string encoding",
	CodeNoMoreStructItems:      "no more structure items",
	CodeUnbalancedNodes:        "unbalanced nodes",
	CodeUnexpectedEndNode:      "end node without matching begin node",
	CodeMultipleRoots:          "more than one root node",
	CodePropertyOutsideNode:    "property outside of any node",
	CodeOutOfParentNode:        "out of parent node",
	CodeBadStructItemType:      "wrong structure item type",
	CodeBadValueStr:            "value is not a NUL-terminated string",
	CodeBadU32List:             "value is not a list of 32-bit cells",
	CodeBadU64:                 "value is not a 64-bit integer",
	CodeBufferTooSmall:         "buffer too small",
	CodeZeroReservedMemEntry:   "zero reserved memory entry",
	CodeWriterState:            "invalid writer state",
}

func (c Code) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Kind returns the category c belongs to. Codes shared between categories
// report the category in which they are first raised.
func (c Code) Kind() ErrKind {
	switch {
	case c <= CodeOverlappingStrings:
		return KindBlob
	case c <= CodePropertyOutsideNode:
		return KindStruct
	case c == CodeOutOfParentNode:
		return KindQuery
	case c <= CodeBufferTooSmall:
		return KindValue
	default:
		return KindWriter
	}
}

// Error is a decoding or encoding failure. Two Errors match under errors.Is
// when their codes are equal, so the exported sentinels can be compared
// against errors that carry an offset or a cause.
type Error struct {
	Code Code
	// Offset is the structure-block offset of the offending token, or -1.
	// ErrNoMoreStructItems and ErrOutOfParentNode are returned as is, so
	// they carry -1; the iterator's Offset tells where the walk stopped.
	Offset int
	// Err is an optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "dtb: " + e.Code.String()
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at struct offset 0x%x", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && e != nil && t.Code == e.Code
}

// Kind is shorthand for e.Code.Kind().
func (e *Error) Kind() ErrKind { return e.Code.Kind() }

// IsCode reports whether err is, or wraps, an *Error with code c.
func IsCode(err error, c Code) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == c
	}
	var e *Error
	return errors.As(err, &e) && e.Code == c
}

func newError(c Code) *Error {
	return &Error{Code: c, Offset: -1}
}

func structError(c Code, off int) *Error {
	return &Error{Code: c, Offset: off}
}

func wrapError(c Code, cause error) *Error {
	return &Error{Code: c, Offset: -1, Err: cause}
}

// Sentinels for errors.Is.
var (
	ErrBadMagic               = newError(CodeBadMagic)
	ErrUnexpectedEndOfBlob    = newError(CodeUnexpectedEndOfBlob)
	ErrBadVersion             = newError(CodeBadVersion)
	ErrUnsupportedCompVersion = newError(CodeUnsupportedCompVersion)
	ErrBadTotalSize           = newError(CodeBadTotalSize)
	ErrUnalignedReservedMem   = newError(CodeUnalignedReservedMem)
	ErrOverlappingReservedMem = newError(CodeOverlappingReservedMem)
	ErrNoZeroReservedMemEntry = newError(CodeNoZeroReservedMemEntry)
	ErrUnalignedStruct        = newError(CodeUnalignedStruct)
	ErrOverlappingStruct      = newError(CodeOverlappingStruct)
	ErrOverlappingStrings     = newError(CodeOverlappingStrings)

	ErrUnexpectedEndOfStruct = newError(CodeUnexpectedEndOfStruct)
	ErrBadStructToken        = newError(CodeBadStructToken)
	ErrBadNodeName           = newError(CodeBadNodeName)
	ErrBadPropertyName       = newError(CodeBadPropertyName)
	ErrBadStrEncoding        = newError(CodeBadStrEncoding)
	ErrNoMoreStructItems     = newError(CodeNoMoreStructItems)
	ErrUnbalancedNodes       = newError(CodeUnbalancedNodes)
	ErrUnexpectedEndNode     = newError(CodeUnexpectedEndNode)
	ErrMultipleRoots         = newError(CodeMultipleRoots)
	ErrPropertyOutsideNode   = newError(CodePropertyOutsideNode)

	ErrOutOfParentNode = newError(CodeOutOfParentNode)

	ErrBadStructItemType = newError(CodeBadStructItemType)
	ErrBadValueStr       = newError(CodeBadValueStr)
	ErrBadU32List        = newError(CodeBadU32List)
	ErrBadU64            = newError(CodeBadU64)
	ErrBufferTooSmall    = newError(CodeBufferTooSmall)

	ErrZeroReservedMemEntry = newError(CodeZeroReservedMemEntry)
	ErrWriterState          = newError(CodeWriterState)
)

// InvalidUTF8Error is the cause attached to CodeBadStrEncoding errors.
type InvalidUTF8Error struct {
	// Index is the offset of the first invalid byte within the string.
	Index int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte %d", e.Index)
}

// checkUTF8 returns an *InvalidUTF8Error for the first invalid sequence in b.
func checkUTF8(b []byte) error {
	if utf8.Valid(b) {
		return nil
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return &InvalidUTF8Error{Index: i}
		}
		i += size
	}
	return &InvalidUTF8Error{Index: len(b)}
}

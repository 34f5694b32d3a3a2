package text

import (
	"bytes"
	"unsafe"
)

// Ref is a non-owning view of a string: a pointer and a length. A null Ref, which points at nothing,
// is distinct from an empty Ref, which points at zero bytes. The bytes behind a Ref must not be
// modified through it, since they may belong to an immutable Go string.
type Ref struct {
	data []byte
}

// Null returns the null Ref
func Null() Ref { return Ref{} }

// FromString returns a Ref over the bytes of s. The empty string produces an empty, non-null Ref.
func FromString(s string) Ref {
	if len(s) == 0 {
		return Ref{data: []byte{}}
	}
	return Ref{data: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// FromStringAndLength returns a Ref over the first length bytes of s, or all of s if it is shorter
func FromStringAndLength(s string, length int) Ref {
	return FromString(s[:min(max(length, 0), len(s))])
}

// FromBytes returns a Ref over data. A nil slice produces the null Ref.
func FromBytes(data []byte) Ref {
	return Ref{data: data}
}

// IsNull returns true if the Ref points at nothing
func (r Ref) IsNull() bool { return r.data == nil }

// IsEmpty returns true if the Ref is non-null and has zero length
func (r Ref) IsEmpty() bool { return r.data != nil && len(r.data) == 0 }

// Len returns the number of bytes in the Ref
func (r Ref) Len() int { return len(r.data) }

// Bytes returns the viewed bytes
func (r Ref) Bytes() []byte { return r.data }

// String returns a copy of the viewed bytes as a Go string
func (r Ref) String() string { return string(r.data) }

// Equal returns true if a and b have the same length and content
func Equal(a, b Ref) bool {
	return len(a.data) == len(b.data) && bytes.Equal(a.data, b.data)
}

// EqualN returns true if a and b are both at least n bytes long and agree on their first n bytes
func EqualN(a, b Ref, n int) bool {
	if len(a.data) < n || len(b.data) < n {
		return false
	}
	return bytes.Equal(a.data[:n], b.data[:n])
}

// NextLine returns the line of text that starts at *offset and advances *offset past it. Lines
// end at '\n', which is not part of the returned Ref, and a trailing '\r' is dropped as well. Once
// *offset reaches the end of text, NextLine returns the null Ref.
func NextLine(text Ref, offset *int) Ref {
	start := *offset
	if start < 0 || start >= len(text.data) {
		return Null()
	}

	rest := text.data[start:]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		*offset = len(text.data)
		return Ref{data: rest[:len(rest):len(rest)]}
	}

	*offset = start + end + 1
	line := rest[:end:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[: len(line)-1 : len(line)-1]
	}
	return Ref{data: line}
}

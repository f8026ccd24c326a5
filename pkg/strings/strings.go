// Package strings provides zero-copy string utilities for the sor hot paths.
//
// The lexer hands out byte spans into memory-mapped file data; the decoder
// converts those spans to strings for strconv without allocating, and clones
// only the values that outlive the mapping (string cells in the final table).
package strings

import (
	"unsafe"
)

// BytesToString converts a byte slice to a string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Clone returns a copy of s backed by freshly allocated memory. Use it when
// a string produced by BytesToString must outlive the underlying buffer.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

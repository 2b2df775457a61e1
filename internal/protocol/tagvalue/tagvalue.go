// Package tagvalue holds the byte-level primitives for tag=value wire records.
package tagvalue

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// NotFound is returned by FindDelimiter when the byte does not occur.
const NotFound = -1

// EqualsSign separates a tag from its value.
const EqualsSign byte = '='

var (
	ErrEmpty    = errors.New("tagvalue: empty number")
	ErrNotDigit = errors.New("tagvalue: non-digit byte in number")
	ErrRange    = errors.New("tagvalue: number out of range")
)

// SyntaxError reports a span that could not be read as an unsigned decimal.
type SyntaxError struct {
	Offset int
	Span   []byte
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d (%q)", e.Err, e.Offset, e.Span)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Token is one tag=value pair as it appeared on the wire.
// Value aliases the scanned buffer.
type Token struct {
	Tag    uint32
	Value  []byte
	Offset int
}

// FindDelimiter returns the index of the first delim at or after from.
func FindDelimiter(buf []byte, from int, delim byte) int {
	if from < 0 || from >= len(buf) {
		return NotFound
	}
	i := bytes.IndexByte(buf[from:], delim)
	if i < 0 {
		return NotFound
	}
	return from + i
}

// ParseUint reads buf[start:end] as ASCII decimal digits. Values above
// math.MaxUint32 are rejected with ErrRange.
func ParseUint(buf []byte, start, end int) (uint32, error) {
	if start >= end {
		return 0, &SyntaxError{Offset: start, Err: ErrEmpty}
	}
	var n uint64
	for i := start; i < end; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			return 0, &SyntaxError{Offset: i, Span: buf[start:end], Err: ErrNotDigit}
		}
		n = n*10 + uint64(c-'0')
		if n > math.MaxUint32 {
			return 0, &SyntaxError{Offset: start, Span: buf[start:end], Err: ErrRange}
		}
	}
	return uint32(n), nil
}

// Next scans the segment starting at from. ok is false when the segment is
// missing its '=' or its delimiter; next is the offset after the delimiter.
func Next(buf []byte, from int, delim byte) (tok Token, next int, ok bool, err error) {
	eq := FindDelimiter(buf, from, EqualsSign)
	if eq == NotFound {
		return Token{}, from, false, nil
	}
	tag, err := ParseUint(buf, from, eq)
	if err != nil {
		return Token{}, from, false, err
	}
	end := FindDelimiter(buf, eq+1, delim)
	if end == NotFound {
		return Token{Tag: tag, Offset: from}, from, false, nil
	}
	return Token{Tag: tag, Value: buf[eq+1 : end], Offset: from}, end + 1, true, nil
}

// Tokenize splits buf into tokens in wire order. Scanning stops quietly at
// the first incomplete segment.
func Tokenize(buf []byte, delim byte) ([]Token, error) {
	tokens := make([]Token, 0, bytes.Count(buf, []byte{delim}))
	for pos := 0; pos < len(buf); {
		tok, next, ok, err := Next(buf, pos, delim)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
		pos = next
	}
	return tokens, nil
}

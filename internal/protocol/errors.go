package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/fixctl/internal/protocol/schema"
)

var (
	ErrInvalidTag        = errors.New("protocol: invalid tag")
	ErrInvalidGroupCount = errors.New("protocol: invalid group count")
	ErrFieldNotFound     = errors.New("protocol: field not found")
	ErrFieldTypeMismatch = errors.New("protocol: field type mismatch")
)

// DecodeError fails a whole decode. Err is ErrInvalidTag or
// ErrInvalidGroupCount, Cause the scanner error behind it.
type DecodeError struct {
	Offset int
	Tag    schema.TagID
	Err    error
	Cause  error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrInvalidGroupCount) {
		return fmt.Sprintf("%v for tag %d at offset %d: %v", e.Err, e.Tag, e.Offset, e.Cause)
	}
	return fmt.Sprintf("%v at offset %d: %v", e.Err, e.Offset, e.Cause)
}

func (e *DecodeError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

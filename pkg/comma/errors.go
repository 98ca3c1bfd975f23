package comma

import (
	"errors"
	"fmt"

	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Sentinel errors for request validation.
var (
	ErrInvalidRange    = errors.New("invalid range")
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoBuffer        = errors.New("no buffer to repair")
)

// RangeError reports a scope range that does not fit the buffer.
type RangeError struct {
	Index int
	Range textbuf.Range
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("scope %d: range %s outside buffer of length %d", e.Index, e.Range, e.Len)
}

// Unwrap returns ErrInvalidRange.
func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// PositionError reports a tracked position that does not exist in the buffer.
type PositionError struct {
	Index    int
	Position textbuf.Position
	Lines    int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d: %s outside buffer of %d lines", e.Index, e.Position, e.Lines)
}

// Unwrap returns ErrInvalidPosition.
func (e *PositionError) Unwrap() error {
	return ErrInvalidPosition
}

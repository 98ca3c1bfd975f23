package textbuf

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when an offset or range falls outside the buffer.
var ErrOutOfBounds = errors.New("out of bounds")

// Position is a 0-based row and byte column.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// String formats the position as row:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Range is a half-open byte range [Begin, End).
type Range struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Begin
}

// Empty reports whether the range denotes a pure cursor.
func (r Range) Empty() bool {
	return r.Begin == r.End
}

// Valid reports whether the range is well-formed within a buffer of size n.
func (r Range) Valid(n int) bool {
	return r.Begin >= 0 && r.Begin <= r.End && r.End <= n
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return other.Begin >= r.Begin && other.End <= r.End
}

// Expand grows the range by delta on both sides without clamping.
func (r Range) Expand(delta int) Range {
	return Range{Begin: r.Begin - delta, End: r.End + delta}
}

// Shift moves the range to account for an edit at offset that changed the
// buffer length by delta. Inserts at or before Begin move the whole range;
// inserts inside it grow it. Deletions shrink it and never invert it.
func (r Range) Shift(offset, delta int) Range {
	shift := func(pos int) int {
		switch {
		case delta >= 0 && pos >= offset:
			return pos + delta
		case delta < 0 && pos >= offset-delta:
			return pos + delta
		case delta < 0 && pos > offset:
			return offset
		default:
			return pos
		}
	}

	if delta >= 0 && r.Begin == offset && !r.Empty() {
		// Text inserted at the start of a selection belongs to the selection.
		return Range{Begin: r.Begin, End: shift(r.End)}
	}
	return Range{Begin: shift(r.Begin), End: shift(r.End)}
}

// String formats the range as [begin:end).
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Begin, r.End)
}

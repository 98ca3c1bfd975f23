// Package textbuf provides the mutable text buffer the comma repair engine
// edits, together with the offset, position and range types used to address it.
package textbuf

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
)

// Buffer is a mutable byte buffer with a line table.
// Offsets into a Buffer are only valid until the next mutation.
type Buffer struct {
	content  []byte
	lines    []lineInfo
	revision uint64

	last    Edit
	hasLast bool
}

// Edit describes one mutation: Removed bytes at Offset were replaced by
// Inserted bytes.
type Edit struct {
	Offset   int
	Removed  int
	Inserted int
}

// lineInfo describes one line of the buffer.
type lineInfo struct {
	// start is the byte index of the first byte of the line.
	start int

	// newline is the byte index where the line terminator (LF or CRLF) begins.
	// For the last line without a terminator it equals the content length.
	newline int

	// end is the byte index just past the line terminator.
	end int
}

// New creates a Buffer holding a private copy of content.
func New(content []byte) *Buffer {
	buf := &Buffer{content: append([]byte(nil), content...)}
	buf.reindex()
	return buf
}

// NewString creates a Buffer from a string.
func NewString(content string) *Buffer {
	return New([]byte(content))
}

// Bytes returns the current content. The slice must not be modified and is
// invalidated by the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.content
}

// String returns the current content as a string.
func (b *Buffer) String() string {
	return string(b.content)
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.content)
}

// At returns the byte at offset.
func (b *Buffer) At(offset int) byte {
	return b.content[offset]
}

// Revision returns a counter incremented by every mutation. Anything derived
// from the content (classifications, offsets) is stale once it changes.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// Insert inserts text at offset, shifting everything at or after offset.
func (b *Buffer) Insert(offset int, text string) error {
	if offset < 0 || offset > len(b.content) {
		return fmt.Errorf("insert at %d: %w", offset, ErrOutOfBounds)
	}
	if text == "" {
		return nil
	}

	b.content = slices.Insert(b.content, offset, []byte(text)...)
	b.mutated(Edit{Offset: offset, Inserted: len(text)}, hasLineBreak([]byte(text)))
	return nil
}

// Delete removes the bytes in [begin, end).
func (b *Buffer) Delete(begin, end int) error {
	if begin < 0 || end < begin || end > len(b.content) {
		return fmt.Errorf("delete [%d:%d]: %w", begin, end, ErrOutOfBounds)
	}
	if begin == end {
		return nil
	}

	lineBreak := hasLineBreak(b.content[begin:end])
	b.content = slices.Delete(b.content, begin, end)
	b.mutated(Edit{Offset: begin, Removed: end - begin}, lineBreak)
	return nil
}

// Replace swaps the whole content for content.
func (b *Buffer) Replace(content []byte) {
	b.content = append(b.content[:0:0], content...)
	b.revision++
	b.hasLast = false
	b.reindex()
}

// LastEdit returns the mutation that produced the current revision. It
// reports false for a new buffer and after Replace.
func (b *Buffer) LastEdit() (Edit, bool) {
	return b.last, b.hasLast
}

// mutated records edit and brings the line table up to date. An edit that
// adds or removes no line break, and does not land right after a CR, only
// moves the lines after it.
func (b *Buffer) mutated(edit Edit, lineBreak bool) {
	b.revision++
	b.last, b.hasLast = edit, true

	if lineBreak || (edit.Offset > 0 && b.content[edit.Offset-1] == '\r') {
		b.reindex()
		return
	}

	delta := edit.Inserted - edit.Removed
	row := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].end > edit.Offset
	})
	row = min(row, len(b.lines)-1)
	b.lines[row].newline += delta
	b.lines[row].end += delta
	for idx := row + 1; idx < len(b.lines); idx++ {
		b.lines[idx].start += delta
		b.lines[idx].newline += delta
		b.lines[idx].end += delta
	}
}

func hasLineBreak(text []byte) bool {
	return bytes.ContainsAny(text, "\r\n")
}

// reindex rebuilds the line table. LF and CRLF terminators are recognised.
func (b *Buffer) reindex() {
	b.lines = b.lines[:0]
	lineStart := 0

	for idx, char := range b.content {
		if char != '\n' {
			continue
		}
		newline := idx
		if idx > lineStart && b.content[idx-1] == '\r' {
			newline = idx - 1
		}
		b.lines = append(b.lines, lineInfo{start: lineStart, newline: newline, end: idx + 1})
		lineStart = idx + 1
	}

	b.lines = append(b.lines, lineInfo{start: lineStart, newline: len(b.content), end: len(b.content)})
}

// LineCount returns the number of lines. An empty buffer has one empty line.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineLen returns the length of row excluding its terminator, or -1 when
// row is out of range.
func (b *Buffer) LineLen(row int) int {
	if row < 0 || row >= len(b.lines) {
		return -1
	}
	line := b.lines[row]
	return line.newline - line.start
}

// Line returns the content of row excluding its terminator.
func (b *Buffer) Line(row int) []byte {
	if row < 0 || row >= len(b.lines) {
		return nil
	}
	line := b.lines[row]
	return b.content[line.start:line.newline]
}

// RowCol converts an offset into a 0-based position. Offsets past the end
// resolve to the end of the last line.
func (b *Buffer) RowCol(offset int) Position {
	if offset <= 0 {
		return Position{}
	}
	if offset >= len(b.content) {
		last := len(b.lines) - 1
		return Position{Row: last, Column: len(b.content) - b.lines[last].start}
	}

	row := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].end > offset
	})
	return Position{Row: row, Column: offset - b.lines[row].start}
}

// Offset converts a 0-based position into a byte offset. The column may point
// at the end of the line but not past it.
func (b *Buffer) Offset(pos Position) (int, bool) {
	if pos.Row < 0 || pos.Row >= len(b.lines) || pos.Column < 0 {
		return 0, false
	}
	line := b.lines[pos.Row]
	if pos.Column > line.newline-line.start {
		return 0, false
	}
	return line.start + pos.Column, true
}

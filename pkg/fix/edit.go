// Package fix provides text edit types and application logic for comma repairs.
package fix

import "fmt"

// TextEdit represents a single text replacement in a buffer.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int `json:"startOffset"`

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int `json:"endOffset"`

	// NewText is the replacement text.
	NewText string `json:"newText"`
}

// Delta returns how much the edit changes the content length.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.EndOffset - e.StartOffset)
}

// IsInsert reports whether the edit only adds text.
func (e TextEdit) IsInsert() bool {
	return e.StartOffset == e.EndOffset && e.NewText != ""
}

// IsDelete reports whether the edit only removes text.
func (e TextEdit) IsDelete() bool {
	return e.StartOffset < e.EndOffset && e.NewText == ""
}

// String describes the edit for logs and test failures.
func (e TextEdit) String() string {
	switch {
	case e.IsInsert():
		return fmt.Sprintf("insert %q at %d", e.NewText, e.StartOffset)
	case e.IsDelete():
		return fmt.Sprintf("delete [%d:%d]", e.StartOffset, e.EndOffset)
	default:
		return fmt.Sprintf("replace [%d:%d] with %q", e.StartOffset, e.EndOffset, e.NewText)
	}
}

// EditBuilder accumulates text edits in the order they are made.
type EditBuilder struct {
	Edits []TextEdit
}

// NewEditBuilder creates a new EditBuilder.
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{
		Edits: make([]TextEdit, 0),
	}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) {
	b.Edits = append(b.Edits, TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     newText,
	})
}

// Insert adds an edit that inserts text at the given offset.
func (b *EditBuilder) Insert(offset int, text string) {
	b.ReplaceRange(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *EditBuilder) Delete(start, end int) {
	b.ReplaceRange(start, end, "")
}

// Len returns the number of accumulated edits.
func (b *EditBuilder) Len() int {
	return len(b.Edits)
}

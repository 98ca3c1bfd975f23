package fix

import (
	"slices"
	"sort"
)

// ApplyEdits returns content with edits applied. The edits must be sorted
// and non-overlapping, as PrepareEdits leaves them, with offsets into the
// original content. content itself is never modified.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	size := len(content)
	for _, e := range edits {
		size += e.Delta()
	}

	out := make([]byte, 0, size)
	prev := 0
	for _, e := range edits {
		out = append(out, content[prev:e.StartOffset]...)
		out = append(out, e.NewText...)
		prev = e.EndOffset
	}
	return append(out, content[prev:]...)
}

// Rebase converts edits whose offsets refer to the original content into
// the sequential form produced by applying them one at a time, where each
// edit's offsets account for every earlier edit. Edits must be sorted.
func Rebase(edits []TextEdit) []TextEdit {
	rebased := make([]TextEdit, len(edits))
	shift := 0
	for idx, e := range edits {
		rebased[idx] = TextEdit{
			StartOffset: e.StartOffset + shift,
			EndOffset:   e.EndOffset + shift,
			NewText:     e.NewText,
		}
		shift += e.Delta()
	}
	return rebased
}

// Unrebase is the inverse of Rebase: it takes edits in application order,
// each relative to the content left by the previous ones, and returns them
// against the original content, sorted by position. Edits that land inside
// text inserted by an earlier edit are anchored at that edit's start.
func Unrebase(edits []TextEdit) []TextEdit {
	original := make([]TextEdit, 0, len(edits))
	for _, e := range edits {
		start := toOriginal(original, e.StartOffset)
		end := max(start, toOriginal(original, e.EndOffset))
		mapped := TextEdit{StartOffset: start, EndOffset: end, NewText: e.NewText}

		idx := sort.Search(len(original), func(i int) bool {
			return original[i].StartOffset > start
		})
		original = slices.Insert(original, idx, mapped)
	}
	return original
}

// toOriginal maps an offset in the current content back through applied,
// which holds original-coordinate edits sorted by start.
func toOriginal(applied []TextEdit, offset int) int {
	shift := 0
	for _, a := range applied {
		current := a.StartOffset + shift
		if offset <= current {
			break
		}
		if offset < current+len(a.NewText) {
			return a.StartOffset
		}
		shift += a.Delta()
	}
	return offset - shift
}

package comma

import (
	"slices"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// envelope is the tolerance around a selection within which matches are
// allowed.
const envelope = 1

// scope restricts edits to caller selections. An inactive scope allows
// everything: no selections, or only empty ones, means the whole buffer.
type scope struct {
	ranges []textbuf.Range
	active bool
}

func newScope(ranges []textbuf.Range) *scope {
	sc := &scope{ranges: append([]textbuf.Range(nil), ranges...)}
	for _, r := range ranges {
		if !r.Empty() {
			sc.active = true
			break
		}
	}
	return sc
}

// allows reports whether match lies inside the envelope of at least one
// non-empty selection.
func (s *scope) allows(match textbuf.Range) bool {
	if !s.active {
		return true
	}
	for _, r := range s.ranges {
		if !r.Empty() && r.Expand(envelope).Contains(match) {
			return true
		}
	}
	return false
}

// shift keeps the selections over the same text after an edit.
func (s *scope) shift(offset, delta int) {
	for idx, r := range s.ranges {
		s.ranges[idx] = r.Shift(offset, delta)
	}
}

// MatchAt returns the candidate that edit repairs in content: the
// missing-comma match ending the value just before an inserted comma, or the
// trailing-comma match starting at a deleted one.
func (e *Engine) MatchAt(content []byte, edit fix.TextEdit) (Match, bool) {
	kind, pattern, start := MissingComma, e.pats.missingAt, edit.StartOffset-1
	if !edit.IsInsert() {
		kind, pattern, start = TrailingComma, e.pats.trailingAt, edit.StartOffset
	}
	if start < 0 || start >= len(content) {
		return Match{}, false
	}

	loc := pattern.FindIndex(content[start:])
	if loc == nil {
		return Match{}, false
	}
	r := textbuf.Range{Begin: start, End: start + loc[1]}
	return Match{Kind: kind, Range: r, Text: string(content[r.Begin:r.End])}, true
}

// KeepInScope filters the edits of a whole-buffer repair of content down to
// those a repair limited to selections would make. edits are simultaneous
// edits against content, sorted by offset. They are replayed right to left
// so each match is judged with the accepted edits after it already applied.
func (e *Engine) KeepInScope(content []byte, selections []textbuf.Range, edits []fix.TextEdit) []fix.TextEdit {
	sc := newScope(selections)
	if !sc.active {
		return edits
	}

	work := slices.Clone(content)
	var kept []fix.TextEdit
	for _, edit := range slices.Backward(edits) {
		match, ok := e.MatchAt(work, edit)
		if !ok || !sc.allows(match.Range) {
			continue
		}
		if edit.IsInsert() {
			work = slices.Insert(work, edit.StartOffset, []byte(edit.NewText)...)
		} else {
			work = slices.Delete(work, edit.StartOffset, edit.EndOffset)
		}
		sc.shift(edit.StartOffset, edit.Delta())
		kept = append(kept, edit)
	}
	slices.Reverse(kept)
	return kept
}

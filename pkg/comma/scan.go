package comma

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Kind identifies which pass produced a Match.
type Kind int

const (
	// MissingComma is a join between two sibling values with no comma.
	MissingComma Kind = iota
	// TrailingComma is a comma directly followed by a closing bracket.
	TrailingComma
)

// String returns the kind name.
func (k Kind) String() string {
	if k == TrailingComma {
		return "trailing-comma"
	}
	return "missing-comma"
}

// Match is a candidate found by one of the scanner patterns.
type Match struct {
	Kind  Kind
	Range textbuf.Range
	Text  string
}

// scanner runs both passes over one buffer, applying each accepted edit
// before looking for the next candidate.
type scanner struct {
	buf      *textbuf.Buffer
	classify oracle.Classifier
	nester   oracle.Nester
	pats     *patterns
	scope    *scope
	logger   *log.Logger
	edits    *fix.EditBuilder
}

func (s *scanner) run() error {
	if err := s.pass(MissingComma); err != nil {
		return err
	}
	return s.pass(TrailingComma)
}

// pass searches forward from an explicit cursor. The cursor moves one byte
// past the start of every match, accepted or not, always in the coordinates
// of the current buffer. A deleted comma may expose an earlier one to the
// same closer, so after a deletion the cursor steps back over the commas,
// whitespace and comments before it.
func (s *scanner) pass(kind Kind) error {
	pattern := s.pats.missing
	if kind == TrailingComma {
		pattern = s.pats.trailing
	}

	for cursor := 0; cursor < s.buf.Len(); {
		loc := pattern.FindIndex(s.buf.Bytes()[cursor:])
		if loc == nil {
			return nil
		}
		match := Match{
			Kind:  kind,
			Range: textbuf.Range{Begin: cursor + loc[0], End: cursor + loc[1]},
		}
		match.Text = string(s.buf.Bytes()[match.Range.Begin:match.Range.End])
		cursor = match.Range.Begin + 1

		edit, ok := s.decide(match)
		if !ok {
			continue
		}
		if err := s.apply(edit); err != nil {
			return err
		}
		s.logger.Debug("applied edit", "kind", kind, "edit", edit)
		if kind == TrailingComma {
			cursor = s.rewind(match.Range.Begin)
		}
	}
	return nil
}

// rewind returns the start of the run of commas, whitespace and comments that
// ends at offset.
func (s *scanner) rewind(offset int) int {
	for ; offset > 0; offset-- {
		switch s.class(offset - 1) {
		case oracle.Whitespace, oracle.Comment:
		case oracle.Punctuation:
			if s.buf.At(offset-1) != ',' {
				return offset
			}
		default:
			return offset
		}
	}
	return offset
}

// decide confirms a match against the oracle and the selection scope and
// returns the edit it calls for. The whole match must lie in the scope, not
// just the byte being edited.
func (s *scanner) decide(match Match) (fix.TextEdit, bool) {
	if match.Kind == TrailingComma {
		comma, closer := match.Range.Begin, match.Range.End-1
		if s.class(comma) != oracle.Punctuation || s.class(closer) != oracle.Punctuation {
			return fix.TextEdit{}, false
		}
		if !s.scope.allows(match.Range) {
			return fix.TextEdit{}, false
		}
		return fix.TextEdit{StartOffset: comma, EndOffset: comma + 1}, true
	}

	left, opener := match.Range.Begin, match.Range.End-1
	if !s.closesValue(left) || !s.opensValue(opener) {
		return fix.TextEdit{}, false
	}
	if s.nester != nil && s.nester.Depth(s.buf, left) == 0 {
		return fix.TextEdit{}, false
	}
	if !s.scope.allows(match.Range) {
		return fix.TextEdit{}, false
	}
	return fix.TextEdit{StartOffset: left + 1, EndOffset: left + 1, NewText: ","}, true
}

func (s *scanner) closesValue(offset int) bool {
	switch s.buf.At(offset) {
	case '}', ']':
		return s.class(offset) == oracle.Punctuation
	case '"':
		return s.class(offset) == oracle.StringEnd
	default:
		return s.class(offset) == oracle.LanguageLiteral
	}
}

func (s *scanner) opensValue(offset int) bool {
	if s.buf.At(offset) == '"' {
		return s.class(offset) == oracle.StringBegin
	}
	return s.class(offset) == oracle.Punctuation
}

func (s *scanner) class(offset int) oracle.TokenClass {
	return s.classify.Classify(s.buf, offset)
}

func (s *scanner) apply(edit fix.TextEdit) error {
	var err error
	if edit.IsInsert() {
		err = s.buf.Insert(edit.StartOffset, edit.NewText)
	} else {
		err = s.buf.Delete(edit.StartOffset, edit.EndOffset)
	}
	if err != nil {
		return err
	}
	s.scope.shift(edit.StartOffset, edit.Delta())
	s.edits.ReplaceRange(edit.StartOffset, edit.EndOffset, edit.NewText)
	return nil
}

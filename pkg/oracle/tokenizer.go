package oracle

import (
	"regexp"
	"slices"
	"sync"

	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// numberPattern matches a JSON number in full.
var numberPattern = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// Compile-time interface checks.
var (
	_ Classifier = (*Tokenizer)(nil)
	_ Nester     = (*Tokenizer)(nil)
)

// Tokenizer is a JSON-with-comments lexer. It classifies a whole buffer in one
// pass and memoizes the result for the buffer revision it was computed on.
// When the buffer has moved on by exactly one edit, only the tokens around
// that edit are lexed again. It is safe for concurrent use, though the cache
// only holds one buffer.
type Tokenizer struct {
	mu       sync.Mutex
	buf      *textbuf.Buffer
	revision uint64
	snap     *Snapshot
}

// NewTokenizer creates a Tokenizer with an empty cache.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Classify implements Classifier.
func (t *Tokenizer) Classify(buf *textbuf.Buffer, offset int) TokenClass {
	return t.snapshot(buf).ClassAt(offset)
}

// Depth implements Nester.
func (t *Tokenizer) Depth(buf *textbuf.Buffer, offset int) int {
	return t.snapshot(buf).DepthAt(offset)
}

func (t *Tokenizer) snapshot(buf *textbuf.Buffer) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.snap != nil && t.buf == buf && t.revision == buf.Revision():
		return t.snap
	case t.snap != nil && t.buf == buf && t.revision+1 == buf.Revision():
		if edit, ok := buf.LastEdit(); ok {
			t.snap.update(buf.Bytes(), edit)
			break
		}
		t.snap = Lex(buf.Bytes())
	default:
		t.snap = Lex(buf.Bytes())
	}
	t.buf = buf
	t.revision = buf.Revision()
	return t.snap
}

// Snapshot is the classification of one immutable piece of content.
type Snapshot struct {
	classes []TokenClass
	depths  []int32
}

// ClassAt returns the class of the byte at offset, or Other when out of range.
func (s *Snapshot) ClassAt(offset int) TokenClass {
	if offset < 0 || offset >= len(s.classes) {
		return Other
	}
	return s.classes[offset]
}

// DepthAt returns the nesting depth after the byte at offset.
func (s *Snapshot) DepthAt(offset int) int {
	if offset < 0 || offset >= len(s.depths) {
		return 0
	}
	return int(s.depths[offset])
}

// Lex classifies every byte of content.
//
// Strings end at their closing quote or, when unterminated, just before the
// next line break, so a stray quote cannot swallow the rest of a document.
// Closers never drive the depth below zero.
func Lex(content []byte) *Snapshot {
	lex := &lexer{
		content: content,
		classes: make([]TokenClass, len(content)),
		depths:  make([]int32, len(content)),
		resync:  -1,
	}
	lex.run()
	return &Snapshot{classes: lex.classes, depths: lex.depths}
}

// update brings the snapshot in line with content, which differs from the
// content it was lexed from by edit. Lexing restarts after the last whitespace
// or punctuation byte before the edit, where no token is open, and stops
// once it is past the edit and back in step with the old classification.
func (s *Snapshot) update(content []byte, edit textbuf.Edit) {
	end := edit.Offset + edit.Removed
	s.classes = slices.Delete(s.classes, edit.Offset, end)
	s.depths = slices.Delete(s.depths, edit.Offset, end)
	s.classes = slices.Insert(s.classes, edit.Offset, make([]TokenClass, edit.Inserted)...)
	s.depths = slices.Insert(s.depths, edit.Offset, make([]int32, edit.Inserted)...)

	start := edit.Offset
	for start > 0 && !isBoundary(s.classes[start-1]) {
		start--
	}
	var depth int32
	if start > 0 {
		depth = s.depths[start-1]
	}

	lex := &lexer{
		content: content,
		classes: s.classes,
		depths:  s.depths,
		depth:   depth,
		pos:     start,
		resync:  edit.Offset + edit.Inserted,
	}
	lex.run()
}

// isBoundary reports whether a byte of class c is a whole token on its own,
// so the lexer is between tokens right after it.
func isBoundary(c TokenClass) bool {
	return c == Whitespace || c == Punctuation
}

type lexer struct {
	content []byte
	classes []TokenClass
	depths  []int32
	depth   int32
	pos     int

	// resync is the first offset of unchanged content when relexing after an
	// edit, or -1. oldClass and oldDepth hold what the last marked byte was
	// classified as before it was overwritten.
	resync   int
	oldClass TokenClass
	oldDepth int32
}

func (l *lexer) run() {
	for l.pos < len(l.content) {
		if l.resync >= 0 && l.pos > l.resync && l.inStep() {
			return
		}
		char := l.content[l.pos]
		switch {
		case isSpace(char):
			l.mark(l.pos, l.pos+1, Whitespace)
		case char == '"':
			l.lexString()
			continue
		case char == '/' && l.peek(1) == '/':
			l.lexLineComment()
			continue
		case char == '/' && l.peek(1) == '*':
			l.lexBlockComment()
			continue
		case char == '{' || char == '[':
			l.depth++
			l.mark(l.pos, l.pos+1, Punctuation)
		case char == '}' || char == ']':
			if l.depth > 0 {
				l.depth--
			}
			l.mark(l.pos, l.pos+1, Punctuation)
		case char == ',' || char == ':':
			l.mark(l.pos, l.pos+1, Punctuation)
		case isWordByte(char):
			l.lexWord()
			continue
		default:
			l.mark(l.pos, l.pos+1, Other)
		}
		l.pos++
	}
}

func (l *lexer) peek(ahead int) byte {
	if l.pos+ahead >= len(l.content) {
		return 0
	}
	return l.content[l.pos+ahead]
}

// inStep reports whether the byte just lexed ends a token exactly as it did
// before the edit, at the same depth. From there on the old classification
// still holds.
func (l *lexer) inStep() bool {
	prev := l.pos - 1
	return isBoundary(l.classes[prev]) && l.classes[prev] == l.oldClass && l.depths[prev] == l.oldDepth
}

// mark classifies [from, to) and records the current depth for it.
func (l *lexer) mark(from, to int, class TokenClass) {
	if to > from {
		l.oldClass, l.oldDepth = l.classes[to-1], l.depths[to-1]
	}
	for idx := from; idx < to; idx++ {
		l.classes[idx] = class
		l.depths[idx] = l.depth
	}
}

func (l *lexer) lexString() {
	l.mark(l.pos, l.pos+1, StringBegin)
	l.pos++

	for l.pos < len(l.content) {
		switch l.content[l.pos] {
		case '\\':
			end := min(l.pos+2, len(l.content))
			if end > l.pos+1 && l.content[l.pos+1] == '\n' {
				end = l.pos + 1
			}
			l.mark(l.pos, end, StringOther)
			l.pos = end
		case '"':
			l.mark(l.pos, l.pos+1, StringEnd)
			l.pos++
			return
		case '\n':
			return
		default:
			l.mark(l.pos, l.pos+1, StringOther)
			l.pos++
		}
	}
}

func (l *lexer) lexLineComment() {
	start := l.pos
	for l.pos < len(l.content) && l.content[l.pos] != '\n' {
		l.pos++
	}
	l.mark(start, l.pos, Comment)
}

func (l *lexer) lexBlockComment() {
	start := l.pos
	l.pos += 2
	for l.pos < len(l.content) {
		if l.content[l.pos] == '*' && l.peek(1) == '/' {
			l.pos += 2
			break
		}
		l.pos++
	}
	l.pos = min(l.pos, len(l.content))
	l.mark(start, l.pos, Comment)
}

func (l *lexer) lexWord() {
	start := l.pos
	for l.pos < len(l.content) && isWordByte(l.content[l.pos]) {
		l.pos++
	}

	class := Other
	if isLiteral(l.content[start:l.pos]) {
		class = LanguageLiteral
	}
	l.mark(start, l.pos, class)
}

func isLiteral(word []byte) bool {
	switch string(word) {
	case "true", "false", "null":
		return true
	}
	return numberPattern.Match(word)
}

func isSpace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}

// isWordByte reports whether char can be part of a bare literal or identifier.
func isWordByte(char byte) bool {
	switch {
	case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char >= '0' && char <= '9':
		return true
	case char == '_' || char == '.' || char == '+' || char == '-' || char == '$':
		return true
	case char >= 0x80:
		return true
	default:
		return false
	}
}

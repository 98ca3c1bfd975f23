// Package oracle classifies byte offsets of JSON-like text by lexical role.
//
// The comma repair engine never looks at raw characters alone: every candidate
// edit is confirmed against a Classifier. This package defines that contract and
// ships Tokenizer, an embedded JSON-with-comments lexer implementing it.
package oracle

import "github.com/yaklabco/jsoncomma/pkg/textbuf"

// TokenClass is the lexical role of a single byte offset.
type TokenClass int

const (
	// Other covers anything not listed below, including illegal characters.
	Other TokenClass = iota

	// Punctuation is structural punctuation outside strings and comments:
	// { } [ ] , :
	Punctuation

	// StringBegin is the opening quote of a string.
	StringBegin

	// StringEnd is the closing quote of a string.
	StringEnd

	// StringOther is any byte inside a string that is not one of its quotes.
	StringOther

	// Comment is any byte of a line or block comment.
	Comment

	// LanguageLiteral is any byte of true, false, null or a number.
	LanguageLiteral

	// Whitespace is insignificant whitespace between tokens.
	Whitespace
)

// String returns the class name.
func (c TokenClass) String() string {
	switch c {
	case Punctuation:
		return "punctuation"
	case StringBegin:
		return "string.begin"
	case StringEnd:
		return "string.end"
	case StringOther:
		return "string"
	case Comment:
		return "comment"
	case LanguageLiteral:
		return "literal"
	case Whitespace:
		return "whitespace"
	default:
		return "other"
	}
}

// Classifier reports the lexical role of an offset in the buffer's current
// content. Implementations must not return classifications derived from an
// earlier revision of the buffer.
type Classifier interface {
	Classify(buf *textbuf.Buffer, offset int) TokenClass
}

// Nester is implemented by classifiers that also track container nesting.
// Depth returns the number of open objects and arrays after the byte at offset.
type Nester interface {
	Depth(buf *textbuf.Buffer, offset int) int
}

package comma

import (
	"regexp"
	"strings"
)

// DefaultLiteralTails is the set of bytes that can end a JSON literal:
// number digits, the "e" of true and false, and the "l" of null.
const DefaultLiteralTails = "0123456789el"

// commentPattern matches one line comment (through its newline) or one block
// comment. A block comment never extends past its first closing "*/".
const commentPattern = `(?://[^\n]*(?:\n|$)|/\*[^*]*\*+(?:[^/*][^*]*\*+)*/)`

// Grammar is the language data the scanner patterns are built from.
type Grammar struct {
	// LiteralTails lists the bytes that may end a value on the left side of
	// a missing comma, in addition to closing brackets and quotes.
	LiteralTails string `json:"literalTails" yaml:"literal_tails"`
}

// DefaultGrammar returns the grammar for JSON with comments.
func DefaultGrammar() Grammar {
	return Grammar{LiteralTails: DefaultLiteralTails}
}

// patterns holds the compiled scanner expressions for a Grammar. The *At
// variants only match at the start of their input.
type patterns struct {
	missing    *regexp.Regexp
	trailing   *regexp.Regexp
	missingAt  *regexp.Regexp
	trailingAt *regexp.Regexp
}

func (g Grammar) compile() *patterns {
	gap := `\s*(?:` + commentPattern + `\s*)*`
	missing := `[}\]"` + classEscape(g.LiteralTails) + `]` + gap + `["{\[]`
	trailing := `,` + gap + `[}\]]`
	return &patterns{
		missing:    regexp.MustCompile(missing),
		trailing:   regexp.MustCompile(trailing),
		missingAt:  regexp.MustCompile(`^(?:` + missing + `)`),
		trailingAt: regexp.MustCompile(`^(?:` + trailing + `)`),
	}
}

// classEscape escapes bytes that are special inside a bracket expression.
func classEscape(set string) string {
	var out strings.Builder
	for _, char := range set {
		switch char {
		case '\\', ']', '[', '^', '-':
			out.WriteByte('\\')
		}
		out.WriteRune(char)
	}
	return out.String()
}

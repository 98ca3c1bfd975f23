package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// sourceIndent aligns source context under a repair line.
const sourceIndent = "      "

// tabWidth matches lipgloss's default tab expansion.
const tabWidth = 4

// FormatRepair formats one comma edit located at pos (zero-based) in the
// original file. line is the original source line, or "" to omit context.
func (s *Styles) FormatRepair(path string, pos textbuf.Position, edit fix.TextEdit, line string) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(path), pos.Row+1, pos.Column+1)

	action := s.Insert.Render("insert comma")
	if !edit.IsInsert() {
		action = s.Delete.Render("remove comma")
	}

	builder.WriteString("  " + s.Location.Render(location) + "  " + action + "\n")
	if line != "" {
		builder.WriteString(s.FormatSourceContext(line, pos.Column))
	}
	return builder.String()
}

// FormatSourceContext formats a source line with a caret under column
// (zero-based).
func (s *Styles) FormatSourceContext(line string, column int) string {
	line = strings.TrimRight(line, "\r\n")
	column = max(0, min(column, len(line)))

	// Rendering expands tabs, so the caret padding does the same.
	var pad strings.Builder
	for _, char := range line[:column] {
		if char == '\t' {
			pad.WriteString(strings.Repeat(" ", tabWidth))
		} else {
			pad.WriteByte(' ')
		}
	}

	return sourceIndent + s.SourceLine.Render(line) + "\n" +
		sourceIndent + pad.String() + s.Caret.Render("^") + "\n"
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, edits int) string {
	header := s.FilePath.Render(path)
	if edits > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", edits, plural(edits, "repair", "repairs")))
	}
	return header
}

// FormatError formats a per-file failure.
func (s *Styles) FormatError(path string, err error) string {
	return s.FilePath.Render(path) + ": " + s.Error.Render("error: "+err.Error()) + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

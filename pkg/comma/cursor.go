package comma

import "github.com/yaklabco/jsoncomma/pkg/textbuf"

// Clamp moves positions recorded before an edit onto the buffer as it is now.
// Rows are kept. A column past the end of its row is pulled back to the row's
// length; other columns are left alone.
func Clamp(buf *textbuf.Buffer, positions []textbuf.Position) []textbuf.Position {
	out := make([]textbuf.Position, len(positions))
	for idx, pos := range positions {
		if width := buf.LineLen(pos.Row); width >= 0 && pos.Column > width {
			pos.Column = width
		}
		out[idx] = pos
	}
	return out
}

package textbuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

func TestBufferEdits(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString(`{"a":1 "b":2,}`)
	start := buf.Revision()

	require.NoError(t, buf.Insert(6, ","))
	assert.Equal(t, `{"a":1, "b":2,}`, buf.String())
	assert.Greater(t, buf.Revision(), start)

	rev := buf.Revision()
	require.NoError(t, buf.Delete(13, 14))
	assert.Equal(t, `{"a":1, "b":2}`, buf.String())
	assert.Greater(t, buf.Revision(), rev)

	rev = buf.Revision()
	require.NoError(t, buf.Insert(3, ""))
	require.NoError(t, buf.Delete(3, 3))
	assert.Equal(t, rev, buf.Revision(), "empty edits must not bump the revision")

	require.ErrorIs(t, buf.Insert(-1, ","), textbuf.ErrOutOfBounds)
	require.ErrorIs(t, buf.Insert(buf.Len()+1, ","), textbuf.ErrOutOfBounds)
	require.ErrorIs(t, buf.Delete(4, 2), textbuf.ErrOutOfBounds)
	require.ErrorIs(t, buf.Delete(0, buf.Len()+1), textbuf.ErrOutOfBounds)
}

func TestBufferLines(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("[\r\n  1,\n  2\n]")

	require.Equal(t, 4, buf.LineCount())
	assert.Equal(t, 1, buf.LineLen(0))
	assert.Equal(t, 4, buf.LineLen(1))
	assert.Equal(t, "  2", string(buf.Line(2)))
	assert.Equal(t, 1, buf.LineLen(3))
	assert.Equal(t, -1, buf.LineLen(4))
	assert.Equal(t, -1, buf.LineLen(-1))
	assert.Nil(t, buf.Line(9))

	assert.Equal(t, 1, textbuf.NewString("").LineCount())
	assert.Equal(t, 0, textbuf.NewString("").LineLen(0))
}

func TestBufferRowCol(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("ab\r\ncd\nef")

	tests := []struct {
		offset int
		want   textbuf.Position
	}{
		{offset: 0, want: textbuf.Position{Row: 0, Column: 0}},
		{offset: 2, want: textbuf.Position{Row: 0, Column: 2}},
		{offset: 4, want: textbuf.Position{Row: 1, Column: 0}},
		{offset: 6, want: textbuf.Position{Row: 1, Column: 2}},
		{offset: 8, want: textbuf.Position{Row: 2, Column: 1}},
		{offset: 42, want: textbuf.Position{Row: 2, Column: 2}},
	}

	for _, tt := range tests {
		got := buf.RowCol(tt.offset)
		assert.Equal(t, tt.want, got, "RowCol(%d)", tt.offset)

		if tt.offset <= buf.Len() {
			offset, ok := buf.Offset(got)
			require.True(t, ok)
			assert.Equal(t, tt.offset, offset)
		}
	}

	_, ok := buf.Offset(textbuf.Position{Row: 0, Column: 3})
	assert.False(t, ok, "column past line end")
	_, ok = buf.Offset(textbuf.Position{Row: 3})
	assert.False(t, ok, "row past last line")
}

func TestBufferReindexAfterEdit(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("[\n1,\n]")
	require.NoError(t, buf.Delete(3, 4))

	assert.Equal(t, 3, buf.LineCount())
	assert.Equal(t, 1, buf.LineLen(1))

	buf.Replace([]byte("{}"))
	assert.Equal(t, 1, buf.LineCount())
	assert.Equal(t, "{}", buf.String())
}

func TestBufferLastEdit(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("[1 2,]")
	_, ok := buf.LastEdit()
	assert.False(t, ok)

	require.NoError(t, buf.Insert(2, ","))
	edit, ok := buf.LastEdit()
	require.True(t, ok)
	assert.Equal(t, textbuf.Edit{Offset: 2, Inserted: 1}, edit)

	require.NoError(t, buf.Delete(5, 6))
	edit, ok = buf.LastEdit()
	require.True(t, ok)
	assert.Equal(t, textbuf.Edit{Offset: 5, Removed: 1}, edit)

	buf.Replace([]byte("[]"))
	_, ok = buf.LastEdit()
	assert.False(t, ok, "a replace is not a single edit")
}

func TestBufferLinesFollowEdits(t *testing.T) {
	t.Parallel()

	type edit struct {
		offset, end int
		text        string
	}

	tests := []struct {
		name  string
		input string
		edits []edit
	}{
		{
			name:  "within lines",
			input: "[\n  1 2\n  3,\n]",
			edits: []edit{{offset: 5, text: ","}, {offset: 12, end: 13}, {offset: 0, text: "  "}},
		},
		{
			name:  "adding and removing line breaks",
			input: "[1,\n2]",
			edits: []edit{{offset: 3, text: "\n\n"}, {offset: 3, end: 5}, {offset: 6, text: "\r\n"}},
		},
		{
			name:  "between carriage return and newline",
			input: "[1\r\n]",
			edits: []edit{{offset: 3, text: ","}, {offset: 3, end: 4}, {offset: 2, end: 3}},
		},
		{
			name:  "at end of buffer",
			input: "[1\n",
			edits: []edit{{offset: 3, text: "]"}, {offset: 4, text: " "}, {offset: 3, end: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := textbuf.NewString(tt.input)
			for step, e := range tt.edits {
				if e.text != "" {
					require.NoError(t, buf.Insert(e.offset, e.text))
				} else {
					require.NoError(t, buf.Delete(e.offset, e.end))
				}

				fresh := textbuf.NewString(buf.String())
				require.Equal(t, fresh.LineCount(), buf.LineCount(), "step %d: %q", step, buf.String())
				for row := range fresh.LineCount() {
					assert.Equal(t, fresh.LineLen(row), buf.LineLen(row), "step %d row %d: %q", step, row, buf.String())
				}
				for offset := range buf.Len() + 1 {
					assert.Equal(t, fresh.RowCol(offset), buf.RowCol(offset), "step %d offset %d: %q", step, offset, buf.String())
				}
			}
		})
	}
}

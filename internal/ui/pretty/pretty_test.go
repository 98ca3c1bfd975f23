package pretty_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/internal/ui/pretty"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/pipeline"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

func TestNewStyles_ColorDisabled(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "test", styles.Bold.Render("test"))
	assert.Equal(t, "test", styles.Insert.Render("test"))
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, pretty.IsColorEnabled("always", &buf))
	assert.False(t, pretty.IsColorEnabled("never", &buf))
	assert.False(t, pretty.IsColorEnabled("auto", &buf), "a bytes.Buffer is never a terminal")
}

func TestFormatRepair(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	insert := styles.FormatRepair("a.json", textbuf.Position{Row: 0, Column: 2},
		fix.TextEdit{StartOffset: 2, EndOffset: 2, NewText: ","}, `[1 "x"]`)
	assert.Equal(t, "  a.json:1:3  insert comma\n"+
		"      [1 \"x\"]\n"+
		"        ^\n", insert)

	remove := styles.FormatRepair("a.json", textbuf.Position{Row: 3, Column: 0},
		fix.TextEdit{StartOffset: 9, EndOffset: 10}, "")
	assert.Equal(t, "  a.json:4:1  remove comma\n", remove)
}

func TestFormatSourceContext_Tabs(t *testing.T) {
	t.Parallel()

	got := pretty.NewStyles(false).FormatSourceContext("\t1\r\n", 2)
	assert.Equal(t, "          1\n           ^\n", got)
}

func TestFormatFileHeaderAndError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	assert.Equal(t, "a.json (1 repair)", styles.FormatFileHeader("a.json", 1))
	assert.Equal(t, "a.json (2 repairs)", styles.FormatFileHeader("a.json", 2))
	assert.Equal(t, "a.json: error: boom\n", styles.FormatError("a.json", errors.New("boom")))
}

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	clean := styles.FormatSummaryOneLine(runner.Stats{FilesProcessed: 1}, true)
	assert.Equal(t, "No comma repairs needed (1 file checked)\n", clean)

	stats := runner.Stats{
		FilesProcessed:     5,
		FilesNeedingRepair: 2,
		EditsTotal:         4,
		CommasInserted:     3,
		CommasDeleted:      1,
		FilesErrored:       1,
	}
	assert.Equal(t, "3 commas inserted, 1 comma removed in 2 files (5 files checked), 1 failed\n",
		styles.FormatSummaryOneLine(stats, true))
	assert.Equal(t, "would repair: 3 commas inserted, 1 comma removed in 2 files (5 files checked), 1 failed\n",
		styles.FormatSummaryOneLine(stats, false))
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	out := pretty.NewStyles(false).FormatSummary(runner.Stats{
		FilesProcessed: 3,
		FilesWritten:   1,
		CommasInserted: 2,
	})
	assert.Contains(t, out, "Files checked:     3")
	assert.Contains(t, out, "Files written:     1")
	assert.Contains(t, out, "Commas inserted:   2")
	assert.NotContains(t, out, "Files failed")
}

func TestRepairRows(t *testing.T) {
	t.Parallel()

	// Edits are sequential: the comma at original offset 9 sits at 10 once
	// the insertion is applied.
	rows := pretty.RepairRows("dir/a.json", &pipeline.Result{
		Original: []byte("[\n  {} {},\n]"),
		Edits: []fix.TextEdit{
			{StartOffset: 6, EndOffset: 6, NewText: ","},
			{StartOffset: 10, EndOffset: 11},
		},
	})

	assert.Equal(t, []pretty.TableRow{
		{File: "dir/a.json", Location: "2:5", Insert: true, Source: "{} {},"},
		{File: "dir/a.json", Location: "2:8", Insert: false, Source: "{} {},"},
	}, rows)
	assert.Nil(t, pretty.RepairRows("b.json", &pipeline.Result{Original: []byte("[]")}))
}

func TestTableFormatter(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	rows := []pretty.TableRow{
		{File: "a.json", Location: "2:5", Insert: true, Source: "{} {},"},
		{File: "a.json", Location: "2:8", Source: "{} {},"},
	}

	t.Run("per file", func(t *testing.T) {
		t.Parallel()

		out := pretty.NewTableFormatter(styles, false, 0).FormatFileTable(rows)
		assert.True(t, strings.HasPrefix(out, " LOC"))
		assert.Contains(t, out, "insert comma")
		assert.Contains(t, out, "remove comma")
		assert.Contains(t, out, " 1 to insert | 1 to remove\n")
		assert.NotContains(t, out, "FILE")
	})

	t.Run("combined", func(t *testing.T) {
		t.Parallel()

		other := []pretty.TableRow{{File: "b.json", Location: "1:1", Source: "[1,]"}}
		out := pretty.NewTableFormatter(styles, false, 0).FormatTable([][]pretty.TableRow{rows, other})
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

		require.Len(t, lines, 8)
		assert.True(t, strings.HasPrefix(lines[0], " FILE"))
		assert.Equal(t, strings.Repeat("=", len(lines[1])), lines[1])
		assert.Equal(t, strings.Repeat("-", len(lines[1])), lines[4], "files are separated")
		assert.Contains(t, lines[5], "b.json")
		assert.Contains(t, lines[7], "Legend")
	})

	t.Run("narrow terminal truncates the path", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("nested/", 8) + "a.json"
		out := pretty.NewTableFormatter(styles, false, 40).FormatTable([][]pretty.TableRow{
			{{File: long, Location: "1:1", Insert: true, Source: "x"}},
		})
		assert.NotContains(t, out, long)
		assert.Contains(t, out, "...")
		assert.Contains(t, out, "/a.json")
	})

	assert.Empty(t, pretty.NewTableFormatter(styles, false, 0).FormatTable(nil))
}

func TestFormatTableSummary(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0)
	stats := runner.Stats{FilesProcessed: 3, CommasInserted: 2, CommasDeleted: 1, FilesSkipped: 1}

	assert.Equal(t, " 3 files checked | 2 inserted | 1 removed | 1 skipped", formatter.FormatTableSummary(stats, true))
	assert.Equal(t, " 3 files checked | 2 to insert | 1 to remove | 1 skipped", formatter.FormatTableSummary(stats, false))
}

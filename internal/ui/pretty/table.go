package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/pipeline"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Table formatting constants.
const (
	tablePadding       = 2
	tableColumnCount   = 4 // FILE, LOC, ACTION, SOURCE
	perFileColumnCount = 3 // LOC, ACTION, SOURCE
	actionWidth        = len("remove comma")
	minFileWidth       = 20
	minLocWidth        = 8
	minSourceWidth     = 20
	heavySeparator     = "="
	lightSeparator     = "-"
	defaultTermWidth   = 100
)

// TableRow is one comma repair in the table.
type TableRow struct {
	File     string
	Location string
	Insert   bool
	Source   string
}

// action names the repair the way the text output does.
func (r TableRow) action() string {
	if r.Insert {
		return "insert comma"
	}
	return "remove comma"
}

// RepairRows builds one row per edit of res, located in the original file
// and listed under path.
func RepairRows(path string, res *pipeline.Result) []TableRow {
	if res == nil || len(res.Edits) == 0 {
		return nil
	}

	original := textbuf.New(res.Original)
	edits := fix.Unrebase(res.Edits)
	rows := make([]TableRow, 0, len(edits))
	for _, edit := range edits {
		pos := original.RowCol(edit.StartOffset)
		rows = append(rows, TableRow{
			File:     path,
			Location: fmt.Sprintf("%d:%d", pos.Row+1, pos.Column+1),
			Insert:   edit.IsInsert(),
			Source:   strings.TrimSpace(string(original.Line(pos.Row))),
		})
	}
	return rows
}

// TableFormatter formats comma repairs as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter. A termWidth of zero or
// less means 100 columns.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

type columnWidths struct {
	file   int
	loc    int
	source int
}

// FormatTable formats groups of rows, one group per file, as one table.
func (t *TableFormatter) FormatTable(groups [][]TableRow) string {
	if len(groups) == 0 {
		return ""
	}

	widths := t.columnWidths(groups, true)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths, true) + "\n")
	builder.WriteString(t.formatSeparator(widths, true, heavySeparator) + "\n")

	for idx, group := range groups {
		if idx > 0 {
			builder.WriteString(t.formatSeparator(widths, true, lightSeparator) + "\n")
		}
		for _, row := range group {
			builder.WriteString(t.formatRow(row, widths, true) + "\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, true, heavySeparator) + "\n")
	builder.WriteString(t.formatLegend() + "\n")
	return builder.String()
}

// FormatFileTable formats one file's rows without the FILE column.
func (t *TableFormatter) FormatFileTable(rows []TableRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.columnWidths([][]TableRow{rows}, false)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths, false) + "\n")
	builder.WriteString(t.formatSeparator(widths, false, heavySeparator) + "\n")
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths, false) + "\n")
	}
	builder.WriteString(t.formatSeparator(widths, false, heavySeparator) + "\n")
	builder.WriteString(t.formatFileSummary(rows) + "\n")
	return builder.String()
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, applied bool) string {
	parts := []string{fmt.Sprintf("%d %s checked", stats.FilesProcessed, plural(stats.FilesProcessed, "file", "files"))}

	verb := "inserted"
	removed := "removed"
	if !applied {
		verb, removed = "to insert", "to remove"
	}
	if stats.CommasInserted > 0 {
		parts = append(parts, t.styles.Insert.Render(fmt.Sprintf("%d %s", stats.CommasInserted, verb)))
	}
	if stats.CommasDeleted > 0 {
		parts = append(parts, t.styles.Delete.Render(fmt.Sprintf("%d %s", stats.CommasDeleted, removed)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return " " + strings.Join(parts, " | ")
}

// columnWidths sizes the columns to their content, then shrinks SOURCE and
// after it FILE to fit the terminal.
func (t *TableFormatter) columnWidths(groups [][]TableRow, withFile bool) columnWidths {
	widths := columnWidths{loc: minLocWidth, source: minSourceWidth}
	if withFile {
		widths.file = minFileWidth
	}

	for _, group := range groups {
		for _, row := range group {
			if withFile {
				widths.file = max(widths.file, len(row.File))
			}
			widths.loc = max(widths.loc, len(row.Location))
			widths.source = max(widths.source, len(row.Source))
		}
	}

	if excess := t.totalWidth(widths, withFile) - t.termWidth; excess > 0 {
		widths.source = max(minSourceWidth, widths.source-excess)
	}
	if excess := t.totalWidth(widths, withFile) - t.termWidth; excess > 0 && withFile {
		widths.file = max(minFileWidth, widths.file-excess)
	}
	return widths
}

func (t *TableFormatter) totalWidth(widths columnWidths, withFile bool) int {
	columns := perFileColumnCount
	total := widths.loc + actionWidth + widths.source
	if withFile {
		columns = tableColumnCount
		total += widths.file
	}
	return total + tablePadding*columns
}

func (t *TableFormatter) formatHeader(widths columnWidths, withFile bool) string {
	var header string
	if withFile {
		header = fmt.Sprintf(" %-*s  ", widths.file, "FILE")
	}
	header += fmt.Sprintf(" %-*s  %-*s  %-*s", widths.loc, "LOC", actionWidth, "ACTION", widths.source, "SOURCE")
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, withFile bool, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.totalWidth(widths, withFile)))
}

// formatRow formats a single row, colored by its action.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths, withFile bool) string {
	var content string
	if withFile {
		content = fmt.Sprintf(" %-*s  ", widths.file, truncateFilePath(row.File, widths.file))
	}
	content += fmt.Sprintf(" %-*s  %-*s  %s",
		widths.loc, truncateString(row.Location, widths.loc),
		actionWidth, row.action(),
		truncateString(row.Source, widths.source),
	)
	return t.rowStyle(row).Render(content)
}

func (t *TableFormatter) rowStyle(row TableRow) lipgloss.Style {
	if row.Insert {
		return t.styles.TableInsertRow
	}
	return t.styles.TableDeleteRow
}

// formatFileSummary counts one file's rows by action.
func (t *TableFormatter) formatFileSummary(rows []TableRow) string {
	var inserts, removals int
	for _, row := range rows {
		if row.Insert {
			inserts++
		} else {
			removals++
		}
	}

	var parts []string
	if inserts > 0 {
		parts = append(parts, t.styles.Insert.Render(fmt.Sprintf("%d to insert", inserts)))
	}
	if removals > 0 {
		parts = append(parts, t.styles.Delete.Render(fmt.Sprintf("%d to remove", removals)))
	}
	return " " + strings.Join(parts, " | ")
}

func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: rows list repairs in original line:column order")
	}
	insertSample := t.styles.TableInsertRow.Render(" insert ")
	removeSample := t.styles.TableDeleteRow.Render(" remove ")
	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = missing comma  %s = trailing comma", insertSample, removeSample))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, keeping its end.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}

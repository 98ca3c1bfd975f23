package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/jsoncomma/internal/ui/pretty"
	"github.com/yaklabco/jsoncomma/pkg/runner"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TableReporter formats comma repairs as a table with one row per repair.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled, getTerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatError(displayPath(file.Path, r.opts.WorkingDir), file.Error))
		}
	}

	if result.Stats.EditsTotal == 0 {
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Applied))
		}
		return 0, nil
	}

	if r.opts.PerFile {
		r.reportPerFile(result)
	} else {
		r.reportCombined(result)
	}
	return result.Stats.FilesNeedingRepair, nil
}

// groups collects the rows of every changed file, in result order.
func (r *TableReporter) groups(result *runner.Result) [][]pretty.TableRow {
	var groups [][]pretty.TableRow
	for _, file := range result.Files {
		if file.Error != nil || !file.Result.Changed() {
			continue
		}
		groups = append(groups, pretty.RepairRows(displayPath(file.Path, r.opts.WorkingDir), file.Result))
	}
	return groups
}

// reportCombined outputs all files in a single table.
func (r *TableReporter) reportCombined(result *runner.Result) {
	fmt.Fprint(r.bw, r.formatter.FormatTable(r.groups(result)))

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw, r.formatter.FormatTableSummary(result.Stats, r.opts.Applied))
		if !r.opts.Applied {
			fmt.Fprintln(r.bw)
			fmt.Fprintln(r.bw, r.styles.Dim.Render("Run jsoncomma fix without --check or --dry-run to apply these repairs"))
		}
	}
}

// reportPerFile outputs a separate table for each file needing repair.
func (r *TableReporter) reportPerFile(result *runner.Result) {
	for _, rows := range r.groups(result) {
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.styles.Bold.Render(rows[0].File))
		fmt.Fprint(r.bw, r.formatter.FormatFileTable(rows))
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("═", tableWidth)))
		fmt.Fprintln(r.bw, r.styles.Bold.Render("Overall Summary"))
		fmt.Fprintln(r.bw, r.formatter.FormatTableSummary(result.Stats, r.opts.Applied))
	}
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/jsoncomma/internal/ui/pretty"
	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/runner"
)

// Table layout constants for summary output.
// Both tables use the same width for visual consistency.
const (
	tableWidth        = 80
	kindColWidth      = 30
	fileColWidth      = 50
	numColWidth       = 9
	maxFilePathLength = 48
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// fileCounts is the per-file tally for the summary tables.
type fileCounts struct {
	path     string
	inserted int
	removed  int
}

// SummaryReporter prints aggregated tables instead of individual repairs:
// repairs by kind, then by file, then the run statistics.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		return 0, nil
	}

	files := r.collect(result)
	if len(files) == 0 {
		fmt.Fprintln(r.bw, r.styles.Success.Render("No comma repairs needed"))
	} else {
		r.renderKindTable(result.Stats, len(files))
		fmt.Fprintln(r.bw)
		r.renderFileTable(files)
	}

	fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
	return result.Stats.FilesNeedingRepair, nil
}

func (r *SummaryReporter) collect(result *runner.Result) []fileCounts {
	var files []fileCounts
	for _, file := range result.Files {
		if file.Error != nil || !file.Result.Changed() {
			continue
		}
		counts := fileCounts{path: displayPath(file.Path, r.opts.WorkingDir)}
		for _, edit := range file.Result.Edits {
			if edit.IsInsert() {
				counts.inserted++
			} else {
				counts.removed++
			}
		}
		files = append(files, counts)
	}
	return files
}

func (r *SummaryReporter) renderKindTable(stats runner.Stats, files int) {
	fmt.Fprintln(r.bw, r.styles.Bold.Render("Repairs Summary"))
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
	fmt.Fprintf(r.bw, "%s %s\n",
		r.styles.TableHeader.Render(padRight("Kind", kindColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
	)
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	rows := []struct {
		kind  comma.Kind
		count int
		style func(...string) string
	}{
		{kind: comma.MissingComma, count: stats.CommasInserted, style: r.styles.TableInsertRow.Render},
		{kind: comma.TrailingComma, count: stats.CommasDeleted, style: r.styles.TableDeleteRow.Render},
	}
	for _, row := range rows {
		if row.count == 0 {
			continue
		}
		fmt.Fprintf(r.bw, "%s %s\n",
			row.style(padRight(row.kind.String(), kindColWidth)),
			padLeft(strconv.Itoa(row.count), numColWidth),
		)
	}

	fmt.Fprintln(r.bw, r.styles.Dim.Render(fmt.Sprintf("%d %s with repairs", files, pluralize(files, "file", "files"))))
}

func (r *SummaryReporter) renderFileTable(files []fileCounts) {
	fmt.Fprintln(r.bw, r.styles.Bold.Render("Files Summary"))
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
	fmt.Fprintf(r.bw, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("File", fileColWidth)),
		r.styles.TableHeader.Render(padLeft("Inserted", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Removed", numColWidth)),
	)
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	for _, file := range files {
		path := file.path
		if len(path) > maxFilePathLength {
			path = "…" + path[len(path)-(maxFilePathLength-1):]
		}
		fmt.Fprintf(r.bw, "%s %s %s\n",
			padRight(path, fileColWidth),
			padLeft(strconv.Itoa(file.inserted), numColWidth),
			padLeft(strconv.Itoa(file.removed), numColWidth),
		)
	}
}

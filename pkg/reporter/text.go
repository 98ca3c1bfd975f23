package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/jsoncomma/internal/ui/pretty"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/pipeline"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// TextReporter lists every comma repair with its location in the original
// file, grouped by file.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
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

	var needing int
	for _, file := range result.Files {
		path := displayPath(file.Path, r.opts.WorkingDir)
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatError(path, file.Error))
			continue
		}
		if !file.Result.Changed() {
			r.writeCursors(path, file.Result)
			continue
		}

		needing++
		r.writeFile(path, file.Result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.Applied))
	}
	return needing, nil
}

func (r *TextReporter) writeFile(path string, res *pipeline.Result) {
	header := r.styles.FormatFileHeader(path, len(res.Edits))
	if res.Skipped {
		header += " " + r.styles.Warning.Render(res.SkipReason)
	}
	fmt.Fprintln(r.bw, header)

	original := textbuf.New(res.Original)
	for _, edit := range fix.Unrebase(res.Edits) {
		pos := original.RowCol(edit.StartOffset)
		var line string
		if r.opts.ShowContext {
			line = string(original.Line(pos.Row))
		}
		fmt.Fprint(r.bw, r.styles.FormatRepair(path, pos, edit, line))
	}
	r.writeCursors(path, res)
	fmt.Fprintln(r.bw)
}

// writeCursors lists the tracked positions after the repair, 1-based.
func (r *TextReporter) writeCursors(path string, res *pipeline.Result) {
	if res == nil {
		return
	}
	for _, pos := range res.Positions {
		location := fmt.Sprintf("%s:%d:%d", path, pos.Row+1, pos.Column+1)
		fmt.Fprintln(r.bw, "  "+r.styles.Location.Render(location)+"  "+r.styles.Dim.Render("cursor"))
	}
}

package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// jsonSchemaVersion is bumped when the JSON output changes shape.
const jsonSchemaVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path    string       `json:"path"`
	Status  string       `json:"status"`
	Repairs []JSONRepair `json:"repairs"`
	Cursors []JSONCursor `json:"cursors,omitempty"`
	Written bool         `json:"written,omitempty"`
	Cached  bool         `json:"cached,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// JSONRepair is one comma edit, located in the original file. Line and
// column are 1-based; offsets are 0-based byte offsets.
type JSONRepair struct {
	Action      string `json:"action"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	NewText     string `json:"newText"`
}

// JSONCursor is a tracked position after the repair, 1-based.
type JSONCursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked       int `json:"filesChecked"`
	FilesNeedingRepair int `json:"filesNeedingRepair"`
	FilesWritten       int `json:"filesWritten"`
	FilesCached        int `json:"filesCached"`
	FilesSkipped       int `json:"filesSkipped"`
	FilesErrored       int `json:"filesErrored"`
	CommasInserted     int `json:"commasInserted"`
	CommasRemoved      int `json:"commasRemoved"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}
	return output.Summary.FilesNeedingRepair, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{Version: jsonSchemaVersion, Files: []JSONFileResult{}}
	if result == nil {
		return output
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesChecked:       stats.FilesProcessed,
		FilesNeedingRepair: stats.FilesNeedingRepair,
		FilesWritten:       stats.FilesWritten,
		FilesCached:        stats.FilesCached,
		FilesSkipped:       stats.FilesSkipped,
		FilesErrored:       stats.FilesErrored,
		CommasInserted:     stats.CommasInserted,
		CommasRemoved:      stats.CommasDeleted,
	}

	for _, file := range result.Files {
		entry := JSONFileResult{
			Path:    displayPath(file.Path, r.opts.WorkingDir),
			Repairs: []JSONRepair{},
		}

		if file.Error != nil {
			entry.Status = "error"
			entry.Error = file.Error.Error()
			output.Files = append(output.Files, entry)
			continue
		}

		res := file.Result
		entry.Status = res.Summary()
		entry.Written = res.Written
		entry.Cached = res.Cached

		original := textbuf.New(res.Original)
		for _, edit := range fix.Unrebase(res.Edits) {
			pos := original.RowCol(edit.StartOffset)
			action := "insert"
			if !edit.IsInsert() {
				action = "remove"
			}
			entry.Repairs = append(entry.Repairs, JSONRepair{
				Action:      action,
				Line:        pos.Row + 1,
				Column:      pos.Column + 1,
				StartOffset: edit.StartOffset,
				EndOffset:   edit.EndOffset,
				NewText:     edit.NewText,
			})
		}

		for _, pos := range res.Positions {
			entry.Cursors = append(entry.Cursors, JSONCursor{Line: pos.Row + 1, Column: pos.Column + 1})
		}

		output.Files = append(output.Files, entry)
	}

	return output
}

package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output: "auto" (default), "always", "never".
	Color string

	// ShowContext prints the source line under each repair (text format).
	ShowContext bool

	// ShowSummary prints aggregate statistics after the results.
	ShowSummary bool

	// Applied tells the reporter whether repairs were written, so the
	// wording can say "repaired" or "would repair".
	Applied bool

	// Compact disables JSON indentation.
	Compact bool

	// WorkingDir makes displayed paths relative. Empty keeps them as-is.
	WorkingDir string

	// ToolVersion is the jsoncomma version recorded in SARIF output.
	ToolVersion string

	// PerFile prints one table per file instead of a single table (table
	// format).
	PerFile bool
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      FormatText,
		Color:       "auto",
		ShowContext: true,
		ShowSummary: true,
	}
}

package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/jsoncomma/pkg/runner"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats run statistics as a single line, for example
// "3 commas inserted, 1 comma removed in 2 files (5 files checked)".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, applied bool) string {
	checked := s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesProcessed, plural(stats.FilesProcessed, "file", "files")))

	if stats.EditsTotal == 0 {
		msg := s.Success.Render("No comma repairs needed") + checked
		if stats.FilesErrored > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored))
		}
		return msg + "\n"
	}

	var counts []string
	if stats.CommasInserted > 0 {
		counts = append(counts, s.Insert.Render(fmt.Sprintf("%d %s inserted",
			stats.CommasInserted, plural(stats.CommasInserted, "comma", "commas"))))
	}
	if stats.CommasDeleted > 0 {
		counts = append(counts, s.Delete.Render(fmt.Sprintf("%d %s removed",
			stats.CommasDeleted, plural(stats.CommasDeleted, "comma", "commas"))))
	}

	files := stats.FilesNeedingRepair
	line := strings.Join(counts, ", ") + fmt.Sprintf(" in %d %s", files, plural(files, "file", "files"))
	if !applied {
		line = s.Warning.Render("would repair: ") + line
	}
	line += checked

	if stats.FilesSkipped > 0 {
		line += ", " + s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped))
	}
	if stats.FilesErrored > 0 {
		line += ", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored))
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label string, value int, style func(...string) string) {
		builder.WriteString(fmt.Sprintf("  %-18s %s\n", label+":", style(strconv.Itoa(value))))
	}

	builder.WriteString("\n" + s.SummaryTitle.Render("Summary") + "\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth) + "\n")

	row("Files checked", stats.FilesProcessed, s.SummaryValue.Render)
	if stats.FilesCached > 0 {
		row("Known clean", stats.FilesCached, s.Dim.Render)
	}
	if stats.FilesNeedingRepair > 0 {
		row("Needing repair", stats.FilesNeedingRepair, s.Warning.Render)
	}
	if stats.FilesWritten > 0 {
		row("Files written", stats.FilesWritten, s.Success.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Warning.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}

	builder.WriteString("\n")
	row("Commas inserted", stats.CommasInserted, s.Insert.Render)
	row("Commas removed", stats.CommasDeleted, s.Delete.Render)

	return builder.String()
}

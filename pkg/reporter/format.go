package reporter

import (
	"fmt"

	"github.com/yaklabco/jsoncomma/pkg/config"
)

// Format is the output format; it shares its values with the "format"
// configuration key.
type Format = config.OutputFormat

const (
	FormatText    = config.FormatText
	FormatJSON    = config.FormatJSON
	FormatDiff    = config.FormatDiff
	FormatSARIF   = config.FormatSARIF
	FormatTable   = config.FormatTable
	FormatSummary = config.FormatSummary
)

// ParseFormat maps a --format value to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	if format := Format(name); format.IsValid() {
		return format, nil
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", name, config.FormatList())
}

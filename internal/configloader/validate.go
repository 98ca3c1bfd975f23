package configloader

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/yaklabco/jsoncomma/pkg/config"
)

// ValidationError reports one bad configuration value.
type ValidationError struct {
	Field    string // dotted path, e.g. "backups.mode"
	Value    any
	Message  string
	FilePath string // file the value came from, if known
	Line     int
}

func (e *ValidationError) Error() string {
	location := e.FilePath
	if location != "" && e.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Line)
	}

	var b strings.Builder
	for _, part := range []string{location, e.Field} {
		if part != "" {
			b.WriteString(part)
			b.WriteString(": ")
		}
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationResult collects the findings of Validate. Errors stop loading;
// warnings are reported and loading continues.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings reports whether there is at least one warning.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: message})
}

// structuralBytes can never end a literal; a tail set containing one would
// let the missing-comma pattern fire inside structure it already covers.
const structuralBytes = "\"{}[],:"

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: %s", cfg.Format, config.FormatList())
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	switch cfg.Backups.Mode {
	case "", "sidecar", "none":
	default:
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}
	if addr := cfg.Remote.Addr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			result.fail("remote.addr", addr, "invalid address %q; expected host:port", addr)
		}
	}
	if cfg.Remote.Timeout < 0 {
		result.fail("remote.timeout", cfg.Remote.Timeout, "remote.timeout must be >= 0")
	}

	validateLiteralTails(cfg.Grammar.LiteralTails, result)

	for idx, ext := range cfg.Extensions {
		if len(ext) < 2 || ext[0] != '.' || strings.ContainsAny(ext, `/\`) {
			result.fail(fmt.Sprintf("extensions[%d]", idx), ext, "invalid extension %q; expected a form like \".jsonc\"", ext)
		}
	}
	for idx, pattern := range cfg.Ignore {
		// Match only fails on a malformed pattern.
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", idx), pattern, "invalid glob pattern: %v", err)
		}
	}

	return result
}

func validateLiteralTails(tails string, result *ValidationResult) {
	const field = "grammar.literal_tails"

	if idx := strings.IndexAny(tails, structuralBytes); idx >= 0 {
		result.fail(field, tails, "literal tails may not contain %q", tails[idx])
	}
	switch {
	case tails == "":
		result.warn(field, tails, "no literal tails; commas after bare literals will not be inserted")
	case strings.ContainsAny(tails, " \t\r\n"):
		result.warn(field, tails, "literal tails contain whitespace, which never ends a literal")
	}
}

// ValidateWithFile is Validate with every finding attributed to filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for idx := range result.Errors {
		result.Errors[idx].FilePath = filePath
	}
	for idx := range result.Warnings {
		result.Warnings[idx].FilePath = filePath
	}
	return result
}

// Package config defines the configuration types for jsoncomma.
// These types are pure data structures with no dependency on how they are loaded.
package config

import (
	"strings"
	"time"
)

// OutputFormat specifies how results are reported.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSARIF   OutputFormat = "sarif"
	FormatTable   OutputFormat = "table"
	FormatSummary OutputFormat = "summary"
)

// OutputFormats returns every known format in the order help text lists them.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatDiff, FormatSARIF, FormatTable, FormatSummary}
}

// FormatList renders OutputFormats for messages, e.g. "text, json, diff".
func FormatList() string {
	names := make([]string, 0, len(OutputFormats()))
	for _, format := range OutputFormats() {
		names = append(names, string(format))
	}
	return strings.Join(names, ", ")
}

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatDiff, FormatSARIF, FormatTable, FormatSummary:
		return true
	default:
		return false
	}
}

// DefaultLiteralTails is the default set of bytes that can end a literal.
const DefaultLiteralTails = "0123456789el"

// DefaultRemoteTimeout bounds the remote handshake and each request.
const DefaultRemoteTimeout = 10 * time.Second

// GrammarConfig holds the language data the repair patterns are built from.
type GrammarConfig struct {
	// LiteralTails lists the bytes that can end a literal value.
	LiteralTails string `mapstructure:"literal_tails" yaml:"literal_tails"`
}

// BackupsConfig controls backup behavior when fixing files.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // only "sidecar" for now
}

// CacheConfig controls the cache of files known to need no repair.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Dir is the cache directory. Empty means $XDG_CACHE_HOME/jsoncomma.
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
}

// RemoteConfig configures the remote repair server.
type RemoteConfig struct {
	// Executable is the jsoncomma binary started with "server".
	// Empty means the running executable.
	Executable string `mapstructure:"executable" yaml:"executable,omitempty"`

	// Addr is a server already listening, as host:port. When set, no
	// process is started and Executable is ignored.
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"`

	// Timeout bounds the handshake and each request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Config is the root configuration structure for jsoncomma.
type Config struct {
	// Grammar configures the repair patterns.
	Grammar GrammarConfig `mapstructure:"grammar" yaml:"grammar"`

	// Extensions lists extra file extensions treated as JSON during discovery.
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// Backups configures backup behavior when fixing.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// Cache configures the clean-file cache.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Remote configures the remote backend.
	Remote RemoteConfig `mapstructure:"remote" yaml:"remote"`

	// Markdown enables repairing JSON code blocks in Markdown files.
	Markdown bool `mapstructure:"markdown" yaml:"markdown"`

	// CLI-level options (not persisted to config files).

	// DryRun shows what would be fixed without making changes.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Check reports files needing repair without writing them.
	Check bool `mapstructure:"-" yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation when fixing.
	NoBackups bool `mapstructure:"-" yaml:"-"`

	// UseRemote sends text to the remote server instead of repairing locally.
	UseRemote bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Grammar: GrammarConfig{LiteralTails: DefaultLiteralTails},
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		Cache: CacheConfig{
			Enabled: false,
		},
		Remote: RemoteConfig{
			Timeout: DefaultRemoteTimeout,
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

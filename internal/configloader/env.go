package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/jsoncomma/pkg/config"
)

// envVarPrefix is the prefix for all jsoncomma environment variables.
const envVarPrefix = "JSONCOMMA_"

// envVar binds one JSONCOMMA_* variable to a configuration field. set parses
// the raw value and stores it.
type envVar struct {
	suffix      string
	field       string
	description string
	set         func(cfg *config.Config, value string) error
}

func stringVar(target func(*config.Config) *string) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		*target(cfg) = value
		return nil
	}
}

func boolVar(target func(*config.Config) *bool) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true/false/1/0, got %q", value)
		}
		*target(cfg) = parsed
		return nil
	}
}

func listVar(target func(*config.Config) *[]string) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		var items []string
		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*target(cfg) = items
		return nil
	}
}

//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{
		suffix: "LITERAL_TAILS", field: "grammar.literal_tails",
		description: "Bytes that can end a literal value",
		set:         stringVar(func(c *config.Config) *string { return &c.Grammar.LiteralTails }),
	},
	{
		suffix: "EXTENSIONS", field: "extensions",
		description: "Comma-separated extra JSON file extensions",
		set:         listVar(func(c *config.Config) *[]string { return &c.Extensions }),
	},
	{
		suffix: "IGNORE", field: "ignore",
		description: "Comma-separated list of ignore patterns",
		set:         listVar(func(c *config.Config) *[]string { return &c.Ignore }),
	},
	{
		suffix: "BACKUPS_ENABLED", field: "backups.enabled",
		description: "Enable backups when fixing: true or false",
		set:         boolVar(func(c *config.Config) *bool { return &c.Backups.Enabled }),
	},
	{
		suffix: "BACKUPS_MODE", field: "backups.mode",
		description: "Backup mode: sidecar or none",
		set:         stringVar(func(c *config.Config) *string { return &c.Backups.Mode }),
	},
	{
		suffix: "CACHE_ENABLED", field: "cache.enabled",
		description: "Skip files already known clean: true or false",
		set:         boolVar(func(c *config.Config) *bool { return &c.Cache.Enabled }),
	},
	{
		suffix: "CACHE_DIR", field: "cache.dir",
		description: "Cache directory",
		set:         stringVar(func(c *config.Config) *string { return &c.Cache.Dir }),
	},
	{
		suffix: "REMOTE_EXECUTABLE", field: "remote.executable",
		description: "Executable started for --remote",
		set:         stringVar(func(c *config.Config) *string { return &c.Remote.Executable }),
	},
	{
		suffix: "REMOTE_ADDR", field: "remote.addr",
		description: "host:port of a running server used by --remote",
		set:         stringVar(func(c *config.Config) *string { return &c.Remote.Addr }),
	},
	{
		suffix: "REMOTE_TIMEOUT", field: "remote.timeout",
		description: "Remote handshake and request timeout, e.g. 5s",
		set: func(cfg *config.Config, value string) error {
			timeout, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("expected a duration, got %q", value)
			}
			cfg.Remote.Timeout = timeout
			return nil
		},
	},
	{
		suffix: "MARKDOWN", field: "markdown",
		description: "Repair JSON blocks in Markdown files: true or false",
		set:         boolVar(func(c *config.Config) *bool { return &c.Markdown }),
	},
	{
		suffix: "JOBS", field: "jobs",
		description: "Number of parallel workers (0 = auto)",
		set: func(cfg *config.Config, value string) error {
			jobs, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("expected an integer, got %q", value)
			}
			cfg.Jobs = jobs
			return nil
		},
	},
	{
		suffix: "FORMAT", field: "format",
		description: "Output format: " + config.FormatList(),
		set: func(cfg *config.Config, value string) error {
			cfg.Format = config.OutputFormat(value)
			return nil
		},
	},
}

// LoadFromEnv applies JSONCOMMA_* overrides to cfg. Unset and empty
// variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, v := range envVars {
		name := envVarPrefix + v.suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := v.set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// GetEnvVarName returns the environment variable that sets field, or "".
func GetEnvVarName(field string) string {
	for _, v := range envVars {
		if v.field == field {
			return envVarPrefix + v.suffix
		}
	}
	return ""
}

// ListEnvVars returns the supported environment variables with their
// descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envVars))
	for _, v := range envVars {
		vars[envVarPrefix+v.suffix] = v.description
	}
	return vars
}

// EnvHelp renders ListEnvVars as an aligned, sorted block for help text.
func EnvHelp(indent string) string {
	vars := ListEnvVars()
	names := make([]string, 0, len(vars))
	width := 0
	for name := range vars {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s%-*s  %s\n", indent, width, name, vars[name])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

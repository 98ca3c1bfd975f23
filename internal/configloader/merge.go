package configloader

import "github.com/yaklabco/jsoncomma/pkg/config"

// merge lays CLI overrides over base. Only values the CLI actually set count:
// non-zero scalars, true booleans, and non-nil slices.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Grammar.LiteralTails != "" {
		result.Grammar.LiteralTails = override.Grammar.LiteralTails
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Remote.Executable != "" {
		result.Remote.Executable = override.Remote.Executable
	}
	if override.Remote.Addr != "" {
		result.Remote.Addr = override.Remote.Addr
	}
	if override.Remote.Timeout != 0 {
		result.Remote.Timeout = override.Remote.Timeout
	}
	if override.Cache.Dir != "" {
		result.Cache.Dir = override.Cache.Dir
	}

	// Booleans can only be switched on from the command line.
	if override.DryRun {
		result.DryRun = true
	}
	if override.Check {
		result.Check = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}
	if override.UseRemote {
		result.UseRemote = true
	}
	if override.Markdown {
		result.Markdown = true
	}
	if override.Cache.Enabled {
		result.Cache.Enabled = true
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return result
}

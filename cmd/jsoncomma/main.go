// Package main is the entry point for the jsoncomma CLI.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/yaklabco/jsoncomma/internal/cli"
	"github.com/yaklabco/jsoncomma/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// ErrNeedsRepair only selects the exit code; the report already said why.
		if !errors.Is(err, cli.ErrNeedsRepair) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/jsoncomma/internal/configloader"
	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/cache"
	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/config"
	"github.com/yaklabco/jsoncomma/pkg/fsutil"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/pipeline"
	"github.com/yaklabco/jsoncomma/pkg/remote"
	"github.com/yaklabco/jsoncomma/pkg/reporter"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// stdinPath is the path argument that selects stdin-to-stdout mode.
const stdinPath = "-"

type fixFlags struct {
	format    string
	ignore    []string
	ranges    []string
	cursors   []string
	noContext bool
	compact   bool
	perFile   bool
	hints     stdinHints
}

// stdinHints describe the document on stdin the way an editor sees it.
type stdinHints struct {
	filename string
	syntax   string
	scope    string
}

func (h stdinHints) given() bool {
	return h.filename != "" || h.syntax != "" || h.scope != ""
}

func newFixCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &fixFlags{}

	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Repair commas in JSON files",
		Long:  fixLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, &cfg, flags, info)
		},
	}

	addFixFlags(cmd, &cfg, flags)

	return cmd
}

const fixLongDescription = `Insert missing commas and remove trailing commas in JSON files.

By default, repairs every .json, .jsonc and .json5 file (and other known
JSON files such as .eslintrc or tsconfig.json) in the current directory and
subdirectories. Files are rewritten atomically and keep their permissions.
Use "-" to read from stdin and write the repaired text to stdout.

Examples:
  jsoncomma fix                          # Repair current directory
  jsoncomma fix config/                  # Repair config directory
  jsoncomma fix --check                  # Exit 1 if anything needs repair
  jsoncomma fix --dry-run                # Show a diff without writing
  jsoncomma fix --markdown README.md     # Repair json blocks in Markdown
  jsoncomma fix --range 10:80 a.json     # Repair only bytes 10 to 80
  jsoncomma fix --cursor 3:7 - < a.json  # Report where line 3 col 7 moves
  jsoncomma fix --stdin-filename x.py -  # Pass non-JSON input through
  jsoncomma fix --format sarif           # SARIF for code scanning
  jsoncomma fix --remote-addr localhost:4000 a.json  # Use a running server`

func addFixFlags(cmd *cobra.Command, cfg *config.Config, flags *fixFlags) {
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "show repairs as a diff without writing")
	cmd.Flags().BoolVar(&cfg.Check, "check", false, "only report files needing repair (exit 1 if any)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: "+config.FormatList())
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&cfg.Markdown, "markdown", false, "repair json code blocks in Markdown files")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when writing")
	cmd.Flags().BoolVar(&cfg.UseRemote, "remote", false, "repair through a jsoncomma server process")
	cmd.Flags().StringVar(&cfg.Remote.Addr, "remote-addr", "", "use the server already listening on host:port (implies --remote)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringArrayVar(&flags.ranges, "range", nil,
		"limit repairs to byte offsets begin:end (repeatable, single file only)")
	cmd.Flags().StringArrayVar(&flags.cursors, "cursor", nil,
		"report where line:col (1-based) ends up after the repair (repeatable, single file only)")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.perFile, "per-file", false, "print one table per file (table format)")
	cmd.Flags().StringVar(&flags.hints.filename, "stdin-filename", "",
		"name of the file piped to stdin; non-JSON documents pass through unchanged")
	cmd.Flags().StringVar(&flags.hints.syntax, "syntax", "", "editor syntax name of the document on stdin")
	cmd.Flags().StringVar(&flags.hints.scope, "scope-name", "", "editor scope name of the document on stdin")
}

func runFix(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *fixFlags, info BuildInfo) error {
	logger := logging.Default()
	ctx := commandContext(cmd)

	// Only flags given explicitly may override files and environment.
	if cmd.Flags().Changed("format") {
		cliCfg.Format = config.OutputFormat(flags.format)
	}
	cliCfg.Ignore = flags.ignore
	if cliCfg.Remote.Addr != "" {
		cliCfg.UseRemote = true
	}

	scope, err := parseRanges(flags.ranges)
	if err != nil {
		return err
	}
	preserve, err := parseCursors(flags.cursors)
	if err != nil {
		return err
	}

	stdin := slices.Contains(args, stdinPath)
	if stdin && len(args) > 1 {
		return fmt.Errorf("%w: %q cannot be combined with other paths", ErrUsage, stdinPath)
	}
	if flags.hints.given() && !stdin {
		return fmt.Errorf("%w: --stdin-filename, --syntax and --scope-name need %q", ErrUsage, stdinPath)
	}
	if len(scope)+len(preserve) > 0 {
		if err := requireSingleFile(args); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldCheck, cfg.Check,
		logging.FieldJobs, cfg.Jobs,
		logging.FieldRemote, cfg.UseRemote,
	)

	repairer, namespace, stop, err := newRepairer(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer stop()

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.Cache.Enabled {
		store, err := openCache(cfg)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", logging.FieldError, err)
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("close cache", logging.FieldError, err)
				}
			}()
			pipeOpts = append(pipeOpts, pipeline.WithCache(store, namespace))
		}
	}
	pipe := pipeline.New(repairer, pipeOpts...)

	fileOpts := pipeline.Options{
		DryRun:   cfg.DryRun,
		Check:    cfg.Check,
		Backup:   backupMode(cfg),
		Markdown: cfg.Markdown,
		Scope:    scope,
		Preserve: preserve,
	}

	if stdin {
		return fixStdin(ctx, cmd, pipe, fileOpts, flags.hints)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("%w: get working directory: %w", ErrIO, err)
	}

	result, err := runner.New(pipe).Run(ctx, runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   cfg.Extensions,
		Markdown:     cfg.Markdown,
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Pipeline:     fileOpts,
	})
	if err != nil {
		return fmt.Errorf("fix run failed: %w", err)
	}

	logger.Debug("fix run complete",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesRepaired, result.Stats.FilesWritten,
		logging.FieldEditsTotal, result.Stats.EditsTotal,
		logging.FieldFilesFailed, result.Stats.FilesErrored,
	)

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      outputFormat(cmd, cfg),
		Color:       colorMode(cmd),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Applied:     !cfg.DryRun && !cfg.Check,
		Compact:     flags.compact,
		WorkingDir:  workDir,
		ToolVersion: info.Version,
		PerFile:     flags.perFile,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("%w: report results: %w", ErrIO, err)
	}

	switch {
	case result.HasErrors():
		return fmt.Errorf("%w: %d of %d files failed", ErrIO, result.Stats.FilesErrored, result.Stats.FilesDiscovered)
	case cfg.Check && result.NeedsRepair():
		return ErrNeedsRepair
	default:
		return nil
	}
}

// fixStdin repairs stdin and writes the result to stdout: the repaired text,
// a diff with --dry-run, or nothing with --check. Tracked positions go to
// stderr so stdout stays pure document text. When hints say the document is
// not JSON, it is echoed unchanged.
func fixStdin(ctx context.Context, cmd *cobra.Command, pipe *pipeline.Pipeline, opts pipeline.Options, hints stdinHints) error {
	in := cmd.InOrStdin()
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return fmt.Errorf("%w: refusing to read JSON from a terminal, pipe it in instead", ErrUsage)
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("%w: read stdin: %w", ErrIO, err)
	}

	if hints.given() && !oracle.ShouldEnable(hints.filename, hints.syntax, hints.scope) {
		logging.Default().Debug("stdin is not JSON, passing it through",
			logging.FieldPath, hints.filename,
			logging.FieldSyntax, hints.syntax,
			logging.FieldScope, hints.scope,
		)
		if opts.Check || opts.DryRun {
			return nil
		}
		if _, err := cmd.OutOrStdout().Write(content); err != nil {
			return fmt.Errorf("%w: write stdout: %w", ErrIO, err)
		}
		return nil
	}

	opts.Markdown = false
	res, err := pipe.ProcessContent(ctx, stdinPath, content, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.Check:
		if res.Changed() {
			return ErrNeedsRepair
		}
	case opts.DryRun:
		if res.Diff.HasChanges() {
			if _, err := io.WriteString(out, res.Diff.String()); err != nil {
				return fmt.Errorf("%w: write diff: %w", ErrIO, err)
			}
		}
	default:
		if _, err := out.Write(res.Content); err != nil {
			return fmt.Errorf("%w: write stdout: %w", ErrIO, err)
		}
	}

	for _, pos := range res.Positions {
		fmt.Fprintf(cmd.ErrOrStderr(), "cursor %d:%d\n", pos.Row+1, pos.Column+1)
	}
	return nil
}

// newRepairer returns the local engine or a started remote backend, the cache
// namespace identifying it, and a function releasing it.
func newRepairer(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (pipeline.Repairer, string, func(), error) {
	grammar := comma.Grammar{LiteralTails: cfg.Grammar.LiteralTails}
	if !cfg.UseRemote {
		return pipeline.Local{Grammar: grammar}, "local/" + grammar.LiteralTails, func() {}, nil
	}

	logger := logging.Default()
	if addr := cfg.Remote.Addr; addr != "" {
		client := remote.Connect(addr)
		client.Logger = logger
		if cfg.Remote.Timeout > 0 {
			client.Timeout = cfg.Remote.Timeout
		}
		logger.Debug("using remote backend", logging.FieldAddr, addr)
		return remote.NewBackend(client, grammar), "remote/" + addr, func() {}, nil
	}

	executable := cfg.Remote.Executable
	if executable == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, "", nil, fmt.Errorf("locate jsoncomma executable: %w", err)
		}
		executable = self
	}

	client := remote.NewClient(executable)
	client.Logger = logger
	if cfg.Remote.Timeout > 0 {
		client.Timeout = cfg.Remote.Timeout
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		client.Stderr = cmd.ErrOrStderr()
	}

	if err := client.Start(ctx); err != nil {
		return nil, "", nil, fmt.Errorf("start remote server: %w", err)
	}
	logger.Debug("using remote backend", logging.FieldAddr, client.Addr(), logging.FieldExecutable, executable)

	stop := func() {
		if err := client.Stop(); err != nil {
			logger.Warn("stop remote server", logging.FieldError, err)
		}
	}
	return remote.NewBackend(client, grammar), "remote/" + executable, stop, nil
}

func openCache(cfg *config.Config) (*cache.Store, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = configloader.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
	}
	return cache.Open(dir, logging.Default())
}

func backupMode(cfg *config.Config) fsutil.BackupMode {
	if !cfg.Backups.Enabled || cfg.NoBackups {
		return fsutil.BackupModeNone
	}
	return fsutil.BackupMode(cfg.Backups.Mode)
}

// outputFormat picks the report format. A dry run shows diffs unless a
// format was chosen some other way.
func outputFormat(cmd *cobra.Command, cfg *config.Config) reporter.Format {
	format := reporter.Format(cfg.Format)
	if cfg.DryRun && !cmd.Flags().Changed("format") && cfg.Format == config.FormatText {
		format = reporter.FormatDiff
	}
	return format
}

func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

// loadConfig resolves configuration for a command, with cliCfg (which may be
// nil) taking precedence over every file and the environment.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%w: get working directory: %w", ErrIO, err)
	}

	loaded, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfig, loaded.LoadedFrom)
	}
	return loaded.Config, nil
}

func requireSingleFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: --range and --cursor need exactly one file", ErrUsage)
	}
	if args[0] == stdinPath {
		return nil
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: --range and --cursor need a file, %s is a directory", ErrUsage, args[0])
	}
	return nil
}

// parseRanges parses begin:end byte offset pairs.
func parseRanges(values []string) ([]textbuf.Range, error) {
	ranges := make([]textbuf.Range, 0, len(values))
	for _, value := range values {
		begin, end, err := parsePair(value)
		if err != nil {
			return nil, fmt.Errorf("%w: --range %q: %w", ErrUsage, value, err)
		}
		ranges = append(ranges, textbuf.Range{Begin: begin, End: end})
	}
	return ranges, nil
}

// parseCursors parses 1-based line:col pairs into 0-based positions.
func parseCursors(values []string) ([]textbuf.Position, error) {
	positions := make([]textbuf.Position, 0, len(values))
	for _, value := range values {
		line, col, err := parsePair(value)
		if err == nil && (line < 1 || col < 1) {
			err = errors.New("line and column start at 1")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: --cursor %q: %w", ErrUsage, value, err)
		}
		positions = append(positions, textbuf.Position{Row: line - 1, Column: col - 1})
	}
	return positions, nil
}

func parsePair(value string) (int, int, error) {
	left, right, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, errors.New("expected two numbers separated by a colon")
	}
	first, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", left, err)
	}
	second, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", right, err)
	}
	return first, second, nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

const defaultConfigName = ".jsoncomma.yml"

type initFlags struct {
	force     bool
	output    string
	full      bool
	effective bool
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a jsoncomma configuration file",
		Long: `Create a .jsoncomma.yml file in the current directory holding the
default settings, ready to be edited.

Examples:
  jsoncomma init                      Create .jsoncomma.yml
  jsoncomma init --full               List every setting with its documentation
  jsoncomma init --effective          Capture the settings currently in effect
  jsoncomma init --output ci.yml      Write to a custom file path
  jsoncomma init --force              Overwrite an existing file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultConfigName, "output file path")
	cmd.Flags().BoolVar(&flags.full, "full", false, "document every setting, not just the common ones")
	cmd.Flags().BoolVar(&flags.effective, "effective", false,
		"write the configuration resolved from files and environment instead of the defaults")
	cmd.MarkFlagsMutuallyExclusive("full", "effective")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "info")

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("%w: resolve path: %w", ErrIO, err)
	}

	_, statErr := os.Stat(absPath)
	switch {
	case statErr == nil && !flags.force:
		return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, flags.output)
	case statErr == nil:
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	case !errors.Is(statErr, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrIO, statErr)
	}

	content := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if flags.effective {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		if content, err = cfg.ToYAMLWithHeader(config.TemplateHeader); err != nil {
			return fmt.Errorf("generate config: %w", err)
		}
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("%w: write file: %w", ErrIO, err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/remote"
)

type serverFlags struct {
	host string
	port int
}

func newServerCommand() *cobra.Command {
	flags := &serverFlags{}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve comma repairs over HTTP",
		Long: `Start an HTTP server that repairs the text POSTed to it.

On start the server prints exactly one JSON line to stdout describing where
it listens, for example:

  {"kind":"started","addr":"localhost:41234","host":"localhost","port":41234}

A failure to listen is reported as {"kind":"error","error":"..."}. Logs go
to stderr. The server stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "localhost", "host to listen on")
	cmd.Flags().IntVar(&flags.port, "port", 0, "port to listen on (0 picks a free port)")

	return cmd
}

func runServer(cmd *cobra.Command, flags *serverFlags) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	level := "info"
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}

	srv := remote.NewServer(flags.host, flags.port)
	srv.Grammar = comma.Grammar{LiteralTails: cfg.Grammar.LiteralTails}
	srv.Logger = logging.NewServer(cmd.ErrOrStderr(), level)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

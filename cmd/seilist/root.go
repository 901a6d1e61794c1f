package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	seilog "github.com/automatizamg/seilist/internal/log"
)

// NewRootCmd creates the root command for seilist.
// Without a subcommand it runs a listing, like "seilist list".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seilist [saida]",
		Short: "List the processes of an SEI-MG unit and export them to a spreadsheet",
		Long: `seilist signs in to the SEI-MG portal, opens the process control screen,
switches to the configured unit when needed and exports every process of the
Recebidos and Gerados groups to an .xlsx file, one row per process.

Configuration comes from SEI_* environment variables, an optional .env file
and an optional .seilist.yaml file. Run "seilist init" to create templates.

Exit codes: 0 success, 10 configuration/authentication/listing error,
130 interrupted, 99 unexpected error.`,
		Version:       getVersion(),
		Args:          cobra.MaximumNArgs(1),
		RunE:          runListCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addListFlags(cmd)

	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, NewRootCmd(), os.Args[1:])
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger := seilog.NewSecureLogger(cmd.ErrOrStderr(), false)
			logger.Error("unexpected error", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			code = ExitUnexpected
		}
	}()

	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	var logged *loggedError
	if err != nil && !errors.As(err, &logged) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return exitCode(ctx, err)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"IntelBriefing/internal/config"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// NewRootCommand builds the command tree. The default action is a single briefing run.
func NewRootCommand(version string) *cobra.Command {
	var configPath string

	loadConfig := func() config.Config {
		if configPath != "" {
			return config.LoadFile(configPath)
		}
		return config.Load()
	}

	runCmd := newRunCommand(loadConfig)

	rootCmd := &cobra.Command{
		Use:   "intelbriefing",
		Short: "Scrape configured sources, summarize them and deliver a morning intel briefing",
		Long: `intelbriefing pulls fresh content from a fixed list of sources, condenses it with a
language model and sends the result to a Telegram chat.

Scheduling is left to cron or a systemd timer; every invocation performs exactly one run.`,
		RunE:          runCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (defaults to $INTEL_BRIEFING_CONFIG)")
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newSourcesCommand(loadConfig))
	rootCmd.AddCommand(newVersionCommand(version))

	return rootCmd
}

// Execute runs the CLI and returns the process exit status.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, NewRootCommand(version), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.msg != "" {
			fmt.Fprintln(stderr, "Error:", exitErr.msg)
		}
		return exitErr.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intelbriefing %s\n", version)
		},
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"IntelBriefing/internal/app"
	"IntelBriefing/internal/config"
	"IntelBriefing/internal/logging"
)

type runFlags struct {
	dryRun      bool
	minContent  int
	concurrency int
	interval    time.Duration
	backend     string
	provider    string
	logLevel    string
}

func newRunCommand(loadConfig func() config.Config) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Produce and deliver one briefing",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := flags.apply(cmd, loadConfig())
		if err := cfg.Validate(); err != nil {
			return &exitError{code: 1, msg: fmt.Sprintf("invalid configuration: %v", err)}
		}

		logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

		application, err := app.New(cfg, logger, app.Options{DryRun: flags.dryRun, Output: cmd.OutOrStdout()})
		if err != nil {
			return &exitError{code: 1, msg: err.Error()}
		}

		result := application.Run(cmd.Context())
		if code := app.ExitCode(result); code != 0 {
			return &exitError{code: code}
		}
		return nil
	}

	f := cmd.Flags()
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print the briefing instead of sending it")
	f.IntVar(&flags.minContent, "min-content", 0, "Minimum aggregated characters before summarizing (overrides config)")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Number of sources fetched in parallel (overrides config)")
	f.DurationVar(&flags.interval, "interval", 0, "Pause between fetches, e.g. 1s (overrides config)")
	f.StringVar(&flags.backend, "backend", "", "Scrape backend: firecrawl or direct (overrides config)")
	f.StringVar(&flags.provider, "provider", "", "Summarizer provider: gemini, openai or anthropic (overrides config)")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	return cmd
}

// apply copies explicitly set flags over cfg.
func (r *runFlags) apply(cmd *cobra.Command, cfg config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("min-content") {
		cfg.Pipeline.MinContentChars = r.minContent
	}
	if changed("concurrency") {
		cfg.Aggregator.Concurrency = r.concurrency
	}
	if changed("interval") {
		cfg.Aggregator.Interval = r.interval
	}
	if changed("backend") {
		cfg.Scraper.Backend = r.backend
	}
	if changed("provider") {
		cfg.Summarizer.Provider = r.provider
	}
	if changed("log-level") {
		cfg.Logging.Level = r.logLevel
	}
	return cfg
}

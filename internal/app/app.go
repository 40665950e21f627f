package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/infrastructure/console"
	"IntelBriefing/internal/infrastructure/discord"
	"IntelBriefing/internal/infrastructure/firecrawl"
	"IntelBriefing/internal/infrastructure/llm"
	"IntelBriefing/internal/infrastructure/telegram"
	"IntelBriefing/internal/infrastructure/web"
	"IntelBriefing/internal/logging"
	"IntelBriefing/internal/ports"
	"IntelBriefing/internal/scraper"
	"IntelBriefing/internal/usecase"
)

// Options adjust wiring for a single invocation.
type Options struct {
	// DryRun prints the briefing to Output instead of sending it.
	DryRun bool
	Output io.Writer
}

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	now      func() time.Time
}

// New builds a runnable application. Missing credentials degrade the matching
// stage instead of failing construction.
func New(cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	var fetcher usecase.Fetcher
	if backend, err := resolveScraper(cfg.Scraper); err != nil {
		baseLogger.Error("scrape backend unavailable", "backend", cfg.Scraper.Backend, "error", err)
	} else {
		fetcher = usecase.NewSourceFetcher(backend, cfg.Scraper.MaxChars, cfg.Scraper.Timeout,
			baseLogger.With("component", "fetcher", "backend", backend.Name()))
	}
	aggregator := usecase.NewAggregator(fetcher, cfg.Aggregator.Interval, cfg.Aggregator.Concurrency,
		baseLogger.With("component", "aggregator"))

	var generator ports.Generator
	if gen, err := llm.New(cfg.Summarizer); err != nil {
		baseLogger.Error("generation backend unavailable", "provider", cfg.Summarizer.Provider, "error", err)
	} else {
		generator = gen
	}
	summarizer, err := usecase.NewSummarizer(generator, cfg.Summarizer.Prompt, cfg.Summarizer.Timeout,
		baseLogger.With("component", "summarizer"))
	if err != nil {
		return nil, err
	}

	var messenger ports.Messenger
	switch {
	case opts.DryRun:
		messenger = console.NewMessenger(opts.Output)
	case cfg.Notifications.Telegram.Configured():
		messenger = telegram.NewNotifier(cfg.Notifications.Telegram, nil)
	default:
		baseLogger.Error("messaging backend unavailable", "error", fmt.Errorf("telegram: %w", domain.ErrMissingCredential))
	}
	notifier := usecase.NewNotifier(messenger, baseLogger.With("component", "notifier"))

	var alerter ports.Alerter
	if cfg.Notifications.Discord.Configured() && !opts.DryRun {
		a, err := discord.NewAlerter(cfg.Notifications.Discord)
		if err != nil {
			baseLogger.Warn("fallback alerter disabled", "error", err)
		} else {
			alerter = a
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:         domain.NewSources(cfg.Sources),
		Aggregator:      aggregator,
		Summarizer:      summarizer,
		Notifier:        notifier,
		Alerter:         alerter,
		MinContentChars: cfg.Pipeline.MinContentChars,
		Logger:          baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, now: time.Now}, nil
}

// Run performs a single pipeline execution dated in the configured timezone.
func (a *Application) Run(ctx context.Context) domain.RunResult {
	day := a.now().In(a.cfg.Briefing.Location())
	return a.pipeline.Run(ctx, day)
}

// Registry returns every scrape backend that can be built from cfg.
func Registry(cfg config.ScraperConfig) *scraper.Registry {
	reg := scraper.NewRegistry()
	reg.Register(web.NewScraper(cfg, nil))
	if cfg.APIKey != "" {
		reg.Register(firecrawl.NewClient(cfg, nil))
	}
	return reg
}

func resolveScraper(cfg config.ScraperConfig) (ports.Scraper, error) {
	backend, err := Registry(cfg).Resolve(cfg.Backend)
	if err != nil && cfg.Backend == "firecrawl" && cfg.APIKey == "" {
		return nil, errors.Join(fmt.Errorf("firecrawl: %w", domain.ErrMissingCredential), err)
	}
	return backend, err
}

// ExitCode maps a run outcome to the process exit status.
func ExitCode(result domain.RunResult) int {
	switch result.Outcome {
	case domain.OutcomeDelivered:
		return 0
	case domain.OutcomeDeliveredWithError:
		return 2
	case domain.OutcomeDeliveryFailed:
		return 3
	case domain.OutcomeAborted:
		return 4
	default:
		return 1
	}
}

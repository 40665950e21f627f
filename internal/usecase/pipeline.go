package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// PipelineDeps wires the stages and gates into the orchestrator.
type PipelineDeps struct {
	Sources         []domain.Source
	Aggregator      *Aggregator
	Summarizer      *Summarizer
	Notifier        *Notifier
	Alerter         ports.Alerter
	MinContentChars int
	Logger          *slog.Logger
}

// Pipeline sequences aggregate → summarize → deliver for one run.
type Pipeline struct {
	sources         []domain.Source
	aggregator      *Aggregator
	summarizer      *Summarizer
	notifier        *Notifier
	alerter         ports.Alerter
	minContentChars int
	logger          *slog.Logger
	newRunID        func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		sources:         deps.Sources,
		aggregator:      deps.Aggregator,
		summarizer:      deps.Summarizer,
		notifier:        deps.Notifier,
		alerter:         deps.Alerter,
		minContentChars: deps.MinContentChars,
		logger:          logger,
		newRunID:        uuid.NewString,
	}
}

// Run executes one briefing. It never returns an error; the outcome is in the result.
func (p *Pipeline) Run(ctx context.Context, day time.Time) domain.RunResult {
	result := domain.RunResult{
		RunID:   p.newRunID(),
		State:   domain.StateIdle,
		Sources: len(p.sources),
	}
	log := p.logger.With("run_id", result.RunID)

	transition := func(next domain.RunState) {
		log.Debug("state change", "from", result.State, "to", next)
		result.State = next
	}

	log.Info("run started", "sources", len(p.sources), "day", day.Format(dateLayout))

	if p.aggregator == nil || len(p.sources) == 0 {
		transition(domain.StateAborted)
		result.Outcome = domain.OutcomeAborted
		log.Error("run aborted: no aggregator or sources configured")
		p.alert(ctx, log, result, "no sources or scrape backend configured")
		return result
	}

	transition(domain.StateFetching)

	doc := p.aggregator.Aggregate(ctx, p.sources, day)
	result.DocumentLen = doc.Len()
	result.Included = doc.Included

	if doc.Text == "" || doc.Len() < p.minContentChars {
		transition(domain.StateAborted)
		result.Outcome = domain.OutcomeAborted
		log.Error("not enough data scraped", "chars", doc.Len(), "minimum", p.minContentChars, "included", doc.Included)
		p.alert(ctx, log, result, fmt.Sprintf("only %d chars from %d/%d sources (minimum %d)",
			doc.Len(), doc.Included, len(p.sources), p.minContentChars))
		return result
	}

	transition(domain.StateSummarizing)
	briefing := domain.Briefing{Text: SentinelNoAPIKey, Failed: true}
	if p.summarizer != nil {
		briefing = p.summarizer.Summarize(ctx, doc)
	}
	result.Briefing = briefing

	transition(domain.StateDelivering)
	if p.notifier != nil {
		result.Delivered = p.notifier.Deliver(ctx, briefing.Text)
	}

	transition(domain.StateDone)
	switch {
	case !result.Delivered:
		result.Outcome = domain.OutcomeDeliveryFailed
		p.alert(ctx, log, result, "briefing could not be delivered")
	case briefing.Failed:
		result.Outcome = domain.OutcomeDeliveredWithError
		p.alert(ctx, log, result, "delivered error briefing: "+briefing.Text)
	default:
		result.Outcome = domain.OutcomeDelivered
	}

	log.Info("run finished", "outcome", result.Outcome, "delivered", result.Delivered, "chars", result.DocumentLen)
	return result
}

func (p *Pipeline) alert(ctx context.Context, log *slog.Logger, result domain.RunResult, detail string) {
	if p.alerter == nil {
		return
	}
	msg := fmt.Sprintf("intel briefing run %s: %s (%s)", result.RunID, result.Outcome, detail)
	if err := p.alerter.Alert(ctx, msg); err != nil {
		log.Error("fallback alert failed", "error", err)
		return
	}
	log.Info("fallback alert sent", "outcome", result.Outcome)
}

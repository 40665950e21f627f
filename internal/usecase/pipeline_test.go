package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
)

type pipelineFixture struct {
	scraper   *fakeScraper
	generator *fakeGenerator
	messenger *fakeMessenger
	alerter   *fakeAlerter
}

func (f *pipelineFixture) build(t *testing.T, urls []string, minContent int) *Pipeline {
	t.Helper()

	summarizer, err := NewSummarizer(f.generator, config.DefaultPrompt, time.Second, nil)
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}
	deps := PipelineDeps{
		Sources:         domain.NewSources(urls),
		Aggregator:      NewAggregator(NewSourceFetcher(f.scraper, 3000, time.Second, nil), 0, 2, nil),
		Summarizer:      summarizer,
		Notifier:        NewNotifier(f.messenger, nil),
		MinContentChars: minContent,
	}
	if f.alerter != nil {
		deps.Alerter = f.alerter
	}
	p := NewPipeline(deps)
	p.newRunID = func() string { return "run-1" }
	return p
}

func TestRunDelivered(t *testing.T) {
	t.Parallel()

	f := &pipelineFixture{
		scraper: newFakeScraper(map[string]scrapeResult{
			"A": {text: strings.Repeat("news ", 40)},
			"B": {err: errors.New("blocked")},
		}),
		generator: &fakeGenerator{text: "🚨 Breaking: stuff"},
		messenger: &fakeMessenger{},
		alerter:   &fakeAlerter{},
	}

	res := f.build(t, []string{"A", "B"}, 100).Run(context.Background(), testDay)

	if res.State != domain.StateDone || res.Outcome != domain.OutcomeDelivered || !res.OK() {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RunID != "run-1" || res.Included != 1 || res.Sources != 2 {
		t.Fatalf("unexpected bookkeeping: %+v", res)
	}
	if f.messenger.sent[0] != "🚨 Breaking: stuff" {
		t.Fatalf("unexpected delivery: %v", f.messenger.sent)
	}
	if len(f.alerter.alerts) != 0 {
		t.Fatalf("no alert expected on success: %v", f.alerter.alerts)
	}
}

func TestRunAbortsBelowThreshold(t *testing.T) {
	t.Parallel()

	f := &pipelineFixture{
		scraper:   newFakeScraper(map[string]scrapeResult{"A": {text: "tiny"}}),
		generator: &fakeGenerator{text: "unused"},
		messenger: &fakeMessenger{},
		alerter:   &fakeAlerter{},
	}

	res := f.build(t, []string{"A"}, 100).Run(context.Background(), testDay)

	if res.DocumentLen >= 100 {
		t.Fatalf("fixture should stay below threshold, got %d", res.DocumentLen)
	}
	if res.State != domain.StateAborted || res.Outcome != domain.OutcomeAborted {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.generator.calls.Load() != 0 || f.messenger.calls.Load() != 0 {
		t.Fatalf("summarizer and notifier must not run: gen=%d msg=%d", f.generator.calls.Load(), f.messenger.calls.Load())
	}
	if len(f.alerter.alerts) != 1 || !strings.Contains(f.alerter.alerts[0], "aborted") {
		t.Fatalf("expected one abort alert, got %v", f.alerter.alerts)
	}
}

func TestRunAbortsOnFiftyCharDocument(t *testing.T) {
	t.Parallel()

	// Date header (18) + banner block overhead for "A" (20) + 12 chars of text = 50.
	f := &pipelineFixture{
		scraper:   newFakeScraper(map[string]scrapeResult{"A": {text: strings.Repeat("x", 12)}}),
		generator: &fakeGenerator{text: "unused"},
		messenger: &fakeMessenger{},
		alerter:   &fakeAlerter{},
	}

	res := f.build(t, []string{"A"}, 100).Run(context.Background(), testDay)

	if res.DocumentLen != 50 {
		t.Fatalf("expected a 50 char document, got %d", res.DocumentLen)
	}
	if res.State != domain.StateAborted {
		t.Fatalf("expected aborted, got %s", res.State)
	}
	if f.generator.calls.Load() != 0 || f.messenger.calls.Load() != 0 {
		t.Fatalf("expected zero downstream calls")
	}
	if len(f.alerter.alerts) != 1 || !strings.Contains(f.alerter.alerts[0], "only 50 chars") {
		t.Fatalf("expected one abort alert, got %v", f.alerter.alerts)
	}
}

func TestRunWithoutAlerter(t *testing.T) {
	t.Parallel()

	f := &pipelineFixture{
		scraper:   newFakeScraper(map[string]scrapeResult{"A": {text: "tiny"}}),
		generator: &fakeGenerator{text: "unused"},
		messenger: &fakeMessenger{},
	}

	res := f.build(t, []string{"A"}, 100).Run(context.Background(), testDay)
	if res.Outcome != domain.OutcomeAborted {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunDeliversSentinelOnGenerationFailure(t *testing.T) {
	t.Parallel()

	f := &pipelineFixture{
		scraper:   newFakeScraper(map[string]scrapeResult{"A": {text: strings.Repeat("a", 200)}}),
		generator: &fakeGenerator{err: errors.New("500 internal")},
		messenger: &fakeMessenger{},
		alerter:   &fakeAlerter{},
	}

	res := f.build(t, []string{"A"}, 100).Run(context.Background(), testDay)

	if res.Outcome != domain.OutcomeDeliveredWithError || res.State != domain.StateDone {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.messenger.calls.Load() != 1 || f.messenger.sent[0] != SentinelGenerationFail {
		t.Fatalf("sentinel must still be delivered, got %v", f.messenger.sent)
	}
	if len(f.alerter.alerts) != 1 {
		t.Fatalf("expected a fallback alert, got %v", f.alerter.alerts)
	}
}

func TestRunDeliveryFailureStillDone(t *testing.T) {
	t.Parallel()

	f := &pipelineFixture{
		scraper:   newFakeScraper(map[string]scrapeResult{"A": {text: strings.Repeat("a", 200)}}),
		generator: &fakeGenerator{text: "brief"},
		messenger: &fakeMessenger{err: errors.New("telegram down")},
		alerter:   &fakeAlerter{err: errors.New("discord down too")},
	}

	res := f.build(t, []string{"A"}, 100).Run(context.Background(), testDay)

	if res.State != domain.StateDone || res.Outcome != domain.OutcomeDeliveryFailed || res.Delivered {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.messenger.calls.Load() != 1 {
		t.Fatalf("expected a single delivery attempt, got %d", f.messenger.calls.Load())
	}
	if len(f.alerter.alerts) != 1 {
		t.Fatalf("expected one alert attempt, got %d", len(f.alerter.alerts))
	}
}

func TestRunWithoutScrapeBackendAborts(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "unused"}
	summarizer, err := NewSummarizer(gen, config.DefaultPrompt, 0, nil)
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}
	p := NewPipeline(PipelineDeps{
		Sources:    domain.NewSources([]string{"A"}),
		Aggregator: NewAggregator(nil, 0, 1, nil),
		Summarizer: summarizer,
		Notifier:   NewNotifier(&fakeMessenger{}, nil),
	})

	res := p.Run(context.Background(), testDay)
	if res.Outcome != domain.OutcomeAborted || gen.calls.Load() != 0 {
		t.Fatalf("unexpected result: %+v (calls=%d)", res, gen.calls.Load())
	}
}

func TestRunWithoutSourcesAbortsBeforeFetching(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	scraper := newFakeScraper(nil)
	alerter := &fakeAlerter{}
	p := NewPipeline(PipelineDeps{
		Aggregator: NewAggregator(NewSourceFetcher(scraper, 3000, time.Second, nil), 0, 1, nil),
		Alerter:    alerter,
		Logger:     slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	res := p.Run(context.Background(), testDay)
	if res.State != domain.StateAborted || res.Outcome != domain.OutcomeAborted {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(logs.String(), "from=idle to=aborted") || strings.Contains(logs.String(), "to=fetching") {
		t.Fatalf("expected idle -> aborted without fetching, logs:\n%s", logs.String())
	}
	if len(alerter.alerts) != 1 {
		t.Fatalf("expected one alert, got %v", alerter.alerts)
	}
}

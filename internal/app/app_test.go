package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		Scraper:    config.ScraperConfig{Backend: "direct", Timeout: time.Second, MaxChars: 3000},
		Aggregator: config.AggregatorConfig{Concurrency: 2},
		Summarizer: config.SummarizerConfig{Provider: "gemini", Timeout: time.Second, Prompt: config.DefaultPrompt},
		Pipeline:   config.PipelineConfig{MinContentChars: 100},
	}
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	article := "<html><body><main><h1>Release notes</h1><p>" + strings.Repeat("Useful content. ", 20) + "</p></main></body></html>"
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_, _ = w.Write([]byte(article))
	}))
	defer pages.Close()

	var (
		mu        sync.Mutex
		prompt    string
		delivered []string
	)
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		prompt = string(body)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"🚨 Breaking: release notes"}]}}]}`))
	}))
	defer gemini.Close()

	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		mu.Lock()
		delivered = append(delivered, r.PostForm.Get("text"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer tg.Close()

	cfg := testConfig()
	cfg.Sources = []string{pages.URL + "/ok", pages.URL + "/broken"}
	cfg.Summarizer.Endpoint = gemini.URL
	cfg.Summarizer.Keys.Gemini = "gem-key"
	cfg.Notifications.Telegram = config.TelegramConfig{BotToken: "T", ChatID: "1", Endpoint: tg.URL}

	application, err := New(cfg, logging.Discard(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	application.now = func() time.Time { return time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC) }

	res := application.Run(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if res.Outcome != domain.OutcomeDelivered || ExitCode(res) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Included != 1 {
		t.Fatalf("expected one included source, got %d", res.Included)
	}
	if !strings.Contains(prompt, "Date: 2026-10-18") || !strings.Contains(prompt, "=== SOURCE: "+pages.URL+"/ok ===") {
		t.Fatalf("prompt missing aggregated document: %s", prompt)
	}
	if strings.Contains(prompt, "/broken") {
		t.Fatalf("failed source leaked into prompt")
	}
	if len(delivered) != 1 || delivered[0] != "🚨 Breaking: release notes" {
		t.Fatalf("unexpected deliveries: %v", delivered)
	}
}

func TestRunWithoutCredentials(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Scraper.Backend = "firecrawl"
	cfg.Sources = []string{"https://news.ycombinator.com/news"}

	application, err := New(cfg, logging.Discard(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := application.Run(context.Background())
	if res.Outcome != domain.OutcomeAborted || ExitCode(res) != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.DocumentLen != 0 {
		t.Fatalf("expected empty document, got %d chars", res.DocumentLen)
	}
}

func TestDryRunPrintsSentinel(t *testing.T) {
	t.Parallel()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("word ", 50) + "</p>"))
	}))
	defer pages.Close()

	cfg := testConfig()
	cfg.Sources = []string{pages.URL}

	var out bytes.Buffer
	application, err := New(cfg, logging.Discard(), Options{DryRun: true, Output: &out})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := application.Run(context.Background())
	if res.Outcome != domain.OutcomeDeliveredWithError || ExitCode(res) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if strings.TrimSpace(out.String()) != "Error: No API Key found." {
		t.Fatalf("unexpected dry-run output: %q", out.String())
	}
}

func TestNewRejectsBadPrompt(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Summarizer.Prompt = "{{.News"
	if _, err := New(cfg, logging.Discard(), Options{}); err == nil {
		t.Fatalf("expected prompt error")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	names := Registry(config.ScraperConfig{}).Names()
	if len(names) != 1 || names[0] != "direct" {
		t.Fatalf("unexpected backends without key: %v", names)
	}
	names = Registry(config.ScraperConfig{APIKey: "k"}).Names()
	if len(names) != 2 {
		t.Fatalf("unexpected backends with key: %v", names)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[domain.Outcome]int{
		domain.OutcomeDelivered:          0,
		domain.OutcomeDeliveredWithError: 2,
		domain.OutcomeDeliveryFailed:     3,
		domain.OutcomeAborted:            4,
		"":                               1,
	}
	for outcome, want := range tests {
		if got := ExitCode(domain.RunResult{Outcome: outcome}); got != want {
			t.Fatalf("ExitCode(%q) = %d, want %d", outcome, got, want)
		}
	}
}

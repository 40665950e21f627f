package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

type scrapeResult struct {
	text  string
	err   error
	panic bool
	delay time.Duration
}

type fakeScraper struct {
	mu      sync.Mutex
	results map[string]scrapeResult
	calls   []string
}

func newFakeScraper(results map[string]scrapeResult) *fakeScraper {
	return &fakeScraper{results: results}
}

func (f *fakeScraper) Name() string { return "fake" }

func (f *fakeScraper) Scrape(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	res, ok := f.results[url]
	f.mu.Unlock()

	if res.delay > 0 {
		select {
		case <-time.After(res.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if res.panic {
		panic("backend exploded")
	}
	if !ok {
		return "", errors.New("unknown url")
	}
	return res.text, res.err
}

func (f *fakeScraper) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeGenerator struct {
	text    string
	err     error
	calls   atomic.Int32
	prompts []string
}

func (g *fakeGenerator) Name() string { return "fake-llm" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type fakeMessenger struct {
	err   error
	calls atomic.Int32
	sent  []string
}

func (m *fakeMessenger) Send(_ context.Context, text string) error {
	m.calls.Add(1)
	m.sent = append(m.sent, text)
	return m.err
}

type fakeAlerter struct {
	alerts []string
	err    error
}

func (a *fakeAlerter) Alert(_ context.Context, text string) error {
	a.alerts = append(a.alerts, text)
	return a.err
}

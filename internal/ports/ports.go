package ports

import "context"

// Scraper renders a web page as markdown-like text.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, url string) (string, error)
}

// Generator turns a prompt into a single, non-streaming completion.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Messenger delivers plain text to the configured destination.
type Messenger interface {
	Send(ctx context.Context, text string) error
}

// Alerter is a secondary channel used when a run did not deliver a real briefing.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

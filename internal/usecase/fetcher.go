package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// DefaultMaxExcerptChars caps the text kept from a single source.
const DefaultMaxExcerptChars = 3000

// SourceFetcher scrapes one source and never lets a backend failure escape.
type SourceFetcher struct {
	scraper  ports.Scraper
	maxChars int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSourceFetcher wraps scraper with truncation and a per-call timeout (0 disables it).
func NewSourceFetcher(scraper ports.Scraper, maxChars int, timeout time.Duration, logger *slog.Logger) *SourceFetcher {
	if maxChars <= 0 {
		maxChars = DefaultMaxExcerptChars
	}
	return &SourceFetcher{
		scraper:  scraper,
		maxChars: maxChars,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch returns an Excerpt with status ok, empty or failed.
func (f *SourceFetcher) Fetch(ctx context.Context, src domain.Source) (excerpt domain.Excerpt) {
	excerpt = domain.Excerpt{Source: src}

	defer func() {
		if r := recover(); r != nil {
			excerpt = domain.Excerpt{
				Source: src,
				Status: domain.FetchFailed,
				Err:    fmt.Errorf("%w: scraper panic: %v", domain.ErrBackendTransport, r),
			}
			f.warn("scrape panicked", "url", src.URL, "panic", r)
		}
	}()

	if f.scraper == nil {
		excerpt.Status = domain.FetchFailed
		excerpt.Err = fmt.Errorf("scraper: %w", domain.ErrMissingCredential)
		return excerpt
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.debug("scraping", "url", src.URL, "position", src.Position)

	text, err := f.scraper.Scrape(ctx, src.URL)
	if err != nil {
		excerpt.Status = domain.FetchFailed
		excerpt.Err = err
		f.warn("failed to scrape", "url", src.URL, "error", err)
		return excerpt
	}

	text = truncate(text, f.maxChars)
	if strings.TrimSpace(text) == "" {
		excerpt.Status = domain.FetchEmpty
		excerpt.Err = domain.ErrBackendContent
		f.warn("no markdown content", "url", src.URL)
		return excerpt
	}

	excerpt.Text = text
	excerpt.Status = domain.FetchOK
	f.debug("scraped", "url", src.URL, "chars", len([]rune(text)))
	return excerpt
}

// truncate keeps at most max characters without splitting a UTF-8 sequence.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}

func (f *SourceFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *SourceFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

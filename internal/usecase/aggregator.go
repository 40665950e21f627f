package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"IntelBriefing/internal/domain"
)

const dateLayout = "2006-01-02"

// Fetcher is the per-source capability the aggregator drives.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) domain.Excerpt
}

// Aggregator fetches every configured source and concatenates the usable excerpts.
type Aggregator struct {
	fetcher     Fetcher
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewAggregator paces fetches to one per interval (0 disables pacing) with at most
// concurrency fetches in flight. A nil fetcher means the scrape backend is unavailable.
func NewAggregator(fetcher Fetcher, interval time.Duration, concurrency int, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Aggregator{
		fetcher:     fetcher,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: concurrency,
		logger:      logger,
	}
}

// DateHeader renders the line every document starts with.
func DateHeader(day time.Time) string {
	return fmt.Sprintf("Date: %s\n\n", day.Format(dateLayout))
}

// Banner renders the provenance line placed before each excerpt.
func Banner(url string) string {
	return fmt.Sprintf("=== SOURCE: %s ===", url)
}

// Aggregate fetches sources exactly once each and assembles them in source order.
// An unavailable fetcher yields an empty document.
func (a *Aggregator) Aggregate(ctx context.Context, sources []domain.Source, day time.Time) domain.Document {
	if a.fetcher == nil {
		a.logError("scrape backend unavailable, skipping fetch")
		return domain.Document{}
	}

	a.info("aggregating sources", "sources", len(sources), "concurrency", a.concurrency, "day", day.Format(dateLayout))

	excerpts := make([]domain.Excerpt, len(sources))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := a.limiter.Wait(ctx); err != nil {
				excerpts[i] = domain.Excerpt{Source: src, Status: domain.FetchFailed, Err: err}
				a.warn("pacing wait aborted", "url", src.URL, "error", err)
				return nil
			}
			excerpts[i] = a.fetcher.Fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var sb strings.Builder
	sb.WriteString(DateHeader(day))

	doc := domain.Document{Attempted: len(sources)}
	for _, ex := range excerpts {
		if ex.Status != domain.FetchOK {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(Banner(ex.Source.URL))
		sb.WriteString("\n")
		sb.WriteString(ex.Text)
		doc.Included++
	}
	doc.Text = sb.String()

	a.info("aggregation done", "included", doc.Included, "attempted", doc.Attempted, "chars", doc.Len())
	return doc
}

func (a *Aggregator) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Aggregator) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}

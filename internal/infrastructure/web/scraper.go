package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

const (
	noiseSelector   = "script, style, noscript, svg, iframe, nav, header, footer, aside, form"
	blockSelector   = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, tr, br"
	headingSelector = "h1, h2, h3, h4, h5, h6"
)

// Scraper fetches pages directly and renders them as plain markdown-like text.
// It needs no credential and serves as a fallback for the hosted backend.
type Scraper struct {
	client    *http.Client
	userAgent string
	policy    *bluemonday.Policy
}

var _ ports.Scraper = (*Scraper)(nil)

// NewScraper wires an HTTP client; a nil client gets the configured timeout.
func NewScraper(cfg config.ScraperConfig, client *http.Client) *Scraper {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "IntelBriefing/1.0"
	}
	return &Scraper{client: client, userAgent: userAgent, policy: textPolicy()}
}

// Name identifies the backend inside the scraper registry.
func (s *Scraper) Name() string {
	return "direct"
}

// Scrape downloads url and extracts its readable text.
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return "", err
	}
	return s.extractText(doc)
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request document: %v", domain.ErrBackendTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrBackendTransport, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", domain.ErrBackendContent, err)
	}

	return doc, nil
}

func (s *Scraper) extractText(doc *goquery.Document) (string, error) {
	doc.Find(noiseSelector).Remove()

	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	raw, err := root.Html()
	if err != nil {
		return "", fmt.Errorf("%w: render document: %v", domain.ErrBackendContent, err)
	}

	clean, err := goquery.NewDocumentFromReader(strings.NewReader(s.policy.Sanitize(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: parse sanitized document: %v", domain.ErrBackendContent, err)
	}

	clean.Find(headingSelector).PrependHtml("# ")
	clean.Find("li").PrependHtml("- ")
	clean.Find(blockSelector).AppendHtml("\n")

	return collapseWhitespace(clean.Text()), nil
}

// textPolicy keeps only the block structure needed to lay out text; everything else is unwrapped.
func textPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "ul", "ol", "li", "pre", "blockquote", "table", "tr", "td", "th", "br")
	return p
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "#" || line == "-" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

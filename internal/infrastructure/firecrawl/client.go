package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

const defaultEndpoint = "https://api.firecrawl.dev"

// Client implements ports.Scraper against the Firecrawl scrape API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Scraper = (*Client)(nil)

// NewClient builds a client from configuration. A nil httpClient gets the configured timeout.
func NewClient(cfg config.ScraperConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Name identifies the backend inside the scraper registry.
func (c *Client) Name() string {
	return "firecrawl"
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Scrape requests the markdown rendering of url.
func (c *Client) Scrape(ctx context.Context, url string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("firecrawl: %w", domain.ErrMissingCredential)
	}

	body, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}})
	if err != nil {
		return "", fmt.Errorf("marshal scrape payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: firecrawl scrape: %v", domain.ErrBackendTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: firecrawl error %s: %s", domain.ErrBackendTransport, resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode firecrawl response: %v", domain.ErrBackendContent, err)
	}
	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = "success=false"
		}
		return "", fmt.Errorf("%w: firecrawl: %s", domain.ErrBackendContent, msg)
	}

	return decoded.Data.Markdown, nil
}

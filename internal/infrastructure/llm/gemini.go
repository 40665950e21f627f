package llm

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

const (
	geminiEndpoint     = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-1.5-flash"
)

// GeminiClient implements ports.Generator backed by the generateContent REST API.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Generator = (*GeminiClient)(nil)

// NewGeminiClient builds a client; a nil httpClient gets the configured timeout.
func NewGeminiClient(cfg config.SummarizerConfig, apiKey string, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = geminiEndpoint
	}
	return &GeminiClient{
		endpoint:   endpoint,
		model:      normalizeModel(cfg.Model),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Name reports provider and model for logging.
func (c *GeminiClient) Name() string {
	return "gemini/" + strings.TrimPrefix(c.model, "models/")
}

// Generate sends prompt as a single user turn and returns the first non-blank text part.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the key; report the transport error without it.
		return "", fmt.Errorf("%w: gemini request failed: %v", domain.ErrBackendTransport, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: gemini error %s: %s", domain.ErrBackendTransport, resp.Status, strings.TrimSpace(string(payload)))
	}

	var result generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %v", domain.ErrBackendContent, err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no text", domain.ErrBackendContent)
	}
	return text, nil
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Text joins the parts of the first candidate that carries any text.
func (r generateContentResponse) Text() string {
	for _, candidate := range r.Candidates {
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if strings.TrimSpace(b.String()) != "" {
			return b.String()
		}
	}
	return ""
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

func redact(err error, secret string) string {
	if secret == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), secret, "REDACTED")
}

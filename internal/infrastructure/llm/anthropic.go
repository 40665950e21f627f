package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

const (
	defaultAnthropicModel = "claude-haiku-4-5"
	anthropicMaxTokens    = 1024
)

// AnthropicGenerator implements ports.Generator with the messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
}

var _ ports.Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator builds a generator. A non-default endpoint is used as the API base URL.
func NewAnthropicGenerator(cfg config.SummarizerConfig, apiKey string, opts ...option.RequestOption) *AnthropicGenerator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = defaultAnthropicModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	if base := customEndpoint(cfg.Endpoint); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	reqOpts = append(reqOpts, opts...)

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicGenerator{client: &client, model: model}
}

// Name reports provider and model for logging.
func (g *AnthropicGenerator) Name() string {
	return "anthropic/" + g.model
}

// Generate sends prompt as one user message and joins the returned text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic API error: %v", domain.ErrBackendTransport, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: no response from anthropic", domain.ErrBackendContent)
	}

	return sb.String(), nil
}

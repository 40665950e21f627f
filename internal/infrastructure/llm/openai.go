package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// OpenAIGenerator implements ports.Generator with chat completions.
type OpenAIGenerator struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ ports.Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator builds a generator. A non-default endpoint is used as the API base URL.
func NewOpenAIGenerator(cfg config.SummarizerConfig, apiKey string, opts ...option.RequestOption) *OpenAIGenerator {
	model := openai.ChatModel(strings.TrimSpace(cfg.Model))
	if model == "" || strings.HasPrefix(string(model), "gemini") {
		model = openai.ChatModelGPT4oMini
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	if base := customEndpoint(cfg.Endpoint); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	reqOpts = append(reqOpts, opts...)

	client := openai.NewClient(reqOpts...)
	return &OpenAIGenerator{client: &client, model: model}
}

// Name reports provider and model for logging.
func (g *OpenAIGenerator) Name() string {
	return "openai/" + string(g.model)
}

// Generate sends prompt as one user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai API error: %v", domain.ErrBackendTransport, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no response from openai", domain.ErrBackendContent)
	}

	return resp.Choices[0].Message.Content, nil
}

// customEndpoint drops the Gemini default so SDK clients keep their own base URL.
func customEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || strings.TrimRight(endpoint, "/") == geminiEndpoint {
		return ""
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint
}

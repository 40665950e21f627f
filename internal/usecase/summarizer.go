package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"IntelBriefing/internal/domain"
	"IntelBriefing/internal/ports"
)

// Sentinels delivered in place of a briefing.
const (
	SentinelNoAPIKey       = "Error: No API Key found."
	SentinelGenerationFail = "Error generating summary."
)

// Summarizer condenses an aggregated document into a briefing with one generation call.
type Summarizer struct {
	generator ports.Generator
	prompt    *template.Template
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSummarizer parses promptTemplate, which receives the document as {{.News}}.
// A nil generator means the generation credential is absent.
func NewSummarizer(generator ports.Generator, promptTemplate string, timeout time.Duration, logger *slog.Logger) (*Summarizer, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Summarizer{
		generator: generator,
		prompt:    tmpl,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// BuildPrompt embeds the document verbatim into the instruction template.
func (s *Summarizer) BuildPrompt(doc domain.Document) (string, error) {
	var sb strings.Builder
	if err := s.prompt.Execute(&sb, struct{ News string }{News: doc.Text}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

// Summarize never fails: backend problems become a sentinel briefing.
func (s *Summarizer) Summarize(ctx context.Context, doc domain.Document) domain.Briefing {
	if s.generator == nil {
		s.log(slog.LevelError, "generation backend unavailable", "error", domain.ErrMissingCredential)
		return domain.Briefing{Text: SentinelNoAPIKey, Failed: true}
	}

	prompt, err := s.BuildPrompt(doc)
	if err != nil {
		s.log(slog.LevelError, "cannot build prompt", "error", err)
		return domain.Briefing{Text: SentinelGenerationFail, Failed: true}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log(slog.LevelInfo, "generating briefing", "backend", s.generator.Name(), "prompt_chars", len([]rune(prompt)))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log(slog.LevelError, "generation failed", "backend", s.generator.Name(), "error", err)
		return domain.Briefing{Text: SentinelGenerationFail, Failed: true}
	}
	if strings.TrimSpace(text) == "" {
		s.log(slog.LevelError, "generation returned empty text", "backend", s.generator.Name(), "error", domain.ErrBackendContent)
		return domain.Briefing{Text: SentinelGenerationFail, Failed: true}
	}

	return domain.Briefing{Text: text}
}

func (s *Summarizer) log(level slog.Level, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Log(context.Background(), level, msg, args...)
	}
}

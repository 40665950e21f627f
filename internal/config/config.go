package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv       = "INTEL_BRIEFING_CONFIG"
	logLevelEnv         = "LOG_LEVEL"
	telegramTokenEnv    = "TELEGRAM_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	geminiAPIKeyEnv     = "GEMINI_API_KEY"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	anthropicAPIKeyEnv  = "ANTHROPIC_API_KEY"
	firecrawlKeyEnv     = "FIRECRAWL_KEY"
	discordTokenEnv     = "DISCORD_BOT_TOKEN"
	discordChannelIDEnv = "DISCORD_CHANNEL_ID"
	minContentEnv       = "BRIEFING_MIN_CONTENT"
)

// Validation errors returned by Config.Validate.
var (
	ErrNoSources          = errors.New("at least one source is required")
	ErrInvalidMaxChars    = errors.New("scraper.maxChars must be at least 1")
	ErrInvalidConcurrency = errors.New("aggregator.concurrency must be at least 1")
	ErrInvalidInterval    = errors.New("aggregator.interval must be non-negative")
	ErrInvalidMinContent  = errors.New("pipeline.minContentChars must be non-negative")
	ErrUnknownBackend     = errors.New("scraper.backend must be one of: firecrawl, direct")
	ErrUnknownProvider    = errors.New("summarizer.provider must be one of: gemini, openai, anthropic")
)

// Config holds every setting the briefing run needs. It is built once by Load and never mutated afterwards.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Briefing      BriefingConfig     `yaml:"briefing"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Aggregator    AggregatorConfig   `yaml:"aggregator"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []string           `yaml:"sources"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BriefingConfig carries settings for the date header.
type BriefingConfig struct {
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the briefing timezone string to a time.Location.
func (b BriefingConfig) Location() *time.Location {
	if b.location != nil {
		return b.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ScraperConfig selects and configures the scraping backend.
type ScraperConfig struct {
	Backend   string        `yaml:"backend"`
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"apiKey"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxChars  int           `yaml:"maxChars"`
}

// AggregatorConfig bounds how fast and how wide sources are fetched.
type AggregatorConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
}

// SummarizerConfig defines how to contact the generation backend.
type SummarizerConfig struct {
	Provider string        `yaml:"provider"`
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	Prompt   string        `yaml:"prompt"`
	Keys     ProviderKeys  `yaml:"keys"`
}

// ProviderKeys stores one credential per generation provider.
type ProviderKeys struct {
	Gemini    string `yaml:"gemini"`
	OpenAI    string `yaml:"openai"`
	Anthropic string `yaml:"anthropic"`
}

// APIKey returns the credential of the selected provider.
func (s SummarizerConfig) APIKey() string {
	switch s.Provider {
	case "openai":
		return s.Keys.OpenAI
	case "anthropic":
		return s.Keys.Anthropic
	default:
		return s.Keys.Gemini
	}
}

// PipelineConfig holds orchestrator gates.
type PipelineConfig struct {
	MinContentChars int `yaml:"minContentChars"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Discord  DiscordConfig  `yaml:"discord"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	Endpoint string `yaml:"endpoint"`
}

// Configured reports whether both the token and the destination are present.
func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// DiscordConfig describes the fallback alert channel.
type DiscordConfig struct {
	BotToken  string `yaml:"botToken"`
	ChannelID string `yaml:"channelId"`
}

// Configured reports whether the alert channel can be used.
func (d DiscordConfig) Configured() bool {
	return d.BotToken != "" && d.ChannelID != ""
}

// Load reads .env, the YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(path string) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
				cfg = applyExplicitZeros(cfg, raw)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate checks numeric bounds and backend names.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sources) == 0 {
		errs = append(errs, ErrNoSources)
	}
	if c.Scraper.MaxChars < 1 {
		errs = append(errs, ErrInvalidMaxChars)
	}
	if c.Aggregator.Concurrency < 1 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	if c.Aggregator.Interval < 0 {
		errs = append(errs, ErrInvalidInterval)
	}
	if c.Pipeline.MinContentChars < 0 {
		errs = append(errs, ErrInvalidMinContent)
	}
	switch c.Scraper.Backend {
	case "firecrawl", "direct":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrUnknownBackend, c.Scraper.Backend))
	}
	switch c.Summarizer.Provider {
	case "gemini", "openai", "anthropic":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrUnknownProvider, c.Summarizer.Provider))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(discordTokenEnv); v != "" {
		c.Notifications.Discord.BotToken = v
	}
	if v := os.Getenv(discordChannelIDEnv); v != "" {
		c.Notifications.Discord.ChannelID = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Summarizer.Keys.Gemini = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Summarizer.Keys.OpenAI = v
	}
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Summarizer.Keys.Anthropic = v
	}

	if v := os.Getenv(firecrawlKeyEnv); v != "" {
		c.Scraper.APIKey = v
	}

	if v := os.Getenv(minContentEnv); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Printf("config: ignoring %s=%q: %v", minContentEnv, v, err)
		} else {
			c.Pipeline.MinContentChars = n
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Briefing.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Briefing.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Briefing.Timezone != "" {
		base.Briefing.Timezone = override.Briefing.Timezone
	}

	if override.Scraper.Backend != "" {
		base.Scraper.Backend = override.Scraper.Backend
	}
	if override.Scraper.Endpoint != "" {
		base.Scraper.Endpoint = override.Scraper.Endpoint
	}
	if override.Scraper.APIKey != "" {
		base.Scraper.APIKey = override.Scraper.APIKey
	}
	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}
	if override.Scraper.Timeout > 0 {
		base.Scraper.Timeout = override.Scraper.Timeout
	}
	if override.Scraper.MaxChars > 0 {
		base.Scraper.MaxChars = override.Scraper.MaxChars
	}

	if override.Aggregator.Interval != 0 {
		base.Aggregator.Interval = override.Aggregator.Interval
	}
	if override.Aggregator.Concurrency != 0 {
		base.Aggregator.Concurrency = override.Aggregator.Concurrency
	}

	if override.Summarizer.Provider != "" {
		base.Summarizer.Provider = override.Summarizer.Provider
	}
	if override.Summarizer.Endpoint != "" {
		base.Summarizer.Endpoint = override.Summarizer.Endpoint
	}
	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}
	if override.Summarizer.Timeout > 0 {
		base.Summarizer.Timeout = override.Summarizer.Timeout
	}
	if override.Summarizer.Prompt != "" {
		base.Summarizer.Prompt = override.Summarizer.Prompt
	}
	if override.Summarizer.Keys.Gemini != "" {
		base.Summarizer.Keys.Gemini = override.Summarizer.Keys.Gemini
	}
	if override.Summarizer.Keys.OpenAI != "" {
		base.Summarizer.Keys.OpenAI = override.Summarizer.Keys.OpenAI
	}
	if override.Summarizer.Keys.Anthropic != "" {
		base.Summarizer.Keys.Anthropic = override.Summarizer.Keys.Anthropic
	}

	if override.Pipeline.MinContentChars != 0 {
		base.Pipeline.MinContentChars = override.Pipeline.MinContentChars
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.Endpoint != "" {
		base.Notifications.Telegram.Endpoint = override.Notifications.Telegram.Endpoint
	}
	if override.Notifications.Discord.BotToken != "" {
		base.Notifications.Discord.BotToken = override.Notifications.Discord.BotToken
	}
	if override.Notifications.Discord.ChannelID != "" {
		base.Notifications.Discord.ChannelID = override.Notifications.Discord.ChannelID
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

// explicitZeros captures fields where zero is a meaningful setting
// (no pacing, no content gate) and must not fall back to the default.
type explicitZeros struct {
	Aggregator struct {
		Interval *time.Duration `yaml:"interval"`
	} `yaml:"aggregator"`
	Pipeline struct {
		MinContentChars *int `yaml:"minContentChars"`
	} `yaml:"pipeline"`
}

func applyExplicitZeros(cfg Config, raw []byte) Config {
	var set explicitZeros
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return cfg
	}
	if set.Aggregator.Interval != nil {
		cfg.Aggregator.Interval = *set.Aggregator.Interval
	}
	if set.Pipeline.MinContentChars != nil {
		cfg.Pipeline.MinContentChars = *set.Pipeline.MinContentChars
	}
	return cfg
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Briefing: BriefingConfig{Timezone: defaultTimezone, location: tz},
		Scraper: ScraperConfig{
			Backend:   "firecrawl",
			Endpoint:  "https://api.firecrawl.dev",
			UserAgent: "IntelBriefing/1.0",
			Timeout:   30 * time.Second,
			MaxChars:  3000,
		},
		Aggregator: AggregatorConfig{Interval: time.Second, Concurrency: 1},
		Summarizer: SummarizerConfig{
			Provider: "gemini",
			Endpoint: "https://generativelanguage.googleapis.com",
			Model:    "gemini-1.5-flash",
			Timeout:  60 * time.Second,
			Prompt:   DefaultPrompt,
		},
		Pipeline: PipelineConfig{MinContentChars: 100},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{Endpoint: "https://api.telegram.org"},
		},
		Sources: []string{
			"https://github.com/trending/python?since=daily",
			"https://news.ycombinator.com/news",
			"https://huggingface.co/papers",
			"https://www.producthunt.com/topics/artificial-intelligence",
			"https://simonwillison.net/",
			"https://techcrunch.com/category/artificial-intelligence/",
		},
	}
}

// DefaultPrompt is the instruction template; {{.News}} receives the aggregated document verbatim.
const DefaultPrompt = `You are a cynical software engineer's assistant. Filter signal from noise.

Raw News:
{{.News}}

TASK: Write a 'Morning Intel' briefing.
RULES:
1. Sections: 🚨 Breaking, 🛠️ New Tools, 🔬 Research, ⚠️ Security.
2. No fluff. Bullet points. Under 400 words.
`

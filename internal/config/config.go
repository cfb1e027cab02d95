package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	defaultOverlap        = 100
	defaultBreakThreshold = 2
	configPathEnv   = "NEWSBRIEF_CONFIG"

	logLevelEnv        = "NEWSBRIEF_LOG_LEVEL"
	llmProviderEnv     = "NEWSBRIEF_LLM_PROVIDER"
	llmModelEnv        = "NEWSBRIEF_MODEL"
	openAIKeyEnv       = "OPENAI_API_KEY"
	anthropicKeyEnv    = "ANTHROPIC_API_KEY"
	newsAPIKeyEnv      = "NEWS_API_KEY"
	eventbriteKeyEnv   = "EVENTBRITE_KEY"
	ticketmasterKeyEnv = "TICKETMASTER_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	notionTokenEnv     = "NOTION_TOKEN"
	notionDatabaseEnv  = "NOTION_DATABASE_ID"
	httpAddrEnv        = "NEWSBRIEF_HTTP_ADDR"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Query     QueryConfig     `yaml:"query"`
	Publish   PublishConfig   `yaml:"publish"`
	HTTP      HTTPConfig      `yaml:"http"`
	Keys      KeysConfig      `yaml:"keys"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the brief should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LLMConfig defines how to contact the model provider.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"baseUrl"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Temperature  float64       `yaml:"temperature"`
	MaxTokens    int64         `yaml:"maxTokens"`
	Timeout      time.Duration `yaml:"timeout"`
	Pricing      PricingConfig `yaml:"pricing"`
}

// PricingConfig is USD per 1000 tokens.
type PricingConfig struct {
	PromptPer1K     float64 `yaml:"promptPer1k"`
	CompletionPer1K float64 `yaml:"completionPer1k"`
}

// PipelineConfig carries the numbers and prompts of the summarization pipeline.
type PipelineConfig struct {
	ChunkSize               int           `yaml:"chunkSize"`
	Overlap                 *int          `yaml:"overlap"`
	ChunkCeiling            int           `yaml:"chunkCeiling"`
	AggregateCap            int           `yaml:"aggregateCap"`
	SentenceBound           int           `yaml:"sentenceBound"`
	ParagraphBreakThreshold *int          `yaml:"paragraphBreakThreshold"`
	MaxCompressions         *int          `yaml:"maxCompressions"`
	MapParallelism          int           `yaml:"mapParallelism"`
	Attribution             *bool         `yaml:"attribution"`
	Prompts                 PromptsConfig `yaml:"prompts"`
}

// OverlapSize returns the chunk overlap in runes, 100 when unset.
func (p PipelineConfig) OverlapSize() int {
	if p.Overlap == nil {
		return defaultOverlap
	}
	return *p.Overlap
}

// BreakThreshold returns the allowed paragraph breaks of a brief, 2 when unset.
func (p PipelineConfig) BreakThreshold() int {
	if p.ParagraphBreakThreshold == nil {
		return defaultBreakThreshold
	}
	return *p.ParagraphBreakThreshold
}

// Compressions returns the configured retry count, 1 when unset.
func (p PipelineConfig) Compressions() int {
	if p.MaxCompressions == nil {
		return 1
	}
	return *p.MaxCompressions
}

// WithAttribution reports whether records get a source suffix, true when unset.
func (p PipelineConfig) WithAttribution() bool {
	return p.Attribution == nil || *p.Attribution
}

// PromptsConfig overrides the built-in prompt templates.
type PromptsConfig struct {
	Map      string `yaml:"map"`
	Reduce   string `yaml:"reduce"`
	Compress string `yaml:"compress"`
}

// ExtractorConfig tunes page fetching and text selection.
type ExtractorConfig struct {
	UserAgent     string        `yaml:"userAgent"`
	Timeout       time.Duration `yaml:"timeout"`
	Strategy      string        `yaml:"strategy"`
	ReuseDocument bool          `yaml:"reuseDocument"`
	RespectRobots bool          `yaml:"respectRobots"`
	Parallelism   int           `yaml:"parallelism"`
}

// QueryConfig is the default query used by the scheduler and when flags are absent.
type QueryConfig struct {
	Topic      string `yaml:"topic"`
	State      string `yaml:"state"`
	City       string `yaml:"city"`
	WindowDays int    `yaml:"windowDays"`
	Limit      int    `yaml:"limit"`
}

// PublishConfig encapsulates outbound channels.
type PublishConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Notion   NotionConfig   `yaml:"notion"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// NotionConfig points at the database receiving brief pages.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"databaseId"`
}

// HTTPConfig configures the brief API server.
type HTTPConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// KeysConfig holds source API keys. Prefer environment variables.
type KeysConfig struct {
	NewsAPI      string `yaml:"newsApi"`
	Eventbrite   string `yaml:"eventbrite"`
	Ticketmaster string `yaml:"ticketmaster"`
}

// SourceConfig describes one connector instance.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Connector string            `yaml:"connector"`
	Enabled   bool              `yaml:"enabled"`
	Limit     int               `yaml:"limit"`
	URL       string            `yaml:"url"`
	Options   map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path means defaults plus environment.
func LoadFile(path string) Config {
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
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.bindProviderDefaults()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	p := c.Pipeline
	if p.ChunkSize <= 0 {
		return fmt.Errorf("config: pipeline.chunkSize must be positive")
	}
	if p.OverlapSize() < 0 || p.OverlapSize() >= p.ChunkSize {
		return fmt.Errorf("config: pipeline.overlap must be in [0, chunkSize)")
	}
	if p.AggregateCap < 0 || p.ChunkCeiling < 0 || p.Compressions() < 0 || p.BreakThreshold() < 0 {
		return fmt.Errorf("config: pipeline limits must not be negative")
	}
	if p.SentenceBound <= 0 {
		return fmt.Errorf("config: pipeline.sentenceBound must be positive")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Extractor.Strategy {
	case "heuristic", "readability":
	default:
		return fmt.Errorf("config: unknown extractor strategy %q", c.Extractor.Strategy)
	}
	for _, src := range c.Sources {
		if src.Name == "" || src.Connector == "" {
			return fmt.Errorf("config: every source needs a name and a connector")
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	switch c.LLM.Provider {
	case ProviderAnthropic:
		if v := os.Getenv(anthropicKeyEnv); v != "" {
			c.LLM.APIKey = v
		}
	default:
		if v := os.Getenv(openAIKeyEnv); v != "" {
			c.LLM.APIKey = v
		}
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Keys.NewsAPI = v
	}
	if v := os.Getenv(eventbriteKeyEnv); v != "" {
		c.Keys.Eventbrite = v
	}
	if v := os.Getenv(ticketmasterKeyEnv); v != "" {
		c.Keys.Ticketmaster = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Publish.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Publish.Telegram.ChatID = v
	}
	if v := os.Getenv(notionTokenEnv); v != "" {
		c.Publish.Notion.Token = v
	}
	if v := os.Getenv(notionDatabaseEnv); v != "" {
		c.Publish.Notion.DatabaseID = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// providerDefaults hold the model and its list price (USD per 1000 tokens) per provider.
var providerDefaults = map[string]struct {
	model   string
	pricing PricingConfig
}{
	ProviderOpenAI:    {model: "gpt-4o-mini", pricing: PricingConfig{PromptPer1K: 0.00015, CompletionPer1K: 0.0006}},
	ProviderAnthropic: {model: "claude-haiku-4-5", pricing: PricingConfig{PromptPer1K: 0.001, CompletionPer1K: 0.005}},
}

// bindProviderDefaults fills model and pricing for the selected provider.
// Pricing is only defaulted together with the model; a custom model without pricing costs 0.
func (c *Config) bindProviderDefaults() {
	def, ok := providerDefaults[c.LLM.Provider]
	if !ok {
		return
	}
	unpriced := c.LLM.Pricing.PromptPer1K == 0 && c.LLM.Pricing.CompletionPer1K == 0
	if c.LLM.Model == "" || c.LLM.Model == def.model {
		c.LLM.Model = def.model
		if unpriced {
			c.LLM.Pricing = def.pricing
		}
		return
	}
	if unpriced {
		log.Printf("config: no pricing for model %s, usage cost will be reported as 0", c.LLM.Model)
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	base.LLM = mergeLLM(base.LLM, override.LLM)
	base.Pipeline = mergePipeline(base.Pipeline, override.Pipeline)
	base.Extractor = mergeExtractor(base.Extractor, override.Extractor)

	if override.Query.Topic != "" {
		base.Query.Topic = override.Query.Topic
	}
	if override.Query.State != "" {
		base.Query.State = override.Query.State
	}
	if override.Query.City != "" {
		base.Query.City = override.Query.City
	}
	if override.Query.WindowDays > 0 {
		base.Query.WindowDays = override.Query.WindowDays
	}
	if override.Query.Limit > 0 {
		base.Query.Limit = override.Query.Limit
	}

	if override.Publish.Telegram.BotToken != "" {
		base.Publish.Telegram.BotToken = override.Publish.Telegram.BotToken
	}
	if override.Publish.Telegram.ChatID != "" {
		base.Publish.Telegram.ChatID = override.Publish.Telegram.ChatID
	}
	if override.Publish.Notion.Token != "" {
		base.Publish.Notion.Token = override.Publish.Notion.Token
	}
	if override.Publish.Notion.DatabaseID != "" {
		base.Publish.Notion.DatabaseID = override.Publish.Notion.DatabaseID
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if len(override.HTTP.AllowOrigins) > 0 {
		base.HTTP.AllowOrigins = override.HTTP.AllowOrigins
	}

	if override.Keys.NewsAPI != "" {
		base.Keys.NewsAPI = override.Keys.NewsAPI
	}
	if override.Keys.Eventbrite != "" {
		base.Keys.Eventbrite = override.Keys.Eventbrite
	}
	if override.Keys.Ticketmaster != "" {
		base.Keys.Ticketmaster = override.Keys.Ticketmaster
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func mergeLLM(base, override LLMConfig) LLMConfig {
	if override.Provider != "" {
		base.Provider = override.Provider
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.SystemPrompt != "" {
		base.SystemPrompt = override.SystemPrompt
	}
	if override.Temperature > 0 {
		base.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.Pricing.PromptPer1K > 0 || override.Pricing.CompletionPer1K > 0 {
		base.Pricing = override.Pricing
	}
	return base
}

func mergePipeline(base, override PipelineConfig) PipelineConfig {
	if override.ChunkSize > 0 {
		base.ChunkSize = override.ChunkSize
	}
	if override.Overlap != nil {
		base.Overlap = override.Overlap
	}
	if override.ChunkCeiling > 0 {
		base.ChunkCeiling = override.ChunkCeiling
	}
	if override.AggregateCap > 0 {
		base.AggregateCap = override.AggregateCap
	}
	if override.SentenceBound > 0 {
		base.SentenceBound = override.SentenceBound
	}
	if override.ParagraphBreakThreshold != nil {
		base.ParagraphBreakThreshold = override.ParagraphBreakThreshold
	}
	if override.MaxCompressions != nil {
		base.MaxCompressions = override.MaxCompressions
	}
	if override.MapParallelism > 0 {
		base.MapParallelism = override.MapParallelism
	}
	if override.Attribution != nil {
		base.Attribution = override.Attribution
	}
	if override.Prompts.Map != "" {
		base.Prompts.Map = override.Prompts.Map
	}
	if override.Prompts.Reduce != "" {
		base.Prompts.Reduce = override.Prompts.Reduce
	}
	if override.Prompts.Compress != "" {
		base.Prompts.Compress = override.Prompts.Compress
	}
	return base
}

func mergeExtractor(base, override ExtractorConfig) ExtractorConfig {
	if override.UserAgent != "" {
		base.UserAgent = override.UserAgent
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.Strategy != "" {
		base.Strategy = override.Strategy
	}
	if override.Parallelism > 0 {
		base.Parallelism = override.Parallelism
	}
	base.ReuseDocument = base.ReuseDocument || override.ReuseDocument
	base.RespectRobots = base.RespectRobots || override.RespectRobots
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		LLM: LLMConfig{
			Provider:     ProviderOpenAI,
			SystemPrompt: "You are a local news editor who writes short daily briefs.",
			Temperature:  0.5,
			MaxTokens:    1024,
			Timeout:      120 * time.Second,
		},
		Pipeline: PipelineConfig{
			ChunkSize:               4000,
			ChunkCeiling:            7,
			AggregateCap:            15000,
			SentenceBound:           6,
			MapParallelism:          4,
		},
		Extractor: ExtractorConfig{
			UserAgent:   "NewsBrief/1.0",
			Timeout:     20 * time.Second,
			Strategy:    "heuristic",
			Parallelism: 4,
		},
		Query:   QueryConfig{Topic: "sustainability", WindowDays: 1, Limit: 5},
		HTTP:    HTTPConfig{Addr: ":8080", AllowOrigins: []string{"http://localhost:3000"}},
		Sources: defaultSources(),
	}
}

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "newsapi", Connector: "newsapi", Enabled: true, Limit: 5},
		{Name: "patch-news", Connector: "patch-news", Enabled: true, Limit: 5},
		{Name: "patch-events", Connector: "patch-events", Enabled: true, Limit: 5},
		{Name: "eventbrite", Connector: "eventbrite", Enabled: false, Limit: 5},
		{Name: "ticketmaster", Connector: "ticketmaster", Enabled: false, Limit: 5},
	}
}

// IntOrDefault parses an integer flag or env value.
func IntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

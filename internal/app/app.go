package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsBrief/internal/config"
	"NewsBrief/internal/corpus"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/infrastructure/connector"
	"NewsBrief/internal/infrastructure/extract"
	"NewsBrief/internal/infrastructure/llm"
	"NewsBrief/internal/infrastructure/notion"
	"NewsBrief/internal/infrastructure/scheduler"
	"NewsBrief/internal/infrastructure/telegram"
	"NewsBrief/internal/logging"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/source"
	"NewsBrief/internal/summarize"
	"NewsBrief/internal/usage"
	"NewsBrief/internal/usecase"
)

// QueryParams are the caller-facing knobs of one brief; zero values fall back to config.
type QueryParams struct {
	Topic  string
	State  string
	City   string
	Source string
	Limit  int
	Days   int
}

// Options adjust wiring for callers that must not publish (API, one-shot CLI).
type Options struct {
	SkipPublishers bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	brief     *usecase.Brief
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := scheduler.Validate(cfg.Scheduler.CronExpression); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Extractor.Timeout}

	registry := source.NewRegistry()
	for _, src := range cfg.Sources {
		conn, err := buildConnector(src, cfg.Keys, httpClient)
		if err != nil {
			return nil, err
		}
		registry.RegisterAs(src.Name, conn)
	}
	targets := connector.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	extractor := extract.New(httpClient, extract.Options{
		UserAgent:     cfg.Extractor.UserAgent,
		Strategy:      cfg.Extractor.Strategy,
		ReuseDocument: cfg.Extractor.ReuseDocument,
		RespectRobots: cfg.Extractor.RespectRobots,
	}, baseLogger.With("component", "extractor"))

	completer, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	pc := cfg.Pipeline
	summarizer, err := summarize.NewPipeline(completer, summarize.Settings{
		ChunkSize:               pc.ChunkSize,
		Overlap:                 pc.OverlapSize(),
		ChunkCeiling:            pc.ChunkCeiling,
		SentenceBound:           pc.SentenceBound,
		ParagraphBreakThreshold: pc.BreakThreshold(),
		MaxCompressions:         pc.Compressions(),
		MapParallelism:          pc.MapParallelism,
		Timeout:                 cfg.LLM.Timeout,
		Pricing: usage.Pricing{
			PromptPer1K:     cfg.LLM.Pricing.PromptPer1K,
			CompletionPer1K: cfg.LLM.Pricing.CompletionPer1K,
		},
		Prompts: summarize.Prompts{
			Map:      pc.Prompts.Map,
			Reduce:   pc.Prompts.Reduce,
			Compress: pc.Prompts.Compress,
		},
	}, baseLogger.With("component", "summarize"))
	if err != nil {
		return nil, err
	}

	var publishers []ports.Publisher
	if !opts.SkipPublishers {
		if publishers, err = buildPublishers(cfg.Publish); err != nil {
			return nil, err
		}
	}

	brief := usecase.NewBrief(usecase.BriefDeps{
		Source:      targets,
		Extractor:   extractor,
		Assembler:   corpus.NewAssembler(pc.AggregateCap, pc.WithAttribution()),
		Summarizer:  summarizer,
		Publishers:  publishers,
		Parallelism: cfg.Extractor.Parallelism,
		Logger:      baseLogger.With("component", "brief"),
	})

	app := &Application{cfg: cfg, brief: brief, logger: baseLogger}
	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	app.scheduler = usecase.NewScheduler(driver, brief, app.DefaultQuery, baseLogger.With("component", "scheduler"))
	return app, nil
}

// Run produces one brief for the given parameters.
func (a *Application) Run(ctx context.Context, params QueryParams) (domain.Brief, error) {
	return a.brief.Run(ctx, a.BuildQuery(params, time.Now().In(a.cfg.Scheduler.Location())))
}

// Start runs the brief on the configured cron expression until Stop or ctx cancellation.
func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String())
	return a.scheduler.Start(ctx)
}

// Stop tears down the scheduler.
func (a *Application) Stop(ctx context.Context) error {
	return a.scheduler.Stop(ctx)
}

// DefaultQuery is the configured query with a window ending at trigger.
func (a *Application) DefaultQuery(trigger time.Time) domain.Query {
	return a.BuildQuery(QueryParams{}, trigger)
}

// BuildQuery merges params over the configured query. The window spans Days back from now.
func (a *Application) BuildQuery(params QueryParams, now time.Time) domain.Query {
	def := a.cfg.Query
	query := domain.Query{
		Topic:  firstNonEmpty(params.Topic, def.Topic),
		Source: strings.TrimSpace(params.Source),
		Limit:  params.Limit,
	}
	if query.Limit <= 0 {
		query.Limit = def.Limit
	}

	state := firstNonEmpty(params.State, def.State)
	city := firstNonEmpty(params.City, def.City)
	if state != "" && city != "" {
		query.Locale = &domain.Locale{State: state, City: city}
	}

	days := params.Days
	if days <= 0 {
		days = def.WindowDays
	}
	if days > 0 {
		query.Window = &domain.Window{Start: now.AddDate(0, 0, -days), End: now}
	}
	return query
}

func buildConnector(src config.SourceConfig, keys config.KeysConfig, client *http.Client) (source.Connector, error) {
	switch src.Connector {
	case "newsapi":
		return connector.NewNewsAPI(client, src.URL, keys.NewsAPI), nil
	case "patch-news":
		return connector.NewPatchNews(client, src.URL), nil
	case "patch-events":
		return connector.NewPatchEvents(client, src.URL), nil
	case "eventbrite":
		return connector.NewEventbrite(client, src.URL, src.Options["apiUrl"], keys.Eventbrite), nil
	case "ticketmaster":
		return connector.NewTicketmaster(client, src.URL, keys.Ticketmaster), nil
	case "rss":
		if src.URL == "" {
			return nil, fmt.Errorf("source %s: rss connector needs a url", src.Name)
		}
		return connector.NewRSS(client, src.Name, src.URL), nil
	default:
		return nil, fmt.Errorf("source %s: unknown connector %q", src.Name, src.Connector)
	}
}

func buildPublishers(cfg config.PublishConfig) ([]ports.Publisher, error) {
	var publishers []ports.Publisher
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		publishers = append(publishers, telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Notion.Token != "" {
		pub, err := notion.NewPublisher(cfg.Notion.Token, cfg.Notion.DatabaseID)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, pub)
	}
	return publishers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

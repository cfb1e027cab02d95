package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/usage"
)

// Settings are the tunables of the map-reduce pipeline.
type Settings struct {
	ChunkSize               int
	Overlap                 int
	ChunkCeiling            int
	SentenceBound           int
	ParagraphBreakThreshold int
	MaxCompressions         int
	MapParallelism          int
	Timeout                 time.Duration
	Pricing                 usage.Pricing
	Prompts                 Prompts
}

// Pipeline implements ports.Summarizer as map (per chunk) then reduce then optional compression.
type Pipeline struct {
	completer ports.Completer
	splitter  *Splitter
	prompts   promptSet
	settings  Settings
	logger    *slog.Logger
}

var _ ports.Summarizer = (*Pipeline)(nil)

// NewPipeline validates prompts and wires the completer.
func NewPipeline(completer ports.Completer, settings Settings, logger *slog.Logger) (*Pipeline, error) {
	if completer == nil {
		return nil, fmt.Errorf("summarize: completer is required")
	}
	prompts, err := parsePrompts(settings.Prompts)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	if settings.MapParallelism <= 0 {
		settings.MapParallelism = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		completer: completer,
		splitter:  NewSplitter(settings.ChunkSize, settings.Overlap),
		prompts:   prompts,
		settings:  settings,
		logger:    logger,
	}, nil
}

// Summarize returns domain.ErrNoContent without calling the model when the corpus is empty.
// Any model failure aborts the whole run; usage gathered so far is still returned.
func (p *Pipeline) Summarize(ctx context.Context, corpus domain.Corpus, topic string) (domain.Editorial, domain.UsageReport, error) {
	if corpus.Empty() {
		return domain.Editorial{}, domain.UsageReport{}, domain.ErrNoContent
	}

	tracker := usage.NewTracker(p.settings.Pricing)

	chunks := p.splitter.Split(corpus.Text)
	if ceiling := p.settings.ChunkCeiling; ceiling > 0 && len(chunks) > ceiling {
		p.logger.Warn("chunk ceiling reached", "chunks", len(chunks), "kept", ceiling)
		chunks = chunks[:ceiling]
	}
	p.logger.Debug("corpus split", "chars", len(corpus.Text), "chunks", len(chunks))

	summaries, err := p.mapChunks(ctx, chunks, topic, tracker)
	if err != nil {
		return domain.Editorial{}, tracker.Report(), err
	}

	relevant := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if !isEmptyAnswer(s) {
			relevant = append(relevant, s)
		}
	}
	if len(relevant) == 0 {
		p.logger.Info("no chunk relevant to topic", "topic", topic)
		return domain.Editorial{}, tracker.Report(), domain.ErrNoContent
	}

	out, err := p.call(ctx, p.prompts.reduceT, promptData{
		Topic:         topic,
		Text:          strings.Join(relevant, "\n\n"),
		SentenceBound: p.settings.SentenceBound,
	}, tracker)
	if err != nil {
		return domain.Editorial{}, tracker.Report(), fmt.Errorf("summarize: reduce: %w", err)
	}

	for i := 0; i < p.settings.MaxCompressions; i++ {
		breaks := ParagraphBreaks(out)
		if breaks <= p.settings.ParagraphBreakThreshold {
			break
		}
		p.logger.Warn("shape violation, compressing", "breaks", breaks, "attempt", i+1)
		out, err = p.call(ctx, p.prompts.compressT, promptData{
			Topic:         topic,
			Text:          out,
			SentenceBound: p.settings.SentenceBound,
		}, tracker)
		if err != nil {
			return domain.Editorial{}, tracker.Report(), fmt.Errorf("summarize: compress: %w", err)
		}
	}
	if breaks := ParagraphBreaks(out); breaks > p.settings.ParagraphBreakThreshold {
		p.logger.Warn("shape still violated, accepting best effort", "breaks", breaks)
	}

	return ParseEditorial(out), tracker.Report(), nil
}

func (p *Pipeline) mapChunks(ctx context.Context, chunks []domain.Chunk, topic string, tracker *usage.Tracker) ([]string, error) {
	summaries := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.MapParallelism)
	for i, chunk := range chunks {
		g.Go(func() error {
			text, err := p.call(gctx, p.prompts.mapT, promptData{
				Topic:         topic,
				Text:          chunk.Text,
				SentenceBound: p.settings.SentenceBound,
			}, tracker)
			if err != nil {
				return fmt.Errorf("summarize: map chunk %d: %w", i, err)
			}
			summaries[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (p *Pipeline) call(ctx context.Context, t *template.Template, data promptData, tracker *usage.Tracker) (string, error) {
	prompt, err := render(t, data)
	if err != nil {
		return "", err
	}

	if p.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.settings.Timeout)
		defer cancel()
	}

	completion, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	tracker.Record(completion.Usage)
	return strings.TrimSpace(completion.Text), nil
}

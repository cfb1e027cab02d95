package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// CorpusAssembler joins extracted records into a capped corpus.
type CorpusAssembler interface {
	Assemble(records []domain.ContentRecord) domain.Corpus
}

// BriefDeps wires all driven adapters into the brief use case.
type BriefDeps struct {
	Source      ports.TargetSource
	Extractor   ports.Extractor
	Assembler   CorpusAssembler
	Summarizer  ports.Summarizer
	Publishers  []ports.Publisher
	Parallelism int
	Logger      *slog.Logger
}

// Brief implements the collect, extract, summarize and publish workflow.
type Brief struct {
	source      ports.TargetSource
	extractor   ports.Extractor
	assembler   CorpusAssembler
	summarizer  ports.Summarizer
	publishers  []ports.Publisher
	parallelism int
	logger      *slog.Logger
	now         func() time.Time
}

// NewBrief constructs the orchestration component.
func NewBrief(deps BriefDeps) *Brief {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	parallelism := deps.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Brief{
		source:      deps.Source,
		extractor:   deps.Extractor,
		assembler:   deps.Assembler,
		summarizer:  deps.Summarizer,
		publishers:  deps.Publishers,
		parallelism: parallelism,
		logger:      logger,
		now:         time.Now,
	}
}

// Run produces one brief. An empty corpus yields a NoContent brief without any model call.
// Summarizer failures abort the run; publish failures are returned joined next to the brief.
func (b *Brief) Run(ctx context.Context, query domain.Query) (domain.Brief, error) {
	brief := domain.Brief{
		RunID:       uuid.NewString(),
		Query:       query,
		GeneratedAt: b.now(),
	}
	log := b.logger.With("run_id", brief.RunID, "topic", query.Topic)

	var targets []domain.FetchTarget
	if b.source != nil {
		brief.Sources = b.source.Collect(ctx, query)
		for _, col := range brief.Sources {
			targets = append(targets, col.Targets...)
		}
	}
	log.Info("targets collected", "sources", len(brief.Sources), "targets", len(targets))

	records, err := b.extractAll(ctx, targets, query.Topic, log)
	if err != nil {
		return brief, err
	}

	corpus := b.assembler.Assemble(records)
	brief.Records = len(corpus.Records)
	if corpus.Truncated {
		log.Warn("corpus truncated to cap", "records", brief.Records)
	}

	editorial, report, err := b.summarizer.Summarize(ctx, corpus, query.Topic)
	brief.Usage = report
	switch {
	case errors.Is(err, domain.ErrNoContent):
		brief.NoContent = true
		log.Info("no content for brief", "records", brief.Records, "requests", report.RequestCount)
		return brief, nil
	case err != nil:
		return brief, fmt.Errorf("summarize: %w", err)
	}
	brief.Editorial = editorial

	log.Info("brief ready",
		"records", brief.Records,
		"requests", report.RequestCount,
		"total_tokens", report.TotalTokens,
		"total_cost", report.TotalCost)

	return brief, b.publish(ctx, brief, log)
}

// extractAll keeps record order aligned with target order. Extraction errors count as misses.
func (b *Brief) extractAll(ctx context.Context, targets []domain.FetchTarget, topic string, log *slog.Logger) ([]domain.ContentRecord, error) {
	records := make([]domain.ContentRecord, len(targets))
	if b.extractor == nil {
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, target := range targets {
		g.Go(func() error {
			rec, err := b.extractor.Extract(gctx, target, topic)
			if err != nil {
				log.Warn("extract failed", "url", target.URL, "error", err)
				rec = domain.ContentRecord{}
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return records, nil
}

func (b *Brief) publish(ctx context.Context, brief domain.Brief, log *slog.Logger) error {
	var errs []error
	for _, pub := range b.publishers {
		if err := pub.Publish(ctx, brief); err != nil {
			log.Error("publish failed", "publisher", fmt.Sprintf("%T", pub), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package ports

import (
	"context"
	"time"

	"NewsBrief/internal/domain"
)

// TargetSource asks every relevant connector for fetch targets.
type TargetSource interface {
	Collect(ctx context.Context, query domain.Query) []domain.Collection
}

// Extractor turns a fetch target into plain text relevant to the query.
type Extractor interface {
	Extract(ctx context.Context, target domain.FetchTarget, query string) (domain.ContentRecord, error)
}

// Completer is a black-box text completion capability (OpenAI, Anthropic).
type Completer interface {
	Complete(ctx context.Context, prompt string) (domain.Completion, error)
}

// Summarizer condenses a corpus into an editorial.
type Summarizer interface {
	Summarize(ctx context.Context, corpus domain.Corpus, topic string) (domain.Editorial, domain.UsageReport, error)
}

// Publisher delivers a finished brief to Telegram, Notion, etc.
type Publisher interface {
	Publish(ctx context.Context, brief domain.Brief) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

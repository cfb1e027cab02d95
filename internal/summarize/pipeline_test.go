package summarize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"NewsBrief/internal/domain"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (domain.Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	text, err := f.respond(prompt)
	if err != nil {
		return domain.Completion{}, err
	}
	return domain.Completion{Text: text, Usage: domain.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil
}

func (f *fakeCompleter) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

const (
	mapPrefix      = "MAP"
	reducePrefix   = "REDUCE"
	compressPrefix = "COMPRESS"
)

func testSettings() Settings {
	return Settings{
		ChunkSize:               100,
		Overlap:                 10,
		ChunkCeiling:            7,
		SentenceBound:           6,
		ParagraphBreakThreshold: 2,
		MaxCompressions:         1,
		Timeout:                 time.Second,
		Prompts: Prompts{
			Map:      mapPrefix + " {{.Topic}}: {{.Text}}",
			Reduce:   reducePrefix + " {{.SentenceBound}}: {{.Text}}",
			Compress: compressPrefix + ": {{.Text}}",
		},
	}
}

func corpusOf(n int) domain.Corpus {
	return domain.Corpus{Text: strings.TrimSpace(strings.Repeat("green news item ", n))}
}

func TestSummarizeEmptyCorpusSkipsModel(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{respond: func(string) (string, error) { return "x", nil }}
	p, err := NewPipeline(fake, testSettings(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, report, err := p.Summarize(context.Background(), domain.Corpus{}, "green")
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if report.RequestCount != 0 || len(fake.prompts) != 0 {
		t.Fatalf("expected no model call, got %d", len(fake.prompts))
	}
}

func TestSummarizeMapReduce(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{respond: func(prompt string) (string, error) {
		switch {
		case strings.HasPrefix(prompt, mapPrefix):
			return "chunk summary", nil
		case strings.HasPrefix(prompt, reducePrefix):
			return "\"Green Day\"\n\nOne. Two. Three.", nil
		}
		return "", errors.New("unexpected prompt")
	}}
	p, err := NewPipeline(fake, testSettings(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	ed, report, err := p.Summarize(context.Background(), corpusOf(12), "green")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	chunks := len(NewSplitter(100, 10).Split(corpusOf(12).Text))
	if got := fake.count(mapPrefix); got != chunks {
		t.Fatalf("expected %d map calls, got %d", chunks, got)
	}
	if fake.count(compressPrefix) != 0 {
		t.Fatalf("did not expect compression")
	}
	if report.RequestCount != chunks+1 {
		t.Fatalf("expected %d requests, got %d", chunks+1, report.RequestCount)
	}
	if report.TotalTokens != int64(15*(chunks+1)) {
		t.Fatalf("unexpected tokens: %d", report.TotalTokens)
	}
	if ed.Title != "Green Day" || ed.Body != "One. Two. Three." {
		t.Fatalf("unexpected editorial: %+v", ed)
	}
}

func TestSummarizeChunkCeiling(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{respond: func(prompt string) (string, error) {
		return "ok", nil
	}}
	settings := testSettings()
	settings.ChunkCeiling = 3
	p, err := NewPipeline(fake, settings, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, _, err := p.Summarize(context.Background(), corpusOf(200), "green"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got := fake.count(mapPrefix); got != 3 {
		t.Fatalf("expected exactly 3 map calls, got %d", got)
	}
}

func TestSummarizeCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		reduced       string
		compressed    string
		maxCompress   int
		wantCompress  int
		wantBodyStart string
	}{
		{
			name:          "within threshold",
			reduced:       "\"T\"\n\nBody.\n\nTail.",
			maxCompress:   1,
			wantCompress:  0,
			wantBodyStart: "Body.",
		},
		{
			name:          "over threshold compresses once",
			reduced:       "\"T\"\n\nP1.\n\nP2.\n\nP3.",
			compressed:    "\"T\"\n\nCompressed.",
			maxCompress:   1,
			wantCompress:  1,
			wantBodyStart: "Compressed.",
		},
		{
			name:          "still violating is accepted",
			reduced:       "\"T\"\n\nP1.\n\nP2.\n\nP3.",
			compressed:    "\"T\"\n\nA.\n\nB.\n\nC.",
			maxCompress:   1,
			wantCompress:  1,
			wantBodyStart: "A.",
		},
		{
			name:          "retries up to the limit",
			reduced:       "\"T\"\n\nP1.\n\nP2.\n\nP3.",
			compressed:    "\"T\"\n\nA.\n\nB.\n\nC.",
			maxCompress:   3,
			wantCompress:  3,
			wantBodyStart: "A.",
		},
		{
			name:          "disabled",
			reduced:       "\"T\"\n\nP1.\n\nP2.\n\nP3.",
			maxCompress:   0,
			wantCompress:  0,
			wantBodyStart: "P1.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeCompleter{respond: func(prompt string) (string, error) {
				switch {
				case strings.HasPrefix(prompt, mapPrefix):
					return "summary", nil
				case strings.HasPrefix(prompt, reducePrefix):
					return tt.reduced, nil
				default:
					return tt.compressed, nil
				}
			}}
			settings := testSettings()
			settings.MaxCompressions = tt.maxCompress
			p, err := NewPipeline(fake, settings, nil)
			if err != nil {
				t.Fatalf("NewPipeline: %v", err)
			}

			ed, report, err := p.Summarize(context.Background(), corpusOf(3), "green")
			if err != nil {
				t.Fatalf("Summarize: %v", err)
			}
			if got := fake.count(compressPrefix); got != tt.wantCompress {
				t.Fatalf("expected %d compress calls, got %d", tt.wantCompress, got)
			}
			if report.RequestCount != 2+tt.wantCompress {
				t.Fatalf("unexpected request count %d", report.RequestCount)
			}
			if !strings.HasPrefix(ed.Body, tt.wantBodyStart) {
				t.Fatalf("unexpected body %q", ed.Body)
			}
		})
	}
}

func TestSummarizeAllChunksIrrelevant(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{respond: func(prompt string) (string, error) {
		return `""`, nil
	}}
	p, err := NewPipeline(fake, testSettings(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, report, err := p.Summarize(context.Background(), corpusOf(3), "green")
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if fake.count(reducePrefix) != 0 {
		t.Fatalf("reduce must not run without relevant summaries")
	}
	if report.RequestCount != 1 {
		t.Fatalf("expected the map call to be counted, got %d", report.RequestCount)
	}
}

func TestSummarizeModelFailurePropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider down")
	fake := &fakeCompleter{respond: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, reducePrefix) {
			return "", boom
		}
		return "summary", nil
	}}
	p, err := NewPipeline(fake, testSettings(), nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, _, err = p.Summarize(context.Background(), corpusOf(3), "green")
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestSummarizeTimeoutPerCall(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.Timeout = 20 * time.Millisecond
	p, err := NewPipeline(blockingCompleter{}, settings, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, _, err = p.Summarize(context.Background(), corpusOf(3), "green")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string) (domain.Completion, error) {
	<-ctx.Done()
	return domain.Completion{}, ctx.Err()
}

func TestNewPipelineRejectsBadPrompt(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.Prompts.Map = "{{.Topic"
	if _, err := NewPipeline(&fakeCompleter{}, settings, nil); err == nil {
		t.Fatalf("expected template parse error")
	}
}

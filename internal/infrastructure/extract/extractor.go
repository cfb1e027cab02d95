package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const (
	StrategyHeuristic   = "heuristic"
	StrategyReadability = "readability"

	maxPageBytes  = 8 << 20
	blockSelector = "div, article, section, main, p, li, td, blockquote"
)

// Options tune how pages are fetched and which text is kept.
type Options struct {
	UserAgent string
	Strategy  string
	// ReuseDocument scores class candidates on the first response instead of fetching again per class.
	ReuseDocument bool
	RespectRobots bool
}

// Extractor implements ports.Extractor over plain HTTP and goquery.
type Extractor struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

var _ ports.Extractor = (*Extractor)(nil)

// New wires an HTTP client; a nil client gets a 20 second timeout.
func New(client *http.Client, opts Options, logger *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "NewsBrief/1.0"
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyHeuristic
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{client: client, opts: opts, logger: logger}
}

// Extract returns the text for a target. A bad status or no matching element is a miss
// (empty record, nil error); only network failures come back as errors.
func (e *Extractor) Extract(ctx context.Context, target domain.FetchTarget, query string) (domain.ContentRecord, error) {
	record := domain.ContentRecord{
		SourceTag:   target.Meta["source"],
		Attribution: target.Attribution,
	}

	if strings.TrimSpace(target.Text) != "" {
		record.Text = NormalizeSpace(target.Text)
		return record, nil
	}
	if target.URL == "" {
		e.miss(target, "no url")
		return record, nil
	}

	if e.opts.RespectRobots && !e.robotsAllowed(ctx, target.URL) {
		e.miss(target, "disallowed by robots.txt")
		return record, nil
	}

	body, ok, err := e.fetch(ctx, target.URL)
	if err != nil {
		return record, fmt.Errorf("extract %s: %w", target.URL, err)
	}
	if !ok {
		e.miss(target, "bad status")
		return record, nil
	}

	switch {
	case target.Selector != "":
		record.Text = selectText(body, target.Selector)
	case e.opts.Strategy == StrategyReadability:
		record.Text = readableText(body, target.URL, Tokens(query))
	default:
		record.Text = e.largestMatch(ctx, target.URL, body, Tokens(query))
	}

	if record.Empty() {
		e.miss(target, "no matching element")
	}
	return record, nil
}

// largestMatch finds class/id candidates whose block contains every token and keeps the longest text.
func (e *Extractor) largestMatch(ctx context.Context, pageURL string, body []byte, tokens []string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var best string
	bestLen := 0
	for _, cand := range candidates(doc, tokens) {
		source := doc
		if !e.opts.ReuseDocument {
			fresh, ok, err := e.fetch(ctx, pageURL)
			if err != nil || !ok {
				e.logger.Debug("candidate refetch failed", "url", pageURL, "candidate", cand.String(), "error", err)
				continue
			}
			if source, err = goquery.NewDocumentFromReader(bytes.NewReader(fresh)); err != nil {
				continue
			}
		}

		text := RenderText(cand.first(source))
		if n := utf8.RuneCountInString(text); n > bestLen {
			best, bestLen = text, n
		}
	}
	return best
}

type candidate struct {
	attr  string
	value string
}

func (c candidate) String() string {
	return c.attr + "=" + c.value
}

func (c candidate) first(doc *goquery.Document) *goquery.Selection {
	return doc.Find(blockSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		if c.attr == "class" {
			return s.HasClass(c.value)
		}
		id, _ := s.Attr("id")
		return id == c.value
	}).First()
}

// candidates lists distinct class and id values of blocks that contain every token, in document order.
func candidates(doc *goquery.Document, tokens []string) []candidate {
	var out []candidate
	seen := map[candidate]struct{}{}
	add := func(c candidate) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if !containsAll(RenderText(s), tokens) {
			return
		}
		if class, ok := s.Attr("class"); ok {
			for _, name := range strings.Fields(class) {
				add(candidate{attr: "class", value: name})
			}
		}
		if id, ok := s.Attr("id"); ok && strings.TrimSpace(id) != "" {
			add(candidate{attr: "id", value: strings.TrimSpace(id)})
		}
	})
	return out
}

func selectText(body []byte, selector string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return RenderText(doc.Find(selector).First())
}

func readableText(body []byte, pageURL string, tokens []string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	text := RenderText(doc.Selection)
	if !containsAll(text, tokens) {
		return ""
	}
	return text
}

// fetch GETs a page once. ok is false for a non-2xx status.
func (e *Extractor) fetch(ctx context.Context, pageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e.logger.Debug("page returned bad status", "url", pageURL, "status", resp.Status)
		return nil, false, nil
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read page: %w", err)
	}
	return body, true, nil
}

func (e *Extractor) miss(target domain.FetchTarget, reason string) {
	e.logger.Debug("extraction miss", "id", target.ID, "url", target.URL, "reason", reason)
}

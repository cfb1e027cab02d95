package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/infrastructure/extract"
	"NewsBrief/internal/source"
)

// RSS reads one configured feed and keeps the items that mention every topic word.
type RSS struct {
	name    string
	client  *http.Client
	feedURL string
}

var _ source.Connector = (*RSS)(nil)

// NewRSS builds a feed connector registered under name.
func NewRSS(client *http.Client, name, feedURL string) *RSS {
	return &RSS{name: name, client: defaultClient(client), feedURL: feedURL}
}

// Name identifies the connector inside the registry.
func (r *RSS) Name() string {
	return r.name
}

// Search filters feed items by window (default: last day) and topic.
// With the "inline" option the item description is used instead of scraping the link.
func (r *RSS) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	feedURL := req.Option("url", r.feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("%s: feed url is not configured", r.name)
	}

	feed, err := r.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	window := domain.Window{Start: req.Now.AddDate(0, 0, -1), End: req.Now}
	if req.Query.Window != nil {
		window = *req.Query.Window
	}
	tokens := extract.Tokens(req.Query.Topic)
	inline := req.Option("inline", "false") == "true"
	limit := limitOr(req.Limit, 5)

	var targets []domain.FetchTarget
	for _, item := range feed.Items {
		if len(targets) >= limit {
			break
		}
		if item.PublishedParsed != nil && !window.Contains(*item.PublishedParsed) {
			continue
		}

		description := htmlText(item.Description)
		if !mentionsAll(item.Title+" "+description+" "+htmlText(item.Content), tokens) {
			continue
		}

		target := domain.FetchTarget{
			ID:          firstNonEmpty(item.GUID, item.Link),
			URL:         item.Link,
			Attribution: domain.Attribution{Publication: feed.Title},
			Meta:        map[string]string{"title": item.Title},
		}
		if item.Author != nil {
			target.Attribution.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			target.Attribution.Timestamp = *item.PublishedParsed
		}
		if inline {
			target.Text = strings.TrimSpace(item.Title + ". " + description)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return extract.NormalizeSpace(fragment)
	}
	return extract.RenderText(doc.Selection)
}

func mentionsAll(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

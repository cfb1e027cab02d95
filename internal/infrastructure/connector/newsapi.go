package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/source"
)

const newsAPIBaseURL = "https://newsapi.org"

// NewsAPI searches the /v2/everything endpoint. Article bodies are scraped later by the extractor.
type NewsAPI struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ source.Connector = (*NewsAPI)(nil)

// NewNewsAPI wires the client; an empty baseURL points at newsapi.org.
func NewNewsAPI(client *http.Client, baseURL, apiKey string) *NewsAPI {
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	return &NewsAPI{client: defaultClient(client), baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey}
}

// Name identifies the connector inside the registry.
func (n *NewsAPI) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string    `json:"author"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns the most relevant articles for the topic inside the window (default: last day).
func (n *NewsAPI) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("newsapi: api key is not configured")
	}

	window := domain.Window{Start: req.Now.AddDate(0, 0, -1), End: req.Now}
	if req.Query.Window != nil {
		window = *req.Query.Window
	}

	params := url.Values{}
	params.Set("q", req.Query.Topic)
	params.Set("from", window.Start.Format(time.DateOnly))
	params.Set("to", window.End.Format(time.DateOnly))
	params.Set("language", req.Option("language", "en"))
	params.Set("sortBy", req.Option("sortBy", "relevancy"))
	params.Set("page", "1")
	params.Set("pageSize", strconv.Itoa(limitOr(req.Limit, 5)))

	var resp newsAPIResponse
	endpoint := n.baseURL + "/v2/everything?" + params.Encode()
	if err := getJSON(ctx, n.client, endpoint, map[string]string{"X-Api-Key": n.apiKey}, &resp); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %s: %s", resp.Code, resp.Message)
	}

	targets := make([]domain.FetchTarget, 0, len(resp.Articles))
	for _, art := range resp.Articles {
		if art.URL == "" {
			continue
		}
		targets = append(targets, domain.FetchTarget{
			ID:  art.URL,
			URL: art.URL,
			Attribution: domain.Attribution{
				Publication: art.Source.Name,
				Author:      art.Author,
				Timestamp:   art.PublishedAt,
			},
			Meta: map[string]string{"title": art.Title},
		})
	}
	return targets, nil
}

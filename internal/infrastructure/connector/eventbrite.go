package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gocolly/colly"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/source"
)

const (
	eventbriteSiteURL = "https://www.eventbrite.com"
	eventbriteAPIURL  = "https://www.eventbriteapi.com"
	eventCardSelector = `div[data-testid="event-card-tracking-layer"]`
)

// Eventbrite crawls the free-events listing for event ids and resolves each id via the API.
type Eventbrite struct {
	client  *http.Client
	siteURL string
	apiURL  string
	apiKey  string
}

var _ source.Connector = (*Eventbrite)(nil)

// NewEventbrite wires the client; empty URLs point at the public site and API.
func NewEventbrite(client *http.Client, siteURL, apiURL, apiKey string) *Eventbrite {
	if siteURL == "" {
		siteURL = eventbriteSiteURL
	}
	if apiURL == "" {
		apiURL = eventbriteAPIURL
	}
	return &Eventbrite{
		client:  defaultClient(client),
		siteURL: strings.TrimSuffix(siteURL, "/"),
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		apiKey:  apiKey,
	}
}

// Name identifies the connector inside the registry.
func (e *Eventbrite) Name() string {
	return "eventbrite"
}

type eventbriteEvent struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	Start struct {
		Local string `json:"local"`
	} `json:"start"`
	Venue *struct {
		Name string `json:"name"`
	} `json:"venue"`
}

// Search returns events sorted by start time.
func (e *Eventbrite) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("eventbrite: api key is not configured")
	}
	if req.Query.Locale == nil {
		return nil, fmt.Errorf("eventbrite: %w", source.ErrLocaleRequired)
	}

	limit := limitOr(req.Limit, 5)
	ids, err := e.listEventIDs(ctx, req, limit*2)
	if err != nil {
		return nil, fmt.Errorf("eventbrite: %w", err)
	}

	events := make([]eventbriteEvent, 0, len(ids))
	for _, id := range ids {
		var ev eventbriteEvent
		endpoint := fmt.Sprintf("%s/v3/events/%s/?expand=venue", e.apiURL, url.PathEscape(id))
		if err := getJSON(ctx, e.client, endpoint, map[string]string{"Authorization": "Bearer " + e.apiKey}, &ev); err != nil {
			return nil, fmt.Errorf("eventbrite: event %s: %w", id, err)
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Local < events[j].Start.Local
	})
	if len(events) > limit {
		events = events[:limit]
	}

	targets := make([]domain.FetchTarget, 0, len(events))
	for _, ev := range events {
		startsAt, _ := time.ParseInLocation("2006-01-02T15:04:05", ev.Start.Local, req.Now.Location())
		targets = append(targets, domain.FetchTarget{
			ID:       ev.ID,
			URL:      ev.URL,
			Text:     ev.describe(),
			StartsAt: startsAt,
			Attribution: domain.Attribution{
				Publication: "Eventbrite",
				Timestamp:   startsAt,
			},
		})
	}
	return targets, nil
}

func (e *Eventbrite) listingURL(req source.Request) string {
	loc := req.Query.Locale
	search := slug(req.Option("search", req.Query.Topic))
	return fmt.Sprintf("%s/d/%s-%s/free--events--next-week/%s/?page=1", e.siteURL, slug(loc.State), slug(loc.City), search)
}

// listEventIDs collects distinct data-event-id values from the listing page.
func (e *Eventbrite) listEventIDs(ctx context.Context, req source.Request, max int) ([]string, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	base := e.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.WithTransport(contextTransport{ctx: ctx, base: base})
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		ids      []string
		seen     = map[string]struct{}{}
		visitErr error
	)
	c.OnHTML(eventCardSelector, func(el *colly.HTMLElement) {
		id := strings.TrimSpace(el.Attr("data-event-id"))
		if id == "" || len(ids) >= max {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("listing returned %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(e.listingURL(req)); err != nil && visitErr == nil {
		visitErr = err
	}
	c.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ids, visitErr
}

// contextTransport binds colly's requests to the search context so cancellation stops an in-flight crawl.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func (ev eventbriteEvent) describe() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(ev.Name.Text))
	if ev.Venue != nil && ev.Venue.Name != "" {
		sb.WriteString(" at " + ev.Venue.Name)
	}
	if ev.Start.Local != "" {
		sb.WriteString(", starts " + strings.Replace(ev.Start.Local, "T", " ", 1))
	}
	sb.WriteString(".")
	if desc := strings.TrimSpace(ev.Description.Text); desc != "" {
		sb.WriteString(" " + desc)
	}
	if ev.URL != "" {
		sb.WriteString(" " + ev.URL)
	}
	return sb.String()
}

func slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

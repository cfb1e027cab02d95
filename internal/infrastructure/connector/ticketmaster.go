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

const ticketmasterBaseURL = "https://app.ticketmaster.com"

// Ticketmaster queries the Discovery API; events are structured so no page scraping is needed.
type Ticketmaster struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ source.Connector = (*Ticketmaster)(nil)

// NewTicketmaster wires the client; an empty baseURL points at the public API.
func NewTicketmaster(client *http.Client, baseURL, apiKey string) *Ticketmaster {
	if baseURL == "" {
		baseURL = ticketmasterBaseURL
	}
	return &Ticketmaster{client: defaultClient(client), baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey}
}

// Name identifies the connector inside the registry.
func (t *Ticketmaster) Name() string {
	return "ticketmaster"
}

type ticketmasterResponse struct {
	Embedded struct {
		Events []ticketmasterEvent `json:"events"`
	} `json:"_embedded"`
}

type ticketmasterEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string    `json:"localDate"`
			LocalTime string    `json:"localTime"`
			DateTime  time.Time `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// Search lists events of the topic classification in the state, 3 to 10 days ahead.
func (t *Ticketmaster) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("ticketmaster: api key is not configured")
	}
	stateCode := req.Option("stateCode", "")
	if stateCode == "" && req.Query.Locale != nil {
		stateCode = req.Query.Locale.State
	}
	if stateCode == "" {
		return nil, fmt.Errorf("ticketmaster: %w", source.ErrLocaleRequired)
	}

	window := domain.Window{Start: req.Now.AddDate(0, 0, 3), End: req.Now.AddDate(0, 0, 10)}

	params := url.Values{}
	params.Set("apikey", t.apiKey)
	params.Set("classificationName", req.Query.Topic)
	params.Set("stateCode", stateCode)
	params.Set("startDateTime", window.Start.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("endDateTime", window.End.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("size", strconv.Itoa(limitOr(req.Limit, 5)))
	params.Set("sort", "date,asc")

	var resp ticketmasterResponse
	if err := getJSON(ctx, t.client, t.baseURL+"/discovery/v2/events.json?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("ticketmaster: %w", err)
	}

	targets := make([]domain.FetchTarget, 0, len(resp.Embedded.Events))
	for _, ev := range resp.Embedded.Events {
		targets = append(targets, domain.FetchTarget{
			ID:       ev.ID,
			URL:      ev.URL,
			Text:     ev.describe(),
			StartsAt: ev.Dates.Start.DateTime,
			Attribution: domain.Attribution{
				Publication: "Ticketmaster",
				Timestamp:   ev.Dates.Start.DateTime,
			},
		})
	}
	return targets, nil
}

func (ev ticketmasterEvent) describe() string {
	var sb strings.Builder
	sb.WriteString(ev.Name)

	var kinds []string
	for _, c := range ev.Classifications {
		for _, name := range []string{c.Segment.Name, c.Genre.Name} {
			if name != "" && name != "Undefined" {
				kinds = append(kinds, name)
			}
		}
	}
	if len(kinds) > 0 {
		sb.WriteString(" (" + strings.Join(kinds, ", ") + ")")
	}
	if len(ev.Embedded.Venues) > 0 {
		venue := ev.Embedded.Venues[0]
		sb.WriteString(" at " + venue.Name)
		if venue.City.Name != "" {
			sb.WriteString(", " + venue.City.Name)
		}
	}
	if date := strings.TrimSpace(ev.Dates.Start.LocalDate + " " + ev.Dates.Start.LocalTime); date != "" {
		sb.WriteString(" on " + date)
	}
	sb.WriteString(".")
	if ev.URL != "" {
		sb.WriteString(" Tickets: " + ev.URL)
	}
	return sb.String()
}

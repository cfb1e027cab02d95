package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/source"
)

const (
	patchEventDateSelector = "div.calendar-icon__date"
	patchEventTimeSelector = "time.styles_EventDateAndTime__eventDetail__TNlkQ"
	patchEventLinkSelector = "a.styles_Card__Thumbnail__FioCE"
)

// PatchEvents scrapes the city calendar for events in the coming week.
type PatchEvents struct {
	client  *http.Client
	baseURL string
}

var _ source.Connector = (*PatchEvents)(nil)

// NewPatchEvents wires the client; an empty baseURL points at patch.com.
func NewPatchEvents(client *http.Client, baseURL string) *PatchEvents {
	if baseURL == "" {
		baseURL = patchBaseURL
	}
	return &PatchEvents{client: defaultClient(client), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Name identifies the connector inside the registry.
func (p *PatchEvents) Name() string {
	return "patch-events"
}

// Search reads calendar icons, times and card links by position.
// Dates carry no year, so the current year is assumed.
func (p *PatchEvents) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	if req.Query.Locale == nil {
		return nil, fmt.Errorf("patch-events: %w", source.ErrLocaleRequired)
	}
	loc := req.Query.Locale

	pageURL := fmt.Sprintf("%s/%s/%s/calendar", p.baseURL, slug(loc.State), slug(loc.City))
	doc, err := fetchDocument(ctx, p.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("patch-events: %w", err)
	}

	now := req.Now
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	window := domain.Window{Start: today, End: today.AddDate(0, 0, 7)}

	dates := doc.Find(patchEventDateSelector)
	times := doc.Find(patchEventTimeSelector)
	links := doc.Find(req.Option("linkSelector", patchEventLinkSelector))
	body := req.Option("bodySelector", patchBodySelector)
	limit := limitOr(req.Limit, 5)

	var targets []domain.FetchTarget
	for i := 0; i < dates.Length() && i < links.Length() && len(targets) < limit; i++ {
		day, ok := parseCalendarIcon(dates.Eq(i), now)
		if !ok {
			continue
		}
		startsAt := day
		if i < times.Length() {
			startsAt = withClock(day, times.Eq(i).Text())
		}
		if !window.Contains(day) {
			continue
		}

		href, ok := links.Eq(i).Attr("href")
		if !ok {
			continue
		}
		link := absoluteURL(p.baseURL, href)
		targets = append(targets, domain.FetchTarget{
			ID:       link,
			URL:      link,
			Selector: body,
			StartsAt: startsAt,
			Attribution: domain.Attribution{
				Publication: "Patch",
				Timestamp:   startsAt,
			},
		})
	}
	return targets, nil
}

func parseCalendarIcon(icon *goquery.Selection, now time.Time) (time.Time, bool) {
	month := strings.TrimSpace(icon.Find("strong.calendar-icon__month").Text())
	day := strings.TrimSpace(icon.Find("strong.calendar-icon__day").Text())
	if len(month) < 3 || day == "" {
		return time.Time{}, false
	}
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:3])

	parsed, err := time.ParseInLocation("Jan 2 2006", fmt.Sprintf("%s %s %d", month, day, now.Year()), now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// withClock applies a "Saturday, 7:00 PM" detail to the day; unparsable details leave it unchanged.
func withClock(day time.Time, detail string) time.Time {
	parts := strings.Split(strings.TrimSpace(detail), ", ")
	if len(parts) < 2 {
		return day
	}
	clock, err := time.Parse("3:04 PM", strings.TrimSpace(parts[1]))
	if err != nil {
		return day
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
}

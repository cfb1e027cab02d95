package connector

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/source"
)

const (
	patchBaseURL = "https://patch.com"

	patchCaptionSelector = "span.MuiTypography-caption"
	patchLinkSelector    = "a.MuiLink-underlineAlways"
	patchBodySelector    = "article.styles_Section__card__4Uoov"
)

// patchTopics are the section slugs Patch serves per city.
var patchTopics = map[string]struct{}{
	"police-fire": {}, "obituaries": {}, "around-town": {}, "politics": {}, "traffic-transit": {},
	"schools": {}, "restaurants-bars": {}, "business": {}, "weather": {}, "sports": {}, "pets": {},
	"best-of": {}, "arts-entertainment": {}, "lifestyle": {}, "kids-family": {}, "going-green": {},
	"holidays": {}, "personal-finance": {}, "travel": {},
}

var ageExpr = regexp.MustCompile(`^(\d+)\s*([mhd])$`)

// PatchNews scrapes a city section listing for stories published within the last day.
type PatchNews struct {
	client  *http.Client
	baseURL string
}

var _ source.Connector = (*PatchNews)(nil)

// NewPatchNews wires the client; an empty baseURL points at patch.com.
func NewPatchNews(client *http.Client, baseURL string) *PatchNews {
	if baseURL == "" {
		baseURL = patchBaseURL
	}
	return &PatchNews{client: defaultClient(client), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Name identifies the connector inside the registry.
func (p *PatchNews) Name() string {
	return "patch-news"
}

// Search pairs age captions with story links by position and keeps the recent ones.
func (p *PatchNews) Search(ctx context.Context, req source.Request) ([]domain.FetchTarget, error) {
	if req.Query.Locale == nil {
		return nil, fmt.Errorf("patch-news: %w", source.ErrLocaleRequired)
	}

	pageURL := p.sectionURL(req)
	doc, err := fetchDocument(ctx, p.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("patch-news: %w", err)
	}

	links := doc.Find(req.Option("linkSelector", patchLinkSelector))
	body := req.Option("bodySelector", patchBodySelector)
	limit := limitOr(req.Limit, 5)

	var targets []domain.FetchTarget
	seen := map[string]struct{}{}
	captions := doc.Find(req.Option("captionSelector", patchCaptionSelector))
	for i := 0; i < captions.Length() && i < links.Length() && len(targets) < limit; i++ {
		age := strings.TrimSpace(captions.Eq(i).Text())
		if !isRecent(age) {
			continue
		}
		href, ok := links.Eq(i).Attr("href")
		if !ok {
			continue
		}
		link := absoluteURL(p.baseURL, href)
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		targets = append(targets, domain.FetchTarget{
			ID:          link,
			URL:         link,
			Selector:    body,
			Attribution: domain.Attribution{Publication: "Patch"},
			Meta:        map[string]string{"age": age, "title": strings.TrimSpace(links.Eq(i).Text())},
		})
	}
	return targets, nil
}

func (p *PatchNews) sectionURL(req source.Request) string {
	loc := req.Query.Locale
	pageURL := fmt.Sprintf("%s/%s/%s", p.baseURL, slug(loc.State), slug(loc.City))
	topic := req.Option("section", slug(req.Query.Topic))
	if _, ok := patchTopics[topic]; ok {
		pageURL += "/" + topic
	}
	return pageURL
}

// isRecent accepts minute and hour ages and at most one day.
func isRecent(age string) bool {
	m := ageExpr.FindStringSubmatch(strings.ToLower(age))
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return m[2] != "d" || n <= 1
}

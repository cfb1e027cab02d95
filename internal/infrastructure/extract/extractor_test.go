package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"NewsBrief/internal/domain"
)

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  []string
	}{
		{query: "+bitcoin AND crypto", want: []string{"bitcoin", "crypto"}},
		{query: "fashion AND nyc", want: []string{"fashion", "nyc"}},
		{query: "Sandwich OR \"brandy\" NOT notary", want: []string{"sandwich", "brandy", "notary"}},
		{query: "Solar, solar! SOLAR", want: []string{"solar"}},
		{query: "and or not", want: nil},
	}

	for _, tt := range tests {
		if got := Tokens(tt.query); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Tokens(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	body := []byte(`<div id="a"><p>Hello</p><p>world
	 again</p><script>var x = 1;</script></div>`)
	if got := selectText(body, "#a"); got != "Hello world again" {
		t.Fatalf("unexpected text %q", got)
	}
}

const twoMatchesPage = `<html><body>
<div class="x">Bitcoin and crypto are up.</div>
<div class="y">Bitcoin climbed again today while crypto markets
  rallied across the board, analysts said.</div>
<div class="z">Unrelated footer</div>
</body></html>`

func newPageServer(t *testing.T, page string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractPicksLongestMatch(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newPageServer(t, twoMatchesPage, &hits)

	ex := New(server.Client(), Options{}, nil)
	rec, err := ex.Extract(context.Background(), domain.FetchTarget{URL: server.URL}, "+bitcoin AND crypto")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := "Bitcoin climbed again today while crypto markets rallied across the board, analysts said."
	if rec.Text != want {
		t.Fatalf("unexpected text %q", rec.Text)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected discovery fetch plus one per class (3), got %d", got)
	}
}

func TestExtractReuseDocument(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newPageServer(t, twoMatchesPage, &hits)

	ex := New(server.Client(), Options{ReuseDocument: true}, nil)
	rec, err := ex.Extract(context.Background(), domain.FetchTarget{URL: server.URL}, "bitcoin crypto")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(rec.Text, "Bitcoin climbed") {
		t.Fatalf("unexpected text %q", rec.Text)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single fetch, got %d", got)
	}
}

func TestExtractTiesFavorFirst(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newPageServer(t, `<div class="first">solar one</div><div class="second">solar two</div>`, &hits)

	rec, err := New(server.Client(), Options{}, nil).Extract(context.Background(), domain.FetchTarget{URL: server.URL}, "solar")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Text != "solar one" {
		t.Fatalf("expected first candidate, got %q", rec.Text)
	}
}

func TestExtractNoMatchIsMiss(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newPageServer(t, twoMatchesPage, &hits)

	rec, err := New(server.Client(), Options{}, nil).Extract(context.Background(), domain.FetchTarget{URL: server.URL}, "dogecoin")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rec.Empty() {
		t.Fatalf("expected miss, got %q", rec.Text)
	}
}

func TestExtractNotFoundIsMiss(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	target := domain.FetchTarget{URL: server.URL, Attribution: domain.Attribution{Publication: "Wire"}}
	rec, err := New(server.Client(), Options{}, nil).Extract(context.Background(), target, "bitcoin")
	if err != nil {
		t.Fatalf("expected no error on 404, got %v", err)
	}
	if !rec.Empty() {
		t.Fatalf("expected empty record, got %q", rec.Text)
	}
	if rec.Attribution.Publication != "Wire" {
		t.Fatalf("attribution must be carried over")
	}
}

func TestExtractNetworkErrorPropagates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(nil, Options{}, nil).Extract(context.Background(), domain.FetchTarget{URL: url}, "bitcoin")
	if err == nil {
		t.Fatalf("expected network error")
	}
}

func TestExtractInlineTextSkipsFetch(t *testing.T) {
	t.Parallel()

	target := domain.FetchTarget{
		Text: "Jazz night\n  at the park",
		Meta: map[string]string{"source": "ticketmaster"},
	}
	rec, err := New(nil, Options{}, nil).Extract(context.Background(), target, "anything")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Text != "Jazz night at the park" || rec.SourceTag != "ticketmaster" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestExtractFixedSelector(t *testing.T) {
	t.Parallel()

	var hits int32
	server := newPageServer(t, `<nav>menu</nav><article class="card">Road closed on Main St.</article>`, &hits)

	target := domain.FetchTarget{URL: server.URL, Selector: "article.card"}
	rec, err := New(server.Client(), Options{}, nil).Extract(context.Background(), target, "ignored")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Text != "Road closed on Main St." {
		t.Fatalf("unexpected text %q", rec.Text)
	}
}

func TestExtractDecodesCharset(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<div class=\"c\">Le caf\xe9 solaire</div>"))
	}))
	defer server.Close()

	rec, err := New(server.Client(), Options{ReuseDocument: true}, nil).Extract(context.Background(), domain.FetchTarget{URL: server.URL}, "solaire")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Text != "Le café solaire" {
		t.Fatalf("unexpected text %q", rec.Text)
	}
}

func TestExtractRespectsRobots(t *testing.T) {
	t.Parallel()

	var pageHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		atomic.AddInt32(&pageHits, 1)
		_, _ = w.Write([]byte(`<div class="a">solar</div>`))
	}))
	defer server.Close()

	ex := New(server.Client(), Options{RespectRobots: true}, nil)

	rec, err := ex.Extract(context.Background(), domain.FetchTarget{URL: server.URL + "/private/page"}, "solar")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rec.Empty() || atomic.LoadInt32(&pageHits) != 0 {
		t.Fatalf("disallowed page must not be fetched")
	}

	rec, err = ex.Extract(context.Background(), domain.FetchTarget{URL: server.URL + "/public"}, "solar")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Text != "solar" {
		t.Fatalf("unexpected text %q", rec.Text)
	}
}

func TestExtractReadability(t *testing.T) {
	t.Parallel()

	paragraph := "<p>The city council approved a new solar program on Tuesday, expanding rooftop panels " +
		"to every public school in the district. Officials said the plan would cut energy costs, " +
		"and residents at the meeting largely supported the measure after a long debate.</p>"
	page := "<html><head><title>Solar plan</title></head><body><nav>Home | News</nav><article>" +
		strings.Repeat(paragraph, 6) + "</article><footer>Copyright</footer></body></html>"

	var hits int32
	server := newPageServer(t, page, &hits)

	ex := New(server.Client(), Options{Strategy: StrategyReadability}, nil)
	rec, err := ex.Extract(context.Background(), domain.FetchTarget{URL: server.URL + "/story"}, "solar council")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(rec.Text, "solar program") {
		t.Fatalf("expected article text, got %q", rec.Text)
	}
	if strings.Contains(rec.Text, "Copyright") {
		t.Fatalf("boilerplate leaked into text")
	}
}

package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNoContent signals that nothing usable was gathered, so no model call was made.
var ErrNoContent = errors.New("no content")

// NoContentText is the user-facing text for an empty brief.
const NoContentText = "No recent content."

// Locale narrows local sources (Patch, Eventbrite, Ticketmaster) to a place.
type Locale struct {
	State string
	City  string
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window (inclusive).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Query is the immutable input of a single brief run.
type Query struct {
	Topic  string
	Locale *Locale
	// Window is the look-back range for publish times. Event connectors ignore it
	// and search their own range ahead of the run.
	Window *Window
	Source string
	Limit  int
}

// Attribution credits the origin of a piece of content.
type Attribution struct {
	Publication string
	Author      string
	Timestamp   time.Time
}

// Empty reports whether no attribution field is set.
func (a Attribution) Empty() bool {
	return a.Publication == "" && a.Author == "" && a.Timestamp.IsZero()
}

// FetchTarget identifies one candidate item produced by a connector.
//
// When Text is set the item is already structured and no page fetch happens.
// When Selector is set the page body is read from that selector only.
type FetchTarget struct {
	ID          string
	URL         string
	Selector    string
	Text        string
	Attribution Attribution
	StartsAt    time.Time
	Meta        map[string]string
}

// ContentRecord holds extracted text for one FetchTarget. Text may be empty on a miss.
type ContentRecord struct {
	Text        string
	SourceTag   string
	Attribution Attribution
}

// Empty reports an extraction miss.
func (r ContentRecord) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Corpus is the ordered, capped view over all records of one run.
type Corpus struct {
	Records   []ContentRecord
	Text      string
	Truncated bool
}

// Empty reports whether there is nothing to summarize.
func (c Corpus) Empty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Chunk is a contiguous slice of Corpus.Text. Start and End are rune offsets.
type Chunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// Editorial is the final artifact of the summarization pipeline.
type Editorial struct {
	Title string
	Body  string
}

// String renders the editorial the way it is printed and published.
func (e Editorial) String() string {
	if e.Title == "" {
		return e.Body
	}
	return "\"" + e.Title + "\"\n\n" + e.Body
}

// TokenUsage is the accounting for a single model call.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Completion is the answer of a single model call.
type Completion struct {
	Text  string
	Model string
	Usage TokenUsage
}

// UsageReport accumulates accounting across every model call of one run.
type UsageReport struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	TotalCost        float64
	RequestCount     int
}

// Brief is what a run hands back to its caller.
type Brief struct {
	RunID       string
	Query       Query
	Editorial   Editorial
	Usage       UsageReport
	Sources     []Collection
	Records     int
	NoContent   bool
	GeneratedAt time.Time
}

// Text renders the editorial or the empty sentinel.
func (b Brief) Text() string {
	if b.NoContent {
		return NoContentText
	}
	return b.Editorial.String()
}

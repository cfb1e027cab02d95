package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"

	"NewsBrief/internal/domain"
)

func TestAssembleEmpty(t *testing.T) {
	t.Parallel()

	c := NewAssembler(100, true).Assemble(nil)
	if !c.Empty() || c.Text != "" || len(c.Records) != 0 {
		t.Fatalf("expected empty corpus, got %+v", c)
	}
}

func TestAssembleFiltersAndJoins(t *testing.T) {
	t.Parallel()

	records := []domain.ContentRecord{
		{Text: "first"},
		{Text: "   "},
		{Text: ""},
		{Text: "second"},
	}
	c := NewAssembler(0, false).Assemble(records)

	if c.Text != "first, second" {
		t.Fatalf("unexpected text: %q", c.Text)
	}
	if len(c.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(c.Records))
	}
	if c.Truncated {
		t.Fatalf("did not expect truncation")
	}
}

func TestAssembleAttribution(t *testing.T) {
	t.Parallel()

	records := []domain.ContentRecord{
		{Text: "Council passes budget.", Attribution: domain.Attribution{Publication: "Patch", Author: "Jane Doe"}},
		{Text: "No credit here."},
	}
	c := NewAssembler(0, true).Assemble(records)

	want := "Council passes budget. [Source: Patch, by Jane Doe], No credit here."
	if c.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", c.Text, want)
	}
}

func TestAssembleCapKeepsPrefix(t *testing.T) {
	t.Parallel()

	records := []domain.ContentRecord{
		{Text: strings.Repeat("a", 30)},
		{Text: strings.Repeat("é", 30)},
	}
	c := NewAssembler(40, false).Assemble(records)

	if n := utf8.RuneCountInString(c.Text); n != 40 {
		t.Fatalf("expected 40 runes, got %d", n)
	}
	if !strings.HasPrefix(c.Text, strings.Repeat("a", 30)+", ") {
		t.Fatalf("first record must survive intact: %q", c.Text)
	}
	if !c.Truncated {
		t.Fatalf("expected truncated flag")
	}
	if !utf8.ValidString(c.Text) {
		t.Fatalf("truncation split a rune")
	}
}

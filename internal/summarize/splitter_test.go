package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitReconstructs(t *testing.T) {
	t.Parallel()

	words := make([]string, 0, 3000)
	for i := 0; i < 3000; i++ {
		words = append(words, "wörd"+strings.Repeat("x", i%7))
	}
	text := strings.Join(words, " ")

	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{name: "default", size: 4000, overlap: 100},
		{name: "no overlap", size: 1000, overlap: 0},
		{name: "small", size: 50, overlap: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chunks := NewSplitter(tt.size, tt.overlap).Split(text)
			if len(chunks) < 2 {
				t.Fatalf("expected several chunks, got %d", len(chunks))
			}

			var sb strings.Builder
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c.Text); n > tt.size {
					t.Fatalf("chunk %d has %d runes, limit %d", i, n, tt.size)
				}
				if c.Index != i {
					t.Fatalf("chunk %d has index %d", i, c.Index)
				}
				if i == 0 {
					sb.WriteString(c.Text)
					continue
				}
				prev := chunks[i-1]
				if prev.End-c.Start != tt.overlap {
					t.Fatalf("chunk %d overlap %d, want %d", i, prev.End-c.Start, tt.overlap)
				}
				sb.WriteString(string([]rune(c.Text)[prev.End-c.Start:]))
			}
			if sb.String() != text {
				t.Fatalf("reconstruction mismatch")
			}
		})
	}
}

func TestSplitPrefersWhitespace(t *testing.T) {
	t.Parallel()

	chunks := NewSplitter(12, 0).Split("alpha beta gamma delta")
	if chunks[0].Text != "alpha beta " {
		t.Fatalf("expected break after whitespace, got %q", chunks[0].Text)
	}
}

func TestSplitShortAndEmpty(t *testing.T) {
	t.Parallel()

	if got := NewSplitter(100, 10).Split(""); got != nil {
		t.Fatalf("expected no chunks, got %v", got)
	}
	got := NewSplitter(100, 10).Split("short text")
	if len(got) != 1 || got[0].Text != "short text" || got[0].End != 10 {
		t.Fatalf("unexpected chunks: %+v", got)
	}
}

func TestSplitUnbrokenText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 95)
	chunks := NewSplitter(40, 5).Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1].Start != 35 || chunks[2].End != 95 {
		t.Fatalf("unexpected offsets: %+v", chunks)
	}
}

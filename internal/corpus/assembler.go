package corpus

import (
	"strings"
	"time"

	"NewsBrief/internal/domain"
)

const separator = ", "

// Assembler merges content records into one capped corpus.
type Assembler struct {
	cap         int
	attribution bool
}

// NewAssembler builds an assembler. A non-positive cap disables truncation.
func NewAssembler(cap int, attribution bool) *Assembler {
	return &Assembler{cap: cap, attribution: attribution}
}

// Assemble drops empty records, tags the rest with attribution and joins them.
// Truncation only ever drops a suffix, so earlier records survive intact.
func (a *Assembler) Assemble(records []domain.ContentRecord) domain.Corpus {
	kept := make([]domain.ContentRecord, 0, len(records))
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Empty() {
			continue
		}
		kept = append(kept, rec)

		text := strings.TrimSpace(rec.Text)
		if a.attribution {
			text += attributionSuffix(rec.Attribution)
		}
		parts = append(parts, text)
	}

	text := strings.Join(parts, separator)
	truncated := false
	if a.cap > 0 {
		if runes := []rune(text); len(runes) > a.cap {
			text = string(runes[:a.cap])
			truncated = true
		}
	}

	return domain.Corpus{Records: kept, Text: text, Truncated: truncated}
}

func attributionSuffix(attr domain.Attribution) string {
	var fields []string
	if attr.Publication != "" {
		fields = append(fields, attr.Publication)
	}
	if attr.Author != "" {
		fields = append(fields, "by "+attr.Author)
	}
	if !attr.Timestamp.IsZero() {
		fields = append(fields, attr.Timestamp.Format(time.DateOnly))
	}
	if len(fields) == 0 {
		return ""
	}
	return " [Source: " + strings.Join(fields, ", ") + "]"
}

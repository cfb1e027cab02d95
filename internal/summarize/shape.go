package summarize

import (
	"regexp"
	"strings"

	"NewsBrief/internal/domain"
)

var breakExpr = regexp.MustCompile(`\n\s*`)

// ParagraphBreaks counts runs of line breaks inside the trimmed text.
func ParagraphBreaks(text string) int {
	return len(breakExpr.FindAllStringIndex(strings.TrimSpace(text), -1))
}

var titleQuotes = map[rune]rune{
	'"': '"',
	'“': '”',
	'«': '»',
}

// ParseEditorial splits a model answer into a quoted title and its body.
// An answer without a leading quoted title becomes a body-only editorial.
func ParseEditorial(text string) domain.Editorial {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "**")

	runes := []rune(text)
	if len(runes) == 0 {
		return domain.Editorial{}
	}

	closing, ok := titleQuotes[runes[0]]
	if !ok {
		return domain.Editorial{Body: collapseBody(text)}
	}

	for i := 1; i < len(runes); i++ {
		if runes[i] == '\n' {
			break
		}
		if runes[i] == closing {
			title := strings.TrimSpace(string(runes[1:i]))
			rest := strings.TrimPrefix(strings.TrimSpace(string(runes[i+1:])), "**")
			return domain.Editorial{Title: title, Body: collapseBody(rest)}
		}
	}
	return domain.Editorial{Body: collapseBody(text)}
}

// collapseBody keeps the body on a single paragraph.
func collapseBody(body string) string {
	return strings.TrimSpace(breakExpr.ReplaceAllString(strings.TrimSpace(body), " "))
}

func isEmptyAnswer(text string) bool {
	switch strings.TrimSpace(text) {
	case "", `""`, "''", "“”":
		return true
	}
	return false
}

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// RenderText returns the visible text of a selection with text nodes joined by a space,
// whitespace runs collapsed and line breaks removed.
func RenderText(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return NormalizeSpace(strings.Join(parts, " "))
}

// NormalizeSpace collapses every whitespace run (newlines included) into one space.
func NormalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		*parts = append(*parts, n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if _, skip := skippedElements[n.Data]; skip {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

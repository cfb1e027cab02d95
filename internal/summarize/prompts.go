package summarize

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	DefaultMapPrompt = `Write a concise summary of the following news only as it pertains to {{.Topic}}. ` +
		`If it is not at all related to that topic, just output an empty string.

{{.Text}}`

	DefaultReducePrompt = `Write a concise and cohesive editorial piece about {{.Topic}} in a single paragraph ` +
		`of at most {{.SentenceBound}} sentences summarizing the following news, using a mix of journalistic ` +
		`and conversational language, written in Chicago style, and avoidant of redundancies. ` +
		`Credit sources by name where a [Source: ...] tag is present. ` +
		`Start with a short title in double quotes on its own line, then the paragraph.

{{.Text}}`

	DefaultCompressPrompt = `Rewrite the following text as a short title in double quotes on its own line ` +
		`followed by exactly one paragraph of at most {{.SentenceBound}} sentences. ` +
		`Keep every source name and attribution that appears in it.

{{.Text}}`
)

// Prompts holds the three templates. Empty fields fall back to the defaults.
type Prompts struct {
	Map      string
	Reduce   string
	Compress string
}

type promptData struct {
	Topic         string
	Text          string
	SentenceBound int
}

type promptSet struct {
	mapT      *template.Template
	reduceT   *template.Template
	compressT *template.Template
}

func parsePrompts(p Prompts) (promptSet, error) {
	var (
		set promptSet
		err error
	)
	if set.mapT, err = parsePrompt("map", p.Map, DefaultMapPrompt); err != nil {
		return promptSet{}, err
	}
	if set.reduceT, err = parsePrompt("reduce", p.Reduce, DefaultReducePrompt); err != nil {
		return promptSet{}, err
	}
	if set.compressT, err = parsePrompt("compress", p.Compress, DefaultCompressPrompt); err != nil {
		return promptSet{}, err
	}
	return set, nil
}

func parsePrompt(name, text, fallback string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		text = fallback
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s prompt: %w", name, err)
	}
	return t, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return sb.String(), nil
}

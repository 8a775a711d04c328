// Package summary produces document summaries from extracted text.
package summary

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"metrodoc/internal/model"
)

const (
	maxSentences = 3
	maxKeyPoints = 5
)

// ErrNoText is returned when there is nothing to summarize.
var ErrNoText = errors.New("summary: no text to summarize")

// Summarizer builds a Summary for a document's text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (model.Summary, error)
}

// Placeholder is served for documents without extractable text.
func Placeholder() model.Summary {
	return model.Summary{
		Summary: "AI-generated summary of the document. This provides a concise overview of the key points and main topics covered in the document.",
		KeyPoints: []string{
			"Key point 1 from the document",
			"Key point 2 from the document",
			"Key point 3 from the document",
		},
	}
}

// Extractive picks leading sentences as the summary and list items as key points.
type Extractive struct{}

var (
	listItem       = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)
	sentenceBreaks = regexp.MustCompile(`([.!?])\s+`)
)

func (Extractive) Summarize(_ context.Context, text string) (model.Summary, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Summary{}, ErrNoText
	}

	var items []string
	var prose []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := listItem.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		prose = append(prose, splitSentences(line)...)
	}

	sentences := prose
	if len(sentences) == 0 {
		sentences = items
	}
	lead := sentences[:min(len(sentences), maxSentences)]

	points := items
	if len(points) == 0 {
		points = prose
	}
	points = points[:min(len(points), maxKeyPoints)]

	return model.Summary{
		Summary:   strings.Join(lead, " "),
		KeyPoints: append([]string{}, points...),
	}, nil
}

func splitSentences(line string) []string {
	marked := sentenceBreaks.ReplaceAllString(line, "$1\n")
	var out []string
	for _, s := range strings.Split(marked, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Package markdown turns the loose markdown a model writes into the limited
// HTML subset the document editor understands.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// Converter renders markdown text as an HTML fragment. Implementations never
// fail: input they cannot make sense of is passed through.
type Converter interface {
	Convert(md string) string
}

// New returns the converter registered under name. An empty name selects the
// line converter.
func New(name string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "line":
		return LineConverter{}, nil
	case "commonmark", "goldmark":
		return NewCommonMarkConverter(), nil
	default:
		return nil, fmt.Errorf("unknown markdown renderer: %q", name)
	}
}

// LineConverter classifies each line on its own: headings, list items,
// paragraphs, and raw HTML passthrough. Numbered items are emitted inside a
// <ul> like bulleted ones. Constructs that span lines (fenced code, tables,
// nested lists) are not understood.
type LineConverter struct{}

var (
	orderedItemRe = regexp.MustCompile(`^\d+\.\s`)
	listJoinRe    = regexp.MustCompile(`</ul>\s*<ul>`)
	openWrapRe    = regexp.MustCompile(`<p><(ul|ol|table)>`)
	closeWrapRe   = regexp.MustCompile(`</(ul|ol|table)></p>`)

	// Inline spans never contain a tag, so they cannot cross one.
	boldItalicRe = regexp.MustCompile(`\*\*\*([^<>]+?)\*\*\*`)
	boldRe       = regexp.MustCompile(`\*\*([^<>]+?)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*<>]+?)\*`)
)

func (LineConverter) Convert(md string) string {
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = convertLine(line)
	}
	out := strings.Join(lines, "\n")

	// Adjacent items share one list; blank lines between them are absorbed.
	for listJoinRe.MatchString(out) {
		out = listJoinRe.ReplaceAllString(out, "")
	}

	out = boldItalicRe.ReplaceAllString(out, "<strong><em>$1</em></strong>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")

	out = openWrapRe.ReplaceAllString(out, "<$1>")
	out = closeWrapRe.ReplaceAllString(out, "</$1>")
	return out
}

func convertLine(line string) string {
	switch {
	case strings.HasPrefix(line, "### "):
		return "<h3>" + line[4:] + "</h3>"
	case strings.HasPrefix(line, "## "):
		return "<h2>" + line[3:] + "</h2>"
	case strings.HasPrefix(line, "# "):
		return "<h1>" + line[2:] + "</h1>"
	case strings.HasPrefix(line, "* "), strings.HasPrefix(line, "- "):
		return "<ul><li>" + line[2:] + "</li></ul>"
	case orderedItemRe.MatchString(line):
		return "<ul><li>" + orderedItemRe.ReplaceAllString(line, "") + "</li></ul>"
	}
	trimmed := strings.TrimSpace(line)
	if trimmed != "" && !strings.HasPrefix(trimmed, "<") {
		return "<p>" + line + "</p>"
	}
	return line
}

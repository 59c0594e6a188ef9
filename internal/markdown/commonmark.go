package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// CommonMarkConverter renders full CommonMark plus GitHub tables through
// goldmark. Unlike LineConverter it keeps numbered lists as <ol> and
// understands multi-line constructs.
type CommonMarkConverter struct {
	md       goldmark.Markdown
	fallback Converter
}

func NewCommonMarkConverter() *CommonMarkConverter {
	return &CommonMarkConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Model output mixes raw HTML with markdown.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		fallback: LineConverter{},
	}
}

func (c *CommonMarkConverter) Convert(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(md), &buf); err != nil {
		return c.fallback.Convert(md)
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}

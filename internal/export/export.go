// Package export turns one document into a downloadable file.
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
)

// Format is a download format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat accepts html, pdf and docx, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Filename derives a download name from a document title: whitespace runs
// and path separators become underscores.
func Filename(title string, f Format) string {
	name := strings.Join(strings.Fields(title), "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "document"
	}
	return name + "." + string(f)
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%[1]s</title>
<style>
  body { font-family: sans-serif; line-height: 1.6; padding: 2em; }
  table { border-collapse: collapse; width: 100%%; margin: 1em 0; }
  th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
  th { background-color: #f2f2f2; }
  h1, h2, h3 { color: #333; }
</style>
</head>
<body>
<h1>%[1]s</h1>
%[2]s
</body>
</html>
`

// HTML wraps the document in a standalone styled page. The body is written
// verbatim; the title is escaped.
func HTML(doc document.Document) []byte {
	return fmt.Appendf(nil, htmlPage, html.EscapeString(doc.Title), doc.Content)
}

// PDFRenderer produces a base64 PDF for one document.
type PDFRenderer interface {
	GeneratePDF(ctx context.Context, req generate.PDFRequest) (string, error)
}

// PDF asks the renderer for a branded PDF and decodes it.
func PDF(ctx context.Context, r PDFRenderer, doc document.Document, b branding.Profile) ([]byte, error) {
	encoded, err := r.GeneratePDF(ctx, generate.PDFRequest{Title: doc.Title, HTML: doc.Content, Branding: b})
	if err != nil {
		return nil, err
	}
	data, err := DecodePDF(encoded)
	if err != nil {
		return nil, err
	}
	if !estimate.IsPDF(data) {
		return nil, errors.New("renderer returned data that is not a PDF")
	}
	return data, nil
}

// DecodePDF decodes a base64 payload, tolerating embedded whitespace, a data
// URI prefix, missing padding and the URL-safe alphabet.
func DecodePDF(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, errors.New("empty pdf payload")
	}

	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("decode pdf payload: %w", firstErr)
}

// Render writes doc in format f. PDF requires a renderer.
func Render(ctx context.Context, f Format, doc document.Document, r PDFRenderer, b branding.Profile) ([]byte, error) {
	switch f {
	case FormatHTML:
		return HTML(doc), nil
	case FormatDOCX:
		var buf bytes.Buffer
		if err := DOCX(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatPDF:
		if r == nil {
			return nil, errors.New("pdf export is not configured")
		}
		return PDF(ctx, r, doc, b)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

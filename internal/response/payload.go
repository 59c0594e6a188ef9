// Package response turns a model's estimate response into ordered documents.
//
// Two response shapes are supported. JSON responses follow the estimate
// schema and are rendered through fixed templates. Markdown responses are cut
// into sections at "### Section N:" and "### Work Order:" lines and each body
// is converted to HTML.
package response

import (
	"fmt"
	"strings"

	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
)

// Format identifies which response contract produced a payload.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps user input to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md", "text":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown response format: %q", s)
	}
}

// DetectFormat guesses the format of a response whose origin is unknown.
func DetectFormat(body string) Format {
	s := stripCodeBlock(body)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return FormatJSON
	}
	return FormatMarkdown
}

// Payload is one complete model response tagged with its format.
type Payload struct {
	Format Format `json:"format"`
	Body   string `json:"body"`
}

// Result is the outcome of a successful parse.
type Result struct {
	Documents []document.Document
	// Estimate is the decoded JSON response. It is nil for markdown input.
	Estimate *Estimate
}

// Decoder turns a response body into documents.
type Decoder interface {
	Decode(body string) (*Result, error)
}

// JSONDecoder handles schema-shaped JSON responses.
type JSONDecoder struct{}

func (JSONDecoder) Decode(body string) (*Result, error) {
	est, err := DecodeEstimate(body)
	if err != nil {
		return nil, err
	}
	return &Result{Documents: Assemble(est), Estimate: est}, nil
}

// MarkedTextDecoder handles section-marked markdown responses.
type MarkedTextDecoder struct {
	Converter markdown.Converter
}

func (d MarkedTextDecoder) Decode(body string) (*Result, error) {
	conv := d.Converter
	if conv == nil {
		conv = markdown.LineConverter{}
	}
	return &Result{Documents: SplitSections(body, conv)}, nil
}

// Parse decodes p with the decoder for its format. Repeated titles are made
// unique. A parse that yields no documents returns ErrEmptyResult.
func Parse(p Payload, conv markdown.Converter) (*Result, error) {
	var dec Decoder
	switch p.Format {
	case FormatJSON:
		dec = JSONDecoder{}
	case FormatMarkdown:
		dec = MarkedTextDecoder{Converter: conv}
	default:
		return nil, fmt.Errorf("unknown response format: %q", p.Format)
	}

	res, err := dec.Decode(p.Body)
	if err != nil {
		return nil, err
	}
	if len(res.Documents) == 0 {
		return nil, ErrEmptyResult
	}
	res.Documents = document.UniqueTitles(res.Documents)
	return res, nil
}

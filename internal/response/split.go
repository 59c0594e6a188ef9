package response

import (
	"regexp"
	"strings"

	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
)

var sectionMarkerRe = regexp.MustCompile(`(?m)^### (?:Section \d+:|Work Order:)`)

// SplitSections cuts text into one document per marker line. A marker line
// starts a section and becomes its title without the leading "### ". Anything
// before the first marker is dropped. Text without any marker becomes a
// single fallback document. Blank text yields no documents.
func SplitSections(text string, conv markdown.Converter) []document.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	locs := sectionMarkerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []document.Document{{
			Title:   FallbackTitle,
			Content: conv.Convert(strings.TrimSpace(text)),
		}}
	}

	docs := make([]document.Document, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := text[loc[0]:end]
		if strings.TrimSpace(segment) == "" {
			continue
		}
		titleLine, body, _ := strings.Cut(segment, "\n")
		docs = append(docs, document.Document{
			Title:   strings.TrimSpace(strings.TrimPrefix(titleLine, "### ")),
			Content: conv.Convert(strings.TrimSpace(body)),
		})
	}
	return docs
}

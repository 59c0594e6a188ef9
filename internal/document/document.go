// Package document holds the titled HTML documents produced from one model
// response and the editor state around them.
package document

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a document index does not exist.
var ErrIndexOutOfRange = errors.New("document index out of range")

// Document is one editable, exportable unit: a title and an HTML body.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Set is the ordered document list shown as tabs, plus the active tab.
// It is not safe for concurrent use; callers serialise access.
type Set struct {
	Documents []Document `json:"documents"`
	Selected  int        `json:"selected"`
}

// NewSet wraps docs with the first document active.
func NewSet(docs []Document) *Set {
	return &Set{Documents: docs}
}

func (s *Set) Len() int { return len(s.Documents) }

// Get returns the document at i.
func (s *Set) Get(i int) (Document, error) {
	if i < 0 || i >= len(s.Documents) {
		return Document{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.Documents))
	}
	return s.Documents[i], nil
}

// Select makes document i the active one.
func (s *Set) Select(i int) error {
	if i < 0 || i >= len(s.Documents) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.Documents))
	}
	s.Selected = i
	return nil
}

// Active returns the selected document. ok is false for an empty set.
func (s *Set) Active() (doc Document, ok bool) {
	if s.Selected < 0 || s.Selected >= len(s.Documents) {
		return Document{}, false
	}
	return s.Documents[s.Selected], true
}

// SetContent replaces the body of document i with html exactly as given.
// The title is kept.
func (s *Set) SetContent(i int, html string) error {
	if i < 0 || i >= len(s.Documents) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.Documents))
	}
	s.Documents[i].Content = html
	return nil
}

// UniqueTitles returns docs with repeated titles suffixed " (2)", " (3)", ...
// in order of appearance. The input slice is not modified.
func UniqueTitles(docs []Document) []Document {
	out := make([]Document, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, d := range docs {
		title := d.Title
		for n := 2; seen[title]; n++ {
			title = fmt.Sprintf("%s (%d)", d.Title, n)
		}
		seen[title] = true
		out[i] = Document{Title: title, Content: d.Content}
	}
	return out
}

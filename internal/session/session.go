// Package session stores the editable document sets produced from model
// responses.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the editor state for one parsed response.
type Session struct {
	ID        string             `json:"session_id"`
	Filename  string             `json:"filename,omitempty"`
	Format    response.Format    `json:"format"`
	Set       document.Set       `json:"set"`
	Warnings  []response.Finding `json:"warnings"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// New builds a session with a fresh id and the first document selected.
func New(filename string, format response.Format, docs []document.Document, warnings []response.Finding) *Session {
	now := time.Now().UTC()
	if warnings == nil {
		warnings = []response.Finding{}
	}
	return &Session{
		ID:        uuid.NewString(),
		Filename:  filename,
		Format:    format,
		Set:       *document.NewSet(docs),
		Warnings:  warnings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate it freely.
func (s *Session) Clone() *Session {
	c := *s
	c.Set.Documents = append([]document.Document(nil), s.Set.Documents...)
	c.Warnings = append([]response.Finding{}, s.Warnings...)
	return &c
}

// Store persists sessions. Update applies fn to a copy and saves it only
// when fn returns nil.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

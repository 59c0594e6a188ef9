package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/export"
	"github.com/russellconstruction9/RRsolutions/internal/response"
	"github.com/russellconstruction9/RRsolutions/internal/session"
)

const maxResponseBody = 4 << 20

type documentRef struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

type sessionView struct {
	ID        string             `json:"session_id"`
	Filename  string             `json:"filename,omitempty"`
	Format    response.Format    `json:"format"`
	Selected  int                `json:"selected"`
	Documents []documentRef      `json:"documents"`
	Warnings  []response.Finding `json:"warnings"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func viewOf(sess *session.Session) sessionView {
	docs := make([]documentRef, len(sess.Set.Documents))
	for i, d := range sess.Set.Documents {
		docs[i] = documentRef{Index: i, Title: d.Title}
	}
	warnings := sess.Warnings
	if warnings == nil {
		warnings = []response.Finding{}
	}
	return sessionView{
		ID:        sess.ID,
		Filename:  sess.Filename,
		Format:    sess.Format,
		Selected:  sess.Set.Selected,
		Documents: docs,
		Warnings:  warnings,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

type documentView struct {
	Index   int                 `json:"index"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Outline []*document.Heading `json:"outline"`
	Preview string              `json:"preview"`
}

// handleCreateFromResponse parses a model response the caller already holds.
func (s *Server) handleCreateFromResponse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResponseBody)
	var req struct {
		Format   string `json:"format"`
		Body     string `json:"body"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var format response.Format
	if strings.TrimSpace(req.Format) == "" {
		format = response.DetectFormat(req.Body)
	} else {
		f, err := response.ParseFormat(req.Format)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	res, err := response.Parse(response.Payload{Format: format, Body: req.Body}, s.conv)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, response.ErrMalformedResponse) || errors.Is(err, response.ErrEmptyResult) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), code)
		return
	}

	var findings []response.Finding
	if res.Estimate != nil && res.Estimate.ProjectBudget != nil {
		opts := response.CheckOptions{Tolerance: s.cfg.BudgetTolerance}
		if v, ok := estimate.BudgetFromFilename(req.Filename); ok {
			opts.ExpectedTotal = &v
		}
		findings = response.CheckBudget(res.Estimate.ProjectBudget, opts)
	}

	filename := ""
	if req.Filename != "" {
		filename = sanitizeFilename(req.Filename)
	}
	sess := session.New(filename, format, res.Documents, findings)
	if err := s.sessions.Create(r.Context(), sess); err != nil {
		s.log.Error("session create failed", "error", err)
		jsonError(w, "failed to store session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResponseBody)
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		jsonError(w, "body must be {\"index\": n}", http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Update(r.Context(), chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		return sess.Set.Select(*req.Index)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	idx, ok := documentIndex(w, r)
	if !ok {
		return
	}
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	doc, err := sess.Set.Get(idx)
	if err != nil {
		s.storeError(w, err)
		return
	}
	outline := document.Outline(doc.Content)
	if outline == nil {
		outline = []*document.Heading{}
	}
	writeJSON(w, http.StatusOK, documentView{
		Index:   idx,
		Title:   doc.Title,
		Content: doc.Content,
		Outline: outline,
		Preview: truncate(document.PlainText(doc.Content), 280),
	})
}

// handleUpdateDocument replaces a document body with exactly what was sent.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	idx, ok := documentIndex(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxResponseBody)
	var req struct {
		Content *string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		jsonError(w, "body must be {\"content\": \"...\"}", http.StatusBadRequest)
		return
	}
	sess, err := s.sessions.Update(r.Context(), chi.URLParam(r, "sessionID"), func(sess *session.Session) error {
		return sess.Set.SetContent(idx, *req.Content)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	doc, _ := sess.Set.Get(idx)
	writeJSON(w, http.StatusOK, map[string]any{
		"index":      idx,
		"title":      doc.Title,
		"updated_at": sess.UpdatedAt,
	})
}

func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	idx, ok := documentIndex(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	doc, err := sess.Set.Get(idx)
	if err != nil {
		s.storeError(w, err)
		return
	}

	data, err := export.Render(r.Context(), format, doc, s.pdf, s.brand)
	if err != nil {
		s.log.Error("export failed", "session_id", sess.ID, "format", format, "error", err)
		jsonError(w, "export failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(doc.Title, format),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	return sess, true
}

// storeError maps session and document errors to status codes.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		jsonError(w, "session not found", http.StatusNotFound)
	case errors.Is(err, document.ErrIndexOutOfRange):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Error("session store error", "error", err)
		jsonError(w, "session store error", http.StatusInternalServerError)
	}
}

func documentIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "document index must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return idx, true
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

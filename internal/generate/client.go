// Package generate calls Gemini to turn an estimate PDF into a report and to
// render edited documents as branded PDFs.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

// Options configures a Client.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the public endpoint.
	BaseURL string
	// MaxConcurrent bounds in-flight model calls. Zero means 4.
	MaxConcurrent int
	// Timeout bounds each model call. Zero means no extra deadline.
	Timeout time.Duration
}

// Client wraps the Gemini SDK with concurrency limits and retry classification.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
	sem     *semaphore.Weighted

	Stats *CallStats
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		genai:   gc,
		model:   model,
		timeout: opts.Timeout,
		sem:     semaphore.NewWeighted(int64(limit)),
		Stats:   NewCallStats(time.Hour),
	}, nil
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Model returns the configured model id.
func (c *Client) Model() string {
	return c.model
}

// ReportRequest asks for a report on one estimate PDF.
type ReportRequest struct {
	Filename string
	PDF      []byte
	// TextHint is optional extracted text sent alongside the PDF.
	TextHint string
	Format   response.Format
}

// GenerateReport sends the estimate to the model and returns its raw
// response text in the requested format.
func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(BuildReportPrompt(req.Filename, req.Format, req.TextHint)),
		genai.NewPartFromBytes(req.PDF, "application/pdf"),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(req.Format), genai.RoleUser),
	}
	if req.Format == response.FormatJSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = ReportSchema()
	}

	return c.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
}

// PDFRequest asks the model to lay out one document as a branded PDF.
type PDFRequest struct {
	Title    string
	HTML     string
	Branding branding.Profile
}

// GeneratePDF returns the base64-encoded PDF produced by the model.
func (c *Client) GeneratePDF(ctx context.Context, req PDFRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   PDFSchema(),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(BuildPDFPrompt(req.Title, req.HTML, req.Branding), genai.RoleUser),
	}

	text, err := c.generate(ctx, contents, cfg)
	if err != nil {
		return "", err
	}

	var out struct {
		PDFContent string `json:"pdfContent"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return "", fmt.Errorf("decode pdf response: %w (raw: %s)", err, truncate(text, 200))
	}
	if out.PDFContent == "" {
		return "", errors.New("model did not return the expected pdfContent field")
	}
	return out.PDFContent, nil
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, cfg)
	c.Stats.Record(time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return "", classify(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// classify wraps transient API failures in RetryableError.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 || apiErr.Status == "UNKNOWN" {
			return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return fmt.Errorf("gemini api status %d: %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("gemini api: %w", err)
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

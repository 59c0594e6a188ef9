package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

// Generator produces a raw model response for one estimate.
type Generator interface {
	GenerateReport(ctx context.Context, req generate.ReportRequest) (string, error)
}

// ProcessorConfig tunes a Processor.
type ProcessorConfig struct {
	Converter       markdown.Converter
	Inspect         estimate.Options
	TextHint        bool
	MaxPromptTokens int
	BudgetTolerance float64
	MaxRetries      int
}

// Input is one estimate PDF to process.
type Input struct {
	Filename string
	Data     []byte
	Format   response.Format
}

// Output is everything a successful run produced.
type Output struct {
	Info     *estimate.Info
	Raw      string
	Result   *response.Result
	Findings []response.Finding
	Attempts int
}

// Warnings flattens inspection warnings and budget findings into messages.
func (o *Output) Warnings() []string {
	var out []string
	if o.Info != nil {
		out = append(out, o.Info.Warnings...)
	}
	for _, f := range o.Findings {
		out = append(out, f.Message)
	}
	return out
}

// Processor runs inspect, generate, parse and check for one estimate. It is
// shared by the queue workers and the CLI.
type Processor struct {
	gen Generator
	cfg ProcessorConfig
	log *slog.Logger

	backoff func(attempt int) time.Duration
}

func NewProcessor(gen Generator, cfg ProcessorConfig, log *slog.Logger) *Processor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = MaxRetries
	}
	if cfg.Converter == nil {
		cfg.Converter = markdown.LineConverter{}
	}
	return &Processor{gen: gen, cfg: cfg, log: log, backoff: Backoff}
}

// Run processes in. progress, if non-nil, is called as each phase begins.
// The error names the phase that failed.
func (p *Processor) Run(ctx context.Context, in Input, progress func(JobStatus)) (*Output, error) {
	if progress == nil {
		progress = func(JobStatus) {}
	}
	if in.Format == "" {
		in.Format = response.FormatJSON
	}
	log := p.log.With("filename", in.Filename, "format", in.Format)

	// Phase 1: Inspect
	progress(StatusInspecting)
	info, err := estimate.Inspect(ctx, in.Data, in.Filename, p.cfg.Inspect)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	for _, w := range info.Warnings {
		log.Warn("inspection warning", "warning", w)
	}
	log.Info("inspected estimate", "pages", info.Pages, "text_tokens", estimate.EstimateTokens(info.Text))

	// Phase 2: Generate
	progress(StatusGenerating)
	req := generate.ReportRequest{Filename: in.Filename, PDF: in.Data, Format: in.Format}
	if p.cfg.TextHint {
		req.TextHint = estimate.TruncateTokens(info.Text, p.cfg.MaxPromptTokens)
	}
	raw, attempts, err := p.generate(ctx, req, log)
	out := &Output{Info: info, Attempts: attempts}
	if err != nil {
		return out, fmt.Errorf("generate: %w", err)
	}
	out.Raw = raw

	// Phase 3: Parse
	progress(StatusParsing)
	res, err := response.Parse(response.Payload{Format: in.Format, Body: raw}, p.cfg.Converter)
	if err != nil {
		return out, fmt.Errorf("parse: %w", err)
	}
	out.Result = res

	if res.Estimate != nil && res.Estimate.ProjectBudget != nil {
		out.Findings = response.CheckBudget(res.Estimate.ProjectBudget, response.CheckOptions{
			Tolerance:     p.cfg.BudgetTolerance,
			ExpectedTotal: info.FilenameBudget,
		})
		for _, f := range out.Findings {
			log.Warn("budget check", "code", f.Code, "message", f.Message)
		}
	}

	log.Info("parsed response", "documents", len(res.Documents), "attempts", attempts)
	return out, nil
}

func (p *Processor) generate(ctx context.Context, req generate.ReportRequest, log *slog.Logger) (string, int, error) {
	return Retry(ctx, p.cfg.MaxRetries, p.backoff, log, func() (string, error) {
		return p.gen.GenerateReport(ctx, req)
	})
}

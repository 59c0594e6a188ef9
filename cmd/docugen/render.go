package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/export"
	"github.com/russellconstruction9/RRsolutions/internal/pipeline"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

func newRenderCmd(opts *options) *cobra.Command {
	var (
		format    string
		tolerance float64
		filename  string
	)
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Parse a saved model response into documents",
		Long: `Reads a JSON or sectioned markdown response from a file (or stdin) and
prints the resulting document titles. With --out, each document is written
in every --export format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			body, err := readSource(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}

			f := response.DetectFormat(body)
			if format != "auto" {
				if f, err = response.ParseFormat(format); err != nil {
					return err
				}
			}
			conv, err := opts.converter()
			if err != nil {
				return err
			}
			res, err := response.Parse(response.Payload{Format: f, Body: body}, conv)
			if err != nil {
				return err
			}
			opts.log.Debug("parsed response", "format", f, "documents", len(res.Documents))

			var findings []response.Finding
			if res.Estimate != nil && res.Estimate.ProjectBudget != nil {
				check := response.CheckOptions{Tolerance: tolerance}
				if v, ok := estimate.BudgetFromFilename(filename); ok {
					check.ExpectedTotal = &v
				}
				findings = response.CheckBudget(res.Estimate.ProjectBudget, check)
			}

			printSummary(cmd.OutOrStdout(), res.Documents, findings)
			return opts.writeExports(cmd.Context(), cmd.OutOrStdout(), res.Documents)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Response format: auto, json or markdown")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1.00, "Budget check tolerance in dollars")
	cmd.Flags().StringVar(&filename, "estimate-name", "", "Original estimate filename, checked for a $ budget")
	return cmd
}

func readSource(stdin io.Reader, src string) (string, error) {
	var (
		data []byte
		err  error
	)
	if src == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(data), nil
}

func printSummary(w io.Writer, docs []document.Document, findings []response.Finding) {
	for i, d := range docs {
		fmt.Fprintf(w, "%2d. %s\n", i+1, d.Title)
	}
	for _, f := range findings {
		fmt.Fprintf(w, "warning: %s: %s\n", f.Code, f.Message)
	}
}

// writeExports writes every document in every requested format under the
// output directory. Nothing is written when no directory was given.
func (o *options) writeExports(ctx context.Context, w io.Writer, docs []document.Document) error {
	if o.outDir == "" {
		return nil
	}
	formats, err := o.exportFormats()
	if err != nil {
		return err
	}
	brand, err := o.brandingProfile()
	if err != nil {
		return err
	}

	var renderer export.PDFRenderer
	if slices.Contains(formats, export.FormatPDF) {
		client, err := geminiClient(ctx)
		if err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		renderer = &pipeline.RetryingRenderer{Renderer: client, Log: o.log}
	}

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return err
	}
	for i, doc := range docs {
		for _, f := range formats {
			path, err := writeExport(ctx, o.outDir, i, doc, f, renderer, brand)
			if err != nil {
				return fmt.Errorf("export %q as %s: %w", doc.Title, f, err)
			}
			fmt.Fprintf(w, "wrote %s\n", path)
		}
	}
	return nil
}

func writeExport(ctx context.Context, dir string, i int, doc document.Document, f export.Format, r export.PDFRenderer, b branding.Profile) (string, error) {
	data, err := export.Render(ctx, f, doc, r, b)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%02d_%s", i+1, strings.ReplaceAll(export.Filename(doc.Title, f), ":", ""))
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, data, 0o644)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/russellconstruction9/RRsolutions/internal/config"
	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
	"github.com/russellconstruction9/RRsolutions/internal/pipeline"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

// geminiClient builds a model client from the same environment the server
// reads.
func geminiClient(ctx context.Context) (*generate.Client, error) {
	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	return generate.NewClient(ctx, generate.Options{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.GeminiModel,
		BaseURL:       cfg.GeminiBaseURL,
		MaxConcurrent: cfg.MaxConcurrentGenerate,
		Timeout:       cfg.GenerateTimeout,
	})
}

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		format  string
		rawPath string
	)
	cmd := &cobra.Command{
		Use:   "generate <estimate.pdf>",
		Short: "Run an estimate PDF through the model and write the documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := response.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read estimate: %w", err)
			}
			conv, err := opts.converter()
			if err != nil {
				return err
			}
			client, err := geminiClient(ctx)
			if err != nil {
				return err
			}

			cfg := config.Load()
			proc := pipeline.NewProcessor(client, pipeline.ProcessorConfig{
				Converter:       conv,
				Inspect:         estimate.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
				TextHint:        cfg.PDFTextHint,
				MaxPromptTokens: cfg.MaxPromptTokens,
				BudgetTolerance: cfg.BudgetTolerance,
			}, opts.log)

			out, err := proc.Run(ctx, pipeline.Input{
				Filename: filepath.Base(args[0]),
				Data:     data,
				Format:   f,
			}, func(s pipeline.JobStatus) {
				opts.log.Info("phase", "status", s)
			})
			if out != nil && out.Raw != "" && rawPath != "" {
				if werr := os.WriteFile(rawPath, []byte(out.Raw), 0o644); werr != nil {
					opts.log.Warn("could not save raw response", "path", rawPath, "error", werr)
				}
			}
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), out.Result.Documents, out.Findings)
			return opts.writeExports(ctx, cmd.OutOrStdout(), out.Result.Documents)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Response contract: json or markdown")
	cmd.Flags().StringVar(&rawPath, "save-raw", "", "Also save the raw model response to this file")
	return cmd
}

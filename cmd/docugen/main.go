// Command docugen turns construction estimates and saved model responses into
// documents without running the HTTP service.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/export"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
)

// options are the flags shared by every subcommand.
type options struct {
	verbose  bool
	renderer string
	outDir   string
	exports  []string
	branding string

	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "docugen",
		Short:         "Generate estimate documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&opts.renderer, "renderer", "line", "Markdown renderer: line or commonmark")
	pf.StringVarP(&opts.outDir, "out", "o", "", "Directory for exported files (none written when empty)")
	pf.StringSliceVar(&opts.exports, "export", []string{"html"}, "Export formats: html, docx, pdf")
	pf.StringVar(&opts.branding, "branding", "", "Branding profile YAML (or set BRANDING_FILE)")

	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	return root
}

func (o *options) converter() (markdown.Converter, error) {
	return markdown.New(o.renderer)
}

func (o *options) exportFormats() ([]export.Format, error) {
	var out []export.Format
	for _, e := range o.exports {
		f, err := export.ParseFormat(e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (o *options) brandingProfile() (branding.Profile, error) {
	path := o.branding
	if path == "" {
		path = os.Getenv("BRANDING_FILE")
	}
	return branding.Load(path)
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

// Package cli implements the mtext command-line front end.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/mtext/internal/common"
)

// runOptions carries the extraction flags shared by the root and watch
// commands.
type runOptions struct {
	Provider    string
	Prompt      string
	Model       string
	PopplerPath string
	JSON        bool
	NoHistory   bool
	OutDir      string
}

// Execute runs the CLI. The returned error is already printed by cobra; the
// caller only decides the exit code.
func Execute(cfg *common.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(cfg, logger).ExecuteContext(ctx)
}

func newRootCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "mtext <file>",
		Short: "Extract text from an image or PDF via vision-language providers",
		Long: `mtext sends the pages of an image or PDF file to one or more
vision-language providers (gemini, openai, anthropic) and writes the
returned text to timestamped files in the output directory.

Providers are auto-detected from GOOGLE_API_KEY, OPENAI_API_KEY, and
ANTHROPIC_API_KEY unless --provider picks one explicitly. PDF pages are
rasterized with poppler's pdftoppm.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), cfg, logger, opts, args[0])
		},
	}

	addRunFlags(cmd, &opts)
	cmd.AddCommand(
		newWatchCmd(cfg, logger),
		newHistoryCmd(cfg, logger),
		newExportCmd(cfg, logger),
	)
	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	fl := cmd.Flags()
	fl.StringVar(&opts.Provider, "provider", "", "single provider to use (gemini|openai|anthropic); default: every provider with a credential")
	fl.StringVar(&opts.Prompt, "prompt", "", "extraction prompt override")
	fl.StringVar(&opts.Model, "model", "", "model name override; ignored when multiple providers are auto-detected")
	fl.StringVar(&opts.PopplerPath, "poppler_path", "", "directory containing the poppler pdftoppm binary, if not on PATH")
	fl.BoolVar(&opts.JSON, "json", false, "request structured JSON output and write a .json file per provider")
	fl.BoolVar(&opts.NoHistory, "no-history", false, "skip recording this run in the history database")
	fl.StringVar(&opts.OutDir, "out-dir", "", "directory for output files (default: current directory)")
}

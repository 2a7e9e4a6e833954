package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/extract"
	"github.com/joseph-ayodele/mtext/internal/history"
	"github.com/joseph-ayodele/mtext/internal/normalize"
	"github.com/joseph-ayodele/mtext/internal/output"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

// runExtract drives the whole pipeline for one input file:
// normalize once, then per selected provider extract and write. File-level
// failures return an error; per-provider failures only affect the summary.
func runExtract(ctx context.Context, out io.Writer, cfg *common.Config, logger *slog.Logger, opts runOptions, path string) error {
	ids, err := provider.Select(opts.Provider)
	if err != nil {
		return err
	}

	// --model only applies to an unambiguous provider choice; with several
	// auto-detected providers it is ignored with a notice.
	modelOverride := opts.Model
	if modelOverride != "" && opts.Provider == "" && len(ids) > 1 {
		logger.Warn("model override ignored: multiple providers auto-detected, using defaults",
			"model", modelOverride, "providers", len(ids))
		fmt.Fprintf(out, "note: --model %q ignored; multiple providers detected, using their defaults\n", modelOverride)
		modelOverride = ""
	}

	clients := buildClients(ctx, ids, modelOverride, cfg, logger)
	if len(clients) == 0 {
		return fmt.Errorf("%w: no selected provider could be initialized", common.ErrNoProviderAvailable)
	}

	rcfg := cfg.Raster
	if opts.PopplerPath != "" {
		rcfg.PopplerPath = opts.PopplerPath
	}
	doc, err := normalize.NewNormalizer(rcfg, logger).Normalize(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "processing %s (%d page(s)) with %d provider(s)\n", path, len(doc.Pages), len(clients))

	prompt := opts.Prompt
	if prompt == "" {
		prompt = cfg.Prompt
	}

	runner := extract.NewRunner(extract.Config{Structured: opts.JSON}, logger)
	results := runner.Run(ctx, clients, doc, prompt)

	outDir := opts.OutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	writer := output.NewWriter(outDir, logger)

	var store *history.Store
	if !opts.NoHistory && !cfg.History.Disabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history store unavailable, continuing without it",
				"path", cfg.History.Path, "error", err)
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	succeeded := 0
	for _, res := range results {
		run := history.Run{
			SourcePath: path,
			Provider:   string(res.Provider),
			Model:      res.Model,
			Pages:      res.Pages,
			DurationMS: res.Duration.Milliseconds(),
		}

		if res.Failed() {
			run.Status = history.StatusFailed
			run.Error = res.Err.Error()
			fmt.Fprintf(out, "[%s] FAILED: %v\n", res.Provider, res.Err)
		} else {
			ext := ".txt"
			if res.Structured {
				ext = ".json"
			}
			written, werr := writer.Write(path, res.Provider, res.Text, ext)
			if werr != nil {
				run.Status = history.StatusFailed
				run.Error = werr.Error()
				fmt.Fprintf(out, "[%s] FAILED: %v\n", res.Provider, werr)
			} else {
				succeeded++
				run.Status = history.StatusCompleted
				run.OutputPath = written
				fmt.Fprintf(out, "[%s] saved to %s (%d page(s), model %s)\n",
					res.Provider, written, res.Pages, res.Model)
			}
		}

		if store != nil {
			if herr := store.Record(&run); herr != nil {
				logger.Warn("history record failed", "provider", res.Provider, "error", herr)
			}
		}
	}

	fmt.Fprintf(out, "processing complete: %d succeeded, %d failed\n", succeeded, len(results)-succeeded)
	if succeeded == 0 {
		return fmt.Errorf("no provider produced output for %q", path)
	}
	return nil
}

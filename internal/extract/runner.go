// Package extract drives the per-provider, per-page extraction loop and
// assembles each provider's result.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/mtext/constants"
	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/normalize"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

// Result is one provider's outcome for a whole input file.
type Result struct {
	Provider   provider.ID
	Model      string
	Text       string // concatenated text, or the structured JSON document
	Structured bool
	Pages      int
	Duration   time.Duration
	Err        error // *common.ProviderError when the provider failed
}

func (r Result) Failed() bool { return r.Err != nil }

// Config for the extraction runner.
type Config struct {
	Structured bool // ask providers for JSON page objects and validate them
}

type Runner struct {
	cfg    Config
	logger *slog.Logger
}

func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run processes the document with each client in turn. Clients are called
// strictly sequentially, pages in ascending order, providers in the order
// given. A page failure fails that provider's whole result and the loop moves
// on to the next provider.
func (r *Runner) Run(ctx context.Context, clients []provider.Client, doc normalize.Document, prompt string) []Result {
	results := make([]Result, 0, len(clients))
	for _, c := range clients {
		results = append(results, r.runProvider(ctx, c, doc, prompt))
	}
	return results
}

func (r *Runner) runProvider(ctx context.Context, c provider.Client, doc normalize.Document, prompt string) Result {
	start := time.Now()
	res := Result{Provider: c.Name(), Model: c.Model(), Structured: r.cfg.Structured, Pages: len(doc.Pages)}

	r.logger.Info("extract.provider.start",
		"provider", c.Name(),
		"model", c.Model(),
		"pages", len(doc.Pages),
		"structured", r.cfg.Structured,
	)

	callPrompt := prompt
	if r.cfg.Structured {
		callPrompt = prompt + structuredSuffix
	}

	var pageTexts []string
	var pageFields []PageFields
	for _, page := range doc.Pages {
		r.logger.Info("extract.page.start", "provider", c.Name(), "page", page.Index, "of", len(doc.Pages))
		text, err := c.ExtractText(ctx, provider.Request{
			Image:    page.Data,
			MIMEType: page.MIMEType,
			Prompt:   callPrompt,
		})
		if err != nil {
			res.Err = &common.ProviderError{Provider: string(c.Name()), Page: page.Index, Cause: err}
			res.Duration = time.Since(start)
			r.logger.Error("extract.provider.failed",
				"provider", c.Name(), "page", page.Index, "error", err,
				"elapsed_ms", res.Duration.Milliseconds())
			return res
		}
		if r.cfg.Structured {
			fields, perr := parsePage(text, page.Index)
			if perr != nil {
				res.Err = &common.ProviderError{Provider: string(c.Name()), Page: page.Index, Cause: perr}
				res.Duration = time.Since(start)
				r.logger.Error("extract.provider.invalid_json",
					"provider", c.Name(), "page", page.Index, "error", perr,
					"elapsed_ms", res.Duration.Milliseconds())
				return res
			}
			pageFields = append(pageFields, fields)
		} else {
			pageTexts = append(pageTexts, text)
		}
	}

	if r.cfg.Structured {
		text, err := marshalDocument(doc, c, pageFields)
		if err != nil {
			res.Err = &common.ProviderError{Provider: string(c.Name()), Cause: err}
			res.Duration = time.Since(start)
			return res
		}
		res.Text = text
	} else {
		res.Text = joinPages(doc, pageTexts)
	}
	res.Duration = time.Since(start)

	r.logger.Info("extract.provider.ok",
		"provider", c.Name(),
		"pages", res.Pages,
		"bytes", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res
}

// joinPages concatenates per-page text. PDFs get explicit page markers, a
// single image comes back verbatim.
func joinPages(doc normalize.Document, texts []string) string {
	if doc.Format == constants.IMAGE && len(texts) == 1 {
		return texts[0]
	}
	sections := make([]string, len(texts))
	for i, t := range texts {
		sections[i] = fmt.Sprintf("--- Page %d ---\n%s", i+1, t)
	}
	return strings.Join(sections, "\n\n")
}

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/provider"
	"github.com/joseph-ayodele/mtext/internal/provider/anthropic"
	"github.com/joseph-ayodele/mtext/internal/provider/gemini"
	"github.com/joseph-ayodele/mtext/internal/provider/openai"
)

// buildClients constructs one client per selected provider, in registry
// order. modelOverride replaces the default model for every client built
// (callers only pass it when exactly one provider is selected). A provider
// whose client cannot be initialized is skipped with a warning; the others
// still run.
func buildClients(ctx context.Context, ids []provider.ID, modelOverride string, cfg *common.Config, logger *slog.Logger) []provider.Client {
	clients := make([]provider.Client, 0, len(ids))
	for _, id := range ids {
		c, err := buildClient(ctx, id, modelOverride, cfg, logger)
		if err != nil {
			logger.Warn("provider init failed, skipping", "provider", id, "error", err)
			continue
		}
		clients = append(clients, c)
	}
	return clients
}

func buildClient(ctx context.Context, id provider.ID, modelOverride string, cfg *common.Config, logger *slog.Logger) (provider.Client, error) {
	model := func(def string) string {
		if modelOverride != "" {
			return modelOverride
		}
		return def
	}
	switch id {
	case provider.Gemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.Gemini.APIKey,
			Model:       model(cfg.Gemini.Model),
			Temperature: cfg.Gemini.Temperature,
		}, logger)
	case provider.OpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       model(cfg.OpenAI.Model),
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Timeout:     cfg.OpenAI.Timeout,
		}, logger), nil
	case provider.Anthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.Anthropic.APIKey,
			BaseURL:     cfg.Anthropic.BaseURL,
			Model:       model(cfg.Anthropic.Model),
			Temperature: cfg.Anthropic.Temperature,
			MaxTokens:   cfg.Anthropic.MaxTokens,
			Timeout:     cfg.Anthropic.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", common.ErrInvalidInput, id)
	}
}
